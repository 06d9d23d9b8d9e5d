package version

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"v1.0.0", "1.0.0"},
		{"1.0.0", "1.0.0"},
		{"  v2.1.3  ", "2.1.3"},
		{"V1.0.0", "1.0.0"},
		{"v0.1.0", "0.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := normalizeVersion(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected []int
	}{
		{"1.0.0", []int{1, 0, 0}},
		{"2.1.3", []int{2, 1, 3}},
		{"1.0", []int{1, 0}},
		{"10.20.30", []int{10, 20, 30}},
		{"1.0.0-beta", []int{1, 0, 0}},
		{"1.0.0-rc1", []int{1, 0, 0}},
		{"1.0.0+build123", []int{1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseVersion(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		name     string
		latest   string
		current  string
		expected bool
	}{
		{"major version bump", "2.0.0", "1.0.0", true},
		{"minor version bump", "1.1.0", "1.0.0", true},
		{"patch version bump", "1.0.1", "1.0.0", true},
		{"same version", "1.0.0", "1.0.0", false},
		{"current is newer major", "1.0.0", "2.0.0", false},
		{"current is newer minor", "1.0.0", "1.1.0", false},
		{"current is newer patch", "1.0.0", "1.0.1", false},
		{"longer version is newer", "1.0.1", "1.0", true},
		{"shorter version is older", "1.0", "1.0.1", false},
		{"double digit versions", "10.0.0", "9.0.0", true},
		{"with prerelease suffix", "1.1.0", "1.0.0-beta", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isNewerVersion(tt.latest, tt.current)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestUpdateInfo_FormatUpdateMessage(t *testing.T) {
	info := &UpdateInfo{
		CurrentVersion: "1.0.0",
		LatestVersion:  "1.1.0",
		ReleaseURL:     "https://github.com/akstage/akstage/releases/tag/v1.1.0",
	}

	msg := info.FormatUpdateMessage()
	assert.Contains(t, msg, "1.0.0")
	assert.Contains(t, msg, "1.1.0")
	assert.Contains(t, msg, "https://github.com")
}

func TestUpdateInfo_FormatUpdateMessageNamesRelease(t *testing.T) {
	info := &UpdateInfo{
		CurrentVersion: "1.0.0",
		LatestVersion:  "1.1.0",
		ReleaseURL:     "https://github.com/akstage/akstage/releases/tag/v1.1.0",
		ReleaseName:    "Staging toolkit refresh",
	}

	assert.Contains(t, info.FormatUpdateMessage(), `"Staging toolkit refresh"`)

	// A release titled with the bare version adds nothing; skip it.
	info.ReleaseName = "1.1.0"
	assert.NotContains(t, info.FormatUpdateMessage(), `"1.1.0"`)
}

func newTestChecker(t *testing.T, current string, handler http.HandlerFunc) *Checker {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	checker := NewChecker("akstage", "akstage", current)
	checker.apiBase = srv.URL
	return checker
}

func TestCheckForUpdate_NewerRelease(t *testing.T) {
	checker := newTestChecker(t, "1.0.0", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/akstage/akstage/releases/latest", r.URL.Path)
		fmt.Fprint(w, `{"tag_name":"v1.2.0","html_url":"https://github.com/akstage/akstage/releases/tag/v1.2.0","name":"Staging toolkit refresh"}`)
	})

	info := checker.CheckForUpdate(context.Background())
	require.NotNil(t, info)
	assert.Equal(t, "1.2.0", info.LatestVersion)
	assert.Equal(t, "1.0.0", info.CurrentVersion)
	assert.Equal(t, "Staging toolkit refresh", info.ReleaseName)
	assert.Contains(t, info.ReleaseURL, "v1.2.0")
}

func TestCheckForUpdate_UpToDate(t *testing.T) {
	checker := newTestChecker(t, "1.2.0", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name":"v1.2.0","html_url":"https://example.invalid","name":""}`)
	})

	assert.Nil(t, checker.CheckForUpdate(context.Background()))
}

func TestCheckForUpdate_APIFailureIsSilent(t *testing.T) {
	checker := newTestChecker(t, "1.0.0", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	assert.Nil(t, checker.CheckForUpdate(context.Background()))
}

func TestNewChecker(t *testing.T) {
	checker := NewChecker("akstage", "akstage", "v1.0.0")

	assert.Equal(t, "akstage", checker.owner)
	assert.Equal(t, "akstage", checker.repo)
	assert.Equal(t, "1.0.0", checker.current) // Should be normalized
	assert.NotNil(t, checker.client)
}
