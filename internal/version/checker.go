// Package version provides version checking against GitHub releases.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// defaultAPIBase is the GitHub REST API root.
	defaultAPIBase = "https://api.github.com"
	// requestTimeout is the timeout for HTTP requests.
	requestTimeout = 5 * time.Second
)

// release is the subset of the GitHub release payload we read.
type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
	Name    string `json:"name"`
}

// UpdateInfo describes an available update.
type UpdateInfo struct {
	CurrentVersion string
	LatestVersion  string
	ReleaseURL     string
	ReleaseName    string
}

// FormatUpdateMessage formats a user-friendly update notification, naming
// the release when GitHub carries a title for it.
func (u *UpdateInfo) FormatUpdateMessage() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Update available: v%s", u.LatestVersion)
	if u.ReleaseName != "" && u.ReleaseName != u.LatestVersion {
		fmt.Fprintf(&b, " %q", u.ReleaseName)
	}
	fmt.Fprintf(&b, " (current: %s)\nDownload: %s", u.CurrentVersion, u.ReleaseURL)
	return b.String()
}

// Checker checks for new versions on GitHub.
type Checker struct {
	owner   string
	repo    string
	current string
	apiBase string
	client  *http.Client
}

// NewChecker creates a version checker comparing against currentVersion.
func NewChecker(owner, repo, currentVersion string) *Checker {
	return &Checker{
		owner:   owner,
		repo:    repo,
		current: normalizeVersion(currentVersion),
		apiBase: defaultAPIBase,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// CheckForUpdate returns a non-nil UpdateInfo when a newer release exists.
// Network or API failures return nil: an update check must never get in the
// user's way.
func (c *Checker) CheckForUpdate(ctx context.Context) *UpdateInfo {
	rel, err := c.fetchLatestRelease(ctx)
	if err != nil {
		return nil
	}

	latest := normalizeVersion(rel.TagName)
	if !isNewerVersion(latest, c.current) {
		return nil
	}
	return &UpdateInfo{
		CurrentVersion: c.current,
		LatestVersion:  latest,
		ReleaseURL:     rel.HTMLURL,
		ReleaseName:    rel.Name,
	}
}

func (c *Checker) fetchLatestRelease(ctx context.Context) (*release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.apiBase, c.owner, c.repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "akstage-version-checker")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

// normalizeVersion removes a 'v'/'V' prefix and trims whitespace.
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "v")
	return strings.TrimPrefix(v, "V")
}

// isNewerVersion compares two semver-like versions and reports whether
// latest is newer than current.
func isNewerVersion(latest, current string) bool {
	latestParts := parseVersion(latest)
	currentParts := parseVersion(current)

	for i := 0; i < len(latestParts) && i < len(currentParts); i++ {
		if latestParts[i] != currentParts[i] {
			return latestParts[i] > currentParts[i]
		}
	}

	// All compared parts equal: the longer version is newer, e.g. 1.0.1 > 1.0.
	return len(latestParts) > len(currentParts)
}

// parseVersion splits a version string into numeric parts, dropping any
// pre-release or build suffix.
func parseVersion(v string) []int {
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}

	parts := strings.Split(v, ".")
	result := make([]int, 0, len(parts))
	for _, p := range parts {
		num, _ := strconv.Atoi(p)
		result = append(result, num)
	}
	return result
}
