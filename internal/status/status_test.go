package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{Success, "SUCCESS"},
		{ErrorPermission, "ERROR_PERMISSION"},
		{ErrorNotFound, "ERROR_NOT_FOUND"},
		{ErrorIO, "ERROR_IO"},
		{ErrorInternal, "ERROR_INTERNAL"},
		{UserCancelled, "USER_CANCELLED"},
		{AlreadyExists, "ALREADY_EXISTS"},
		{ErrorUnsupportedPlatform, "ERROR_UNSUPPORTED_PLATFORM"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

func TestStatus_String_Unknown(t *testing.T) {
	assert.Equal(t, "ERROR_INTERNAL", Status(99).String())
}

func TestParse_RoundTrip(t *testing.T) {
	for s, name := range statusNames {
		parsed, ok := Parse(name)
		require.True(t, ok, name)
		assert.Equal(t, s, parsed)
	}
}

func TestParse_Unknown(t *testing.T) {
	_, ok := Parse("NOT_A_STATUS")
	assert.False(t, ok)
}

func TestFormatLine(t *testing.T) {
	assert.Equal(t, "SUCCESS:updated hosts file", FormatLine(Success, "updated hosts file"))
	assert.Equal(t, "ERROR_IO:", FormatLine(ErrorIO, ""))
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantStatus Status
		wantMsg    string
		wantOK     bool
	}{
		{"success with message", "SUCCESS:all good", Success, "all good", true},
		{"message containing colons", "ERROR_IO:read failed: disk error", ErrorIO, "read failed: disk error", true},
		{"empty message", "ALREADY_EXISTS:", AlreadyExists, "", true},
		{"no colon", "SUCCESS", ErrorInternal, "", false},
		{"unknown status", "BOGUS:oops", ErrorInternal, "", false},
		{"raw hosts content", "127.0.0.1 localhost", ErrorInternal, "", false},
		{"empty line", "", ErrorInternal, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, msg, ok := ParseLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantStatus, s)
				assert.Equal(t, tt.wantMsg, msg)
			}
		})
	}
}

func TestIsError(t *testing.T) {
	assert.False(t, Success.IsError())
	assert.False(t, AlreadyExists.IsError())
	assert.True(t, ErrorPermission.IsError())
	assert.True(t, UserCancelled.IsError())
	assert.True(t, ErrorUnsupportedPlatform.IsError())
}
