// Package status defines the closed set of outcome codes shared by every
// layer, and their NAME:message wire encoding used across the privileged
// helper process boundary.
package status

import "strings"

// Status is the outcome of a hosts file operation. It is the only contract
// that crosses the elevated-process boundary, so new values must be added to
// both the constant block and the name tables below.
type Status int

const (
	Success Status = iota
	ErrorPermission
	ErrorNotFound
	ErrorIO
	ErrorInternal
	UserCancelled
	AlreadyExists
	ErrorUnsupportedPlatform
)

var statusNames = map[Status]string{
	Success:                  "SUCCESS",
	ErrorPermission:          "ERROR_PERMISSION",
	ErrorNotFound:            "ERROR_NOT_FOUND",
	ErrorIO:                  "ERROR_IO",
	ErrorInternal:            "ERROR_INTERNAL",
	UserCancelled:            "USER_CANCELLED",
	AlreadyExists:            "ALREADY_EXISTS",
	ErrorUnsupportedPlatform: "ERROR_UNSUPPORTED_PLATFORM",
}

var namesToStatus = func() map[string]Status {
	m := make(map[string]Status, len(statusNames))
	for s, name := range statusNames {
		m[name] = s
	}
	return m
}()

// String returns the canonical wire name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "ERROR_INTERNAL"
}

// IsError reports whether the status represents a failure. Success and
// AlreadyExists are both non-error outcomes: AlreadyExists means the
// requested end state already held and no write was performed.
func (s Status) IsError() bool {
	return s != Success && s != AlreadyExists
}

// Parse looks up a status by its wire name.
func Parse(name string) (Status, bool) {
	s, ok := namesToStatus[name]
	return s, ok
}

// FormatLine encodes a status and message as a single NAME:message line,
// the helper's stdout contract.
func FormatLine(s Status, message string) string {
	return s.String() + ":" + message
}

// ParseLine decodes a NAME:message line. It returns false if the line does
// not start with a known status name followed by a colon.
func ParseLine(line string) (Status, string, bool) {
	name, message, found := strings.Cut(line, ":")
	if !found {
		return ErrorInternal, "", false
	}
	s, ok := namesToStatus[name]
	if !ok {
		return ErrorInternal, "", false
	}
	return s, message, true
}
