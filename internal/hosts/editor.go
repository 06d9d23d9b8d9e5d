package hosts

import (
	"fmt"
	"os"
	"strings"

	"github.com/akstage/akstage/internal/status"
)

// DefaultPath is the standard location of the system hosts file.
const DefaultPath = "/etc/hosts"

// Editor edits a hosts file. The path is injected at construction so tests
// and the privileged helper can point it at any file. Editor holds no state
// between operations: every call reads the file, transforms the lines in
// memory, and writes once (or not at all when no change is needed).
type Editor struct {
	path   string
	logger func(format string, args ...any)

	// Seams for failure injection in tests.
	chown func(path string, uid, gid int) error
	chmod func(path string, mode os.FileMode) error
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger installs a debug logger. Messages are diagnostic only and never
// part of any operation's result.
func WithLogger(logger func(format string, args ...any)) Option {
	return func(e *Editor) { e.logger = logger }
}

// NewEditor creates an editor for the hosts file at path.
func NewEditor(path string, opts ...Option) *Editor {
	e := &Editor{
		path:  path,
		chown: os.Chown,
		chmod: os.Chmod,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Path returns the hosts file path this editor operates on.
func (e *Editor) Path() string {
	return e.path
}

func (e *Editor) debugf(format string, args ...any) {
	if e.logger != nil {
		e.logger("[hosts] "+format, args...)
	}
}

// readLines reads the whole hosts file as a snapshot of raw lines, each
// keeping its own terminator except possibly the last.
func (e *Editor) readLines() ([]string, status.Status, string) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, status.ErrorNotFound, "Error reading '" + e.path + "': file not found."
		case os.IsPermission(err):
			return nil, status.ErrorPermission, "Permission denied reading '" + e.path + "'."
		default:
			return nil, status.ErrorIO, "I/O error reading '" + e.path + "': " + err.Error()
		}
	}
	return splitLines(string(data)), status.Success, ""
}

// splitLines splits content into lines, each retaining its trailing newline
// except possibly the last.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	var lines []string
	for {
		idx := strings.IndexByte(content, '\n')
		if idx < 0 {
			lines = append(lines, content)
			return lines
		}
		lines = append(lines, content[:idx+1])
		content = content[idx+1:]
		if content == "" {
			return lines
		}
	}
}

// stripHost is the shared per-line keep/rewrite/drop primitive. It removes
// every hostname matching domainLower from the parsed entry line. The second
// result is false when no hostname remains and the whole line must be
// dropped. Duplicate non-matching tokens are preserved as written.
func stripHost(ln parsedLine, domainLower string) (string, bool) {
	remaining := make([]string, 0, len(ln.Hostnames))
	for i, norm := range ln.normalized {
		if norm != domainLower {
			remaining = append(remaining, ln.Hostnames[i])
		}
	}
	if len(remaining) == 0 {
		return "", false
	}
	return renderEntry(ln.IP, remaining, ln.Comment, ln.HasComment), true
}

// Remove deletes the (ip, domain) pair from the hosts file. The domain is
// matched case-insensitively; an entry that shares its line with other
// hostnames only loses the one hostname. Returns AlreadyExists when no line
// matched, without writing.
func (e *Editor) Remove(ip, domain string) (status.Status, string) {
	domainLower := strings.ToLower(domain)
	e.debugf("removing entry %s %s from %q", ip, domainLower, e.path)

	lines, st, msg := e.readLines()
	if st != status.Success {
		return st, msg
	}

	var kept []string
	removed := false
	for _, raw := range lines {
		ln := parseLine(raw)
		if !ln.isEntry() || ln.IP != ip || !ln.hasHost(domainLower) {
			kept = append(kept, raw)
			continue
		}
		removed = true
		if rewritten, ok := stripHost(ln, domainLower); ok {
			e.debugf("rewriting line as %q", strings.TrimRight(rewritten, "\n"))
			kept = append(kept, rewritten)
		} else {
			e.debugf("dropping line %q, %q was its only hostname", ln.Raw, domainLower)
		}
	}

	if !removed {
		return status.AlreadyExists, fmt.Sprintf("Entry '%s %s' not found in '%s'. No changes made.", ip, domain, e.path)
	}

	if st, msg := e.writeLines(kept); st != status.Success {
		return st, msg
	}
	return status.Success, fmt.Sprintf("Successfully removed entry '%s %s' from '%s'.", ip, domain, e.path)
}

// DeleteDomain strips every occurrence of the domain across every IP line.
// Returns AlreadyExists when the domain was not present.
func (e *Editor) DeleteDomain(domain string) (status.Status, string) {
	domainLower := strings.ToLower(domain)
	e.debugf("deleting all entries for %q from %q", domainLower, e.path)

	lines, st, msg := e.readLines()
	if st != status.Success {
		return st, msg
	}

	var kept []string
	changed := false
	for _, raw := range lines {
		ln := parseLine(raw)
		if !ln.isEntry() || !ln.hasHost(domainLower) {
			kept = append(kept, raw)
			continue
		}
		changed = true
		if rewritten, ok := stripHost(ln, domainLower); ok {
			kept = append(kept, rewritten)
		}
	}

	if !changed {
		return status.AlreadyExists, fmt.Sprintf("No entry found for %s in '%s'. No changes made.", domain, e.path)
	}

	if st, msg := e.writeLines(kept); st != status.Success {
		return st, msg
	}
	return status.Success, fmt.Sprintf("Successfully removed entries for %s from '%s'.", domain, e.path)
}

// Upsert ensures the domain resolves to ip and nowhere else. Lines mapping
// the domain to a different IP lose the domain; a line already mapping it to
// ip has the hostname's casing normalized to the caller-supplied form. When
// no line holds the correct mapping a new entry line is appended. Returns
// AlreadyExists when the file already satisfies the request byte-for-byte.
func (e *Editor) Upsert(domain, ip string) (status.Status, string) {
	domainLower := strings.ToLower(domain)
	e.debugf("upserting %q -> %s in %q", domainLower, ip, e.path)

	lines, st, msg := e.readLines()
	if st != status.Success {
		return st, msg
	}

	var kept []string
	changed := false
	satisfied := false
	for _, raw := range lines {
		ln := parseLine(raw)
		if !ln.isEntry() || !ln.hasHost(domainLower) {
			kept = append(kept, raw)
			continue
		}

		if ln.IP == ip {
			satisfied = true
			// Normalize the matching hostnames to the caller-supplied casing.
			hostnames := make([]string, len(ln.Hostnames))
			for i, h := range ln.Hostnames {
				if ln.normalized[i] == domainLower {
					hostnames[i] = domain
				} else {
					hostnames[i] = h
				}
			}
			rewritten := renderEntry(ln.IP, hostnames, ln.Comment, ln.HasComment)
			if strings.TrimSpace(rewritten) != strings.TrimSpace(raw) {
				e.debugf("normalizing casing on line %q", ln.Raw)
				changed = true
			}
			kept = append(kept, rewritten)
			continue
		}

		// Domain present with the wrong IP: strip it from this line.
		changed = true
		if rewritten, ok := stripHost(ln, domainLower); ok {
			e.debugf("stripping %q from line with IP %s", domainLower, ln.IP)
			kept = append(kept, rewritten)
		} else {
			e.debugf("dropping line %q, %q was its only hostname", ln.Raw, domainLower)
		}
	}

	var st2 status.Status
	var msg2 string
	switch {
	case !satisfied:
		kept = append(kept, fmt.Sprintf("%s %s\n", ip, strings.TrimSpace(domain)))
		changed = true
		st2 = status.Success
		msg2 = fmt.Sprintf("Updated '%s': set %s to %s.", e.path, domain, ip)
	case changed:
		st2 = status.Success
		msg2 = fmt.Sprintf("Updated '%s': corrected entries for %s to %s.", e.path, domain, ip)
	default:
		st2 = status.AlreadyExists
		msg2 = fmt.Sprintf("Entry %s %s already correctly configured in '%s'.", ip, domain, e.path)
	}

	if changed {
		if wst, wmsg := e.writeLines(kept); wst != status.Success {
			return wst, wmsg
		}
	}
	return st2, msg2
}

// Read returns the full content of the hosts file. On failure the returned
// string is a human-readable message instead of file content.
func (e *Editor) Read() (status.Status, string) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return status.ErrorNotFound, "Error reading '" + e.path + "': file not found."
		case os.IsPermission(err):
			return status.ErrorPermission, "Permission denied reading '" + e.path + "'."
		default:
			return status.ErrorIO, "I/O error reading '" + e.path + "': " + err.Error()
		}
	}
	e.debugf("read %d bytes from %q", len(data), e.path)
	return status.Success, string(data)
}

// LookupIP returns the IP currently mapped to the domain, or "" when the
// domain is absent. It performs a direct read only and never escalates.
func (e *Editor) LookupIP(domain string) (string, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", e.path, err)
	}
	domainLower := strings.ToLower(domain)
	for _, raw := range splitLines(string(data)) {
		ln := parseLine(raw)
		if ln.isEntry() && ln.hasHost(domainLower) {
			return ln.IP, nil
		}
	}
	return "", nil
}
