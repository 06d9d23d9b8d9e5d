// Package hosts implements line-level parsing and editing of the system
// hosts file: idempotent add/update/delete of entries and atomic file
// replacement preserving ownership and permissions.
package hosts

import "strings"

// parsedLine is the structured form of one raw hosts file line. A line that
// is blank, comment-only, or unparsable has an empty IP and is preserved
// verbatim through its Raw field.
type parsedLine struct {
	// IP is the address token, empty for non-entry lines.
	IP string
	// Hostnames holds the hostname tokens in their original casing.
	Hostnames []string
	// normalized holds the same hostnames lower-cased, used only for matching.
	normalized []string
	// Comment is the trailing comment text after '#', without the '#' itself.
	Comment string
	// HasComment distinguishes "no comment" from an empty comment.
	HasComment bool
	// Raw is the original line as read, without its line terminator.
	Raw string
}

// isEntry reports whether the line carries an IP/hostname mapping.
func (l parsedLine) isEntry() bool {
	return l.IP != ""
}

// hasHost reports whether the given lower-cased domain appears among the
// line's hostnames. Matching is always on the normalized form.
func (l parsedLine) hasHost(domainLower string) bool {
	for _, h := range l.normalized {
		if h == domainLower {
			return true
		}
	}
	return false
}

// parseLine splits one raw hosts file line into its components.
//
// Lines with fewer than two whitespace-separated tokens before any '#' are
// deliberately treated as unparsable and kept byte-for-byte rather than
// silently dropped.
func parseLine(raw string) parsedLine {
	line := parsedLine{Raw: strings.TrimRight(raw, "\n")}
	trimmed := strings.TrimSpace(line.Raw)
	if trimmed == "" {
		return line
	}
	if strings.HasPrefix(trimmed, "#") {
		line.Comment = trimmed
		line.HasComment = true
		return line
	}

	data, comment, found := strings.Cut(trimmed, "#")
	if found {
		line.Comment = comment
		line.HasComment = true
	}

	fields := strings.Fields(data)
	if len(fields) < 2 {
		// Unparsable: a stray IP or single token. Preserve the whole line.
		line.Comment = trimmed
		line.HasComment = true
		return line
	}

	line.IP = fields[0]
	line.Hostnames = fields[1:]
	line.normalized = make([]string, len(fields[1:]))
	for i, h := range line.Hostnames {
		line.normalized[i] = strings.ToLower(h)
	}
	return line
}

// renderEntry builds an entry line from an IP, hostnames, and an optional
// trailing comment, terminated by a single newline.
func renderEntry(ip string, hostnames []string, comment string, hasComment bool) string {
	parts := append([]string{ip}, hostnames...)
	line := strings.Join(parts, " ")
	if hasComment {
		if strings.HasPrefix(comment, "#") {
			line += " " + comment
		} else {
			line += " #" + comment
		}
	}
	return strings.TrimSpace(line) + "\n"
}
