package hosts

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/akstage/akstage/internal/status"
)

// Fallback metadata applied when the target file does not exist yet.
const (
	defaultMode = os.FileMode(0o644)
	defaultUID  = 0
	defaultGID  = 0
)

// writeLines atomically replaces the hosts file with the given lines.
//
// A uniquely named temporary file is created in the same directory as the
// target so the final rename stays on one filesystem. The original file's
// mode and ownership are applied to the temporary file before the rename;
// every failure path removes the temporary file, so the target is always
// either the full old content or the full new content.
func (e *Editor) writeLines(lines []string) (status.Status, string) {
	mode := defaultMode
	uid, gid := defaultUID, defaultGID

	var st unix.Stat_t
	if err := unix.Stat(e.path, &st); err == nil {
		mode = os.FileMode(st.Mode & 0o777)
		uid = int(st.Uid)
		gid = int(st.Gid)
		e.debugf("captured metadata of %q: mode=%o uid=%d gid=%d", e.path, mode, uid, gid)
	} else if err == unix.ENOENT {
		e.debugf("%q does not exist, using default metadata (mode=%o root:root)", e.path, defaultMode)
	} else if err == unix.EACCES || err == unix.EPERM {
		return status.ErrorPermission, "Permission denied inspecting '" + e.path + "'."
	} else {
		return status.ErrorIO, "Failed to stat '" + e.path + "': " + err.Error()
	}

	tmp, err := os.CreateTemp(filepath.Dir(e.path), ".hosts-*")
	if err != nil {
		if os.IsPermission(err) {
			return status.ErrorPermission, "Permission denied during update of '" + e.path + "'."
		}
		return status.ErrorIO, "Failed to create temporary file: " + err.Error()
	}
	tmpPath := tmp.Name()
	e.debugf("writing %d lines to %q via temp file %q", len(lines), e.path, tmpPath)

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	for _, line := range lines {
		if !strings.HasSuffix(line, "\n") {
			line += "\n"
		}
		if _, err := tmp.WriteString(line); err != nil {
			cleanup()
			return status.ErrorIO, "I/O error writing temporary hosts file: " + err.Error()
		}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return status.ErrorIO, "I/O error closing temporary hosts file: " + err.Error()
	}

	// Never rename a file carrying the wrong metadata over the target.
	if err := e.chown(tmpPath, uid, gid); err != nil {
		_ = os.Remove(tmpPath)
		return status.ErrorIO, "Failed to set ownership on temp hosts file: " + err.Error()
	}
	if err := e.chmod(tmpPath, mode); err != nil {
		_ = os.Remove(tmpPath)
		return status.ErrorIO, "Failed to set permissions on temp hosts file: " + err.Error()
	}

	if err := os.Rename(tmpPath, e.path); err != nil {
		_ = os.Remove(tmpPath)
		if os.IsPermission(err) {
			return status.ErrorPermission, "Permission denied during update of '" + e.path + "'."
		}
		return status.ErrorIO, "I/O error replacing '" + e.path + "': " + err.Error()
	}

	e.debugf("successfully replaced %q", e.path)
	return status.Success, "Successfully updated '" + e.path + "'."
}
