// Package elevate re-runs hosts file operations through a privileged helper
// process when a direct attempt fails with a permission error. The helper
// performs the identical parse/mutate/atomic-write sequence in its own
// process; the only contract between the two sides is the helper's
// STATUS:message stdout line (plus raw file bytes for reads).
package elevate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/akstage/akstage/internal/hosts"
	"github.com/akstage/akstage/internal/status"
)

// DefaultHelperPath is the standard install location of the privileged
// helper binary.
const DefaultHelperPath = "/usr/libexec/akstage/akstage-helper"

// defaultTimeout bounds pkexec and osascript invocations.
const defaultTimeout = 10 * time.Second

// operation names match the helper's positional command argument.
const (
	opUpdate = "update"
	opRemove = "remove"
	opRead   = "read"
)

// runFunc executes a command and returns its stdout and stderr. A non-zero
// exit is reported through err as an *exec.ExitError.
type runFunc func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

// Dispatcher wraps an Editor with the try-local-else-delegate strategy. Each
// public operation attempts the direct edit and, only on ErrorPermission,
// re-issues the same operation through a platform-specific elevated helper
// invocation.
type Dispatcher struct {
	editor     *hosts.Editor
	helperPath string
	timeout    time.Duration
	logger     func(format string, args ...any)

	// Seams for tests.
	goos      string
	sandboxed func() bool
	run       runFunc
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHelperPath overrides the helper binary location.
func WithHelperPath(path string) Option {
	return func(d *Dispatcher) { d.helperPath = path }
}

// WithTimeout overrides the subprocess wall-clock bound.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// WithLogger installs a debug logger.
func WithLogger(logger func(format string, args ...any)) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// New creates a dispatcher around the given editor.
func New(editor *hosts.Editor, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		editor:     editor,
		helperPath: DefaultHelperPath,
		timeout:    defaultTimeout,
		goos:       runtime.GOOS,
		sandboxed:  inFlatpakSandbox,
		run:        runCommand,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// inFlatpakSandbox reports whether the process runs inside a Flatpak
// sandbox, where pkexec must be reached through flatpak-spawn on the host.
func inFlatpakSandbox() bool {
	if _, err := os.Stat("/.flatpak-info"); err == nil {
		return true
	}
	_, ok := os.LookupEnv("FLATPAK_ID")
	return ok
}

func runCommand(ctx context.Context, name string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func (d *Dispatcher) debugf(format string, args ...any) {
	if d.logger != nil {
		d.logger("[elevate] "+format, args...)
	}
}

// Update ensures domain maps to ip (or, with deleteDomain set, removes every
// entry for domain), escalating on permission failure.
func (d *Dispatcher) Update(ip, domain string, deleteDomain bool) (status.Status, string) {
	var st status.Status
	var msg string
	if deleteDomain {
		st, msg = d.editor.DeleteDomain(domain)
	} else {
		st, msg = d.editor.Upsert(domain, ip)
	}
	if st != status.ErrorPermission {
		return st, msg
	}
	d.debugf("direct update failed with permission error, escalating")
	return d.escalate(opUpdate, d.helperArgs(opUpdate, ip, domain, deleteDomain))
}

// Remove deletes the (ip, domain) pair, escalating on permission failure.
func (d *Dispatcher) Remove(ip, domain string) (status.Status, string) {
	st, msg := d.editor.Remove(ip, domain)
	if st != status.ErrorPermission {
		return st, msg
	}
	d.debugf("direct remove failed with permission error, escalating")
	return d.escalate(opRemove, d.helperArgs(opRemove, ip, domain, false))
}

// Read returns the hosts file content, escalating only when the direct read
// is denied. Any other direct outcome, success included, is returned as-is.
func (d *Dispatcher) Read() (status.Status, string) {
	st, content := d.editor.Read()
	if st != status.ErrorPermission {
		return st, content
	}
	d.debugf("direct read failed with permission error, escalating")
	return d.escalate(opRead, d.helperArgs(opRead, "", "", false))
}

// helperArgs builds the helper's command line for the given operation.
func (d *Dispatcher) helperArgs(op, ip, domain string, deleteDomain bool) []string {
	args := []string{d.helperPath, op}
	switch op {
	case opUpdate:
		args = append(args, "--ip", ip, "--domain", domain, "--delete", fmt.Sprintf("%t", deleteDomain))
	case opRemove:
		args = append(args, "--ip", ip, "--domain", domain)
	}
	return args
}

// escalate picks the platform's elevated-execution strategy and runs the
// helper through it.
func (d *Dispatcher) escalate(op string, helperCmd []string) (status.Status, string) {
	switch {
	case d.goos == "linux" && d.sandboxed():
		d.debugf("flatpak sandbox detected, escalating via flatpak-spawn")
		// flatpak-spawn adds a host hop on top of pkexec, so grant it extra
		// headroom over the configured bound.
		return d.runElevated(op, "flatpak-spawn", append([]string{"--host", "pkexec"}, helperCmd...), d.timeout+d.timeout/2, status.ErrorInternal)
	case d.goos == "linux":
		d.debugf("escalating via pkexec")
		return d.runElevated(op, "pkexec", helperCmd, d.timeout, status.ErrorNotFound)
	case d.goos == "darwin":
		d.debugf("escalating via osascript administrator prompt")
		script := fmt.Sprintf("do shell script %q with administrator privileges", shellJoin(helperCmd))
		return d.runElevated(op, "osascript", []string{"-e", script}, d.timeout, status.ErrorInternal)
	default:
		return status.ErrorUnsupportedPlatform,
			fmt.Sprintf("Permission denied. Automated privilege escalation is not supported on this OS (%s).", d.goos)
	}
}

// runElevated executes one escalation strategy with a hard wall-clock bound
// and interprets the helper's output. notFoundStatus is returned when the
// escalation tool itself is missing; the platforms disagree on how fatal
// that is.
func (d *Dispatcher) runElevated(op, name string, args []string, timeout time.Duration, notFoundStatus status.Status) (status.Status, string) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	d.debugf("executing: %s %s", name, strings.Join(args, " "))
	stdout, stderr, err := d.run(ctx, name, args...)

	if ctx.Err() == context.DeadlineExceeded {
		return status.ErrorInternal, fmt.Sprintf("Privileged operation timed out for '%s'.", op)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return d.interpretOutput(op, stdout, stderr)
	case errors.As(err, &exitErr):
		return d.interpretFailure(op, stderr, exitErr.ExitCode())
	case isNotFound(err):
		return notFoundStatus, fmt.Sprintf("Failed to perform '%s': %s or helper binary (%s) not found.", op, name, d.helperPath)
	default:
		return status.ErrorInternal, fmt.Sprintf("Error executing %s for '%s': %v", name, op, err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}

// cancellationMarkers appear on stderr when the user dismisses or fails the
// authorization prompt. "-128" is the AppleScript user-cancelled error code.
var cancellationMarkers = []string{
	"cancel",
	"authenticate",
	"authorization",
	"not authorized",
	"(-128)",
	"org.freedesktop.PolicyKit1.Error.NotAuthorized",
}

// interpretFailure maps a non-zero exit of the escalation tool. The helper
// itself always exits zero once it has reported a status, so a non-zero exit
// means the elevation mechanism failed or the user declined.
func (d *Dispatcher) interpretFailure(op, stderr string, exitCode int) (status.Status, string) {
	detail := strings.TrimSpace(stderr)
	if detail == "" {
		detail = fmt.Sprintf("elevation tool exited with code %d and no stderr", exitCode)
	}
	lowered := strings.ToLower(detail)
	for _, marker := range cancellationMarkers {
		if strings.Contains(lowered, strings.ToLower(marker)) {
			return status.UserCancelled, fmt.Sprintf("Operation '%s' cancelled by user: %s", op, detail)
		}
	}
	return status.ErrorInternal, fmt.Sprintf("Failed to perform '%s' via privilege escalation: %s", op, detail)
}

// interpretOutput decodes the helper's stdout after a zero exit.
func (d *Dispatcher) interpretOutput(op, stdout, stderr string) (status.Status, string) {
	output := strings.TrimSpace(stdout)

	if output == "" {
		if op == opRead {
			d.debugf("helper read returned empty content")
			return status.Success, ""
		}
		return status.ErrorInternal, fmt.Sprintf("Helper returned no output for '%s'.", op)
	}

	firstLine, _, _ := strings.Cut(output, "\n")
	if st, msg, ok := status.ParseLine(firstLine); ok {
		d.debugf("helper reported %s", st)
		return st, msg
	}

	if op == opRead {
		// No status prefix: the whole stdout is the hosts file content.
		d.debugf("helper read returned %d bytes of raw content", len(output))
		return status.Success, output
	}

	detail := fmt.Sprintf("Helper returned malformed output for '%s': %s", op, firstLine)
	if s := strings.TrimSpace(stderr); s != "" {
		detail += " (stderr: " + s + ")"
	}
	return status.ErrorInternal, detail
}

// shellJoin quotes each argument for a POSIX shell and joins them with
// spaces, so the command survives the extra quoting layer osascript's
// "do shell script" introduces.
func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = shellQuote(arg)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
