// Package flush clears OS-level DNS caches after hosts file changes, so a
// freshly pinned staging entry takes effect without waiting for cache expiry.
package flush

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Method defines the DNS flush method to use.
type Method string

const (
	MethodAuto        Method = "auto"
	MethodDscacheutil Method = "dscacheutil"
	MethodKillall     Method = "killall"
	MethodBoth        Method = "both"
	MethodSystemd     Method = "systemd"
	MethodNscd        Method = "nscd"
)

// Flusher handles DNS cache flushing.
type Flusher struct {
	method Method
	goos   string

	// run is a seam for tests.
	run func(name string, args ...string) error
}

// New creates a flusher using the given method; MethodAuto picks the best
// available mechanism for the platform.
func New(method Method) *Flusher {
	return &Flusher{
		method: method,
		goos:   runtime.GOOS,
		run:    runCommand,
	}
}

// Flush flushes the DNS cache using the configured method.
func (f *Flusher) Flush() error {
	method := f.method
	if method == MethodAuto || method == "" {
		method = f.detectMethod()
	}

	switch f.goos {
	case "darwin":
		return f.flushDarwin(method)
	case "linux":
		return f.flushLinux(method)
	default:
		return fmt.Errorf("unsupported operating system: %s", f.goos)
	}
}

func (f *Flusher) detectMethod() Method {
	switch f.goos {
	case "darwin":
		return MethodBoth
	case "linux":
		if _, err := exec.LookPath("resolvectl"); err == nil {
			return MethodSystemd
		}
		if _, err := exec.LookPath("systemd-resolve"); err == nil {
			return MethodSystemd
		}
		if _, err := exec.LookPath("nscd"); err == nil {
			return MethodNscd
		}
		return MethodAuto
	default:
		return MethodAuto
	}
}

func (f *Flusher) flushDarwin(method Method) error {
	switch method {
	case MethodDscacheutil:
		if err := f.run("dscacheutil", "-flushcache"); err != nil {
			return fmt.Errorf("dscacheutil failed: %w", err)
		}
	case MethodKillall:
		if err := f.run("killall", "-HUP", "mDNSResponder"); err != nil {
			return fmt.Errorf("killall mDNSResponder failed: %w", err)
		}
	case MethodBoth:
		errCache := f.run("dscacheutil", "-flushcache")
		errKill := f.run("killall", "-HUP", "mDNSResponder")
		if errCache != nil && errKill != nil {
			return fmt.Errorf("all DNS flush methods failed: %v, %v", errCache, errKill)
		}
	default:
		// Auto - try both, best effort
		_ = f.run("dscacheutil", "-flushcache")
		_ = f.run("killall", "-HUP", "mDNSResponder")
	}

	return nil
}

func (f *Flusher) flushLinux(method Method) error {
	switch method {
	case MethodSystemd:
		// resolvectl is the newer spelling, systemd-resolve the older.
		if err := f.run("resolvectl", "flush-caches"); err != nil {
			if err := f.run("systemd-resolve", "--flush-caches"); err != nil {
				return fmt.Errorf("systemd DNS flush failed: %w", err)
			}
		}
	case MethodNscd:
		if err := f.run("nscd", "-i", "hosts"); err != nil {
			if err := f.run("service", "nscd", "restart"); err != nil {
				return fmt.Errorf("nscd flush failed: %w", err)
			}
		}
	default:
		if err := f.run("resolvectl", "flush-caches"); err == nil {
			return nil
		}
		if err := f.run("systemd-resolve", "--flush-caches"); err == nil {
			return nil
		}
		if err := f.run("nscd", "-i", "hosts"); err == nil {
			return nil
		}
		// Most Linux resolvers read /etc/hosts directly, so there is
		// nothing left to flush.
	}

	return nil
}

func runCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...) // #nosec G204 - hardcoded flush utilities, not user input
	return cmd.Run()
}
