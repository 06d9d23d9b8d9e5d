// Package installer handles installation and uninstallation of the akstage
// privileged helper.
package installer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// HelperDir is the directory the helper binary is installed into.
	HelperDir = "/usr/libexec/akstage"
	// HelperPath is the installed location of the helper binary.
	HelperPath = "/usr/libexec/akstage/akstage-helper"

	// PolkitActionID identifies the helper to polkit.
	PolkitActionID = "com.akstage.helper"
	// PolkitPolicyPath is where the polkit action definition is installed
	// on Linux.
	PolkitPolicyPath = "/usr/share/polkit-1/actions/com.akstage.helper.policy"
)

// PolkitPolicy is the polkit action definition template. The annotated path
// lets pkexec run the helper after authentication.
const PolkitPolicy = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE policyconfig PUBLIC "-//freedesktop//DTD PolicyKit Policy Configuration 1.0//EN"
 "http://www.freedesktop.org/standards/PolicyKit/1.0/policyconfig.dtd">
<policyconfig>
  <action id="%s">
    <description>Modify the hosts file for Akamai staging</description>
    <message>Authentication is required to modify the hosts file</message>
    <defaults>
      <allow_any>auth_admin</allow_any>
      <allow_inactive>auth_admin</allow_inactive>
      <allow_active>auth_admin_keep</allow_active>
    </defaults>
    <annotate key="org.freedesktop.policykit.exec.path">%s</annotate>
  </action>
</policyconfig>
`

// Installer handles installation and uninstallation of the helper binary.
type Installer struct {
	helperSource string
	verbose      bool
}

// New creates an installer. The helper binary is expected next to the
// running executable as "akstage-helper".
func New() (*Installer, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable path: %w", err)
	}

	return &Installer{
		helperSource: filepath.Join(filepath.Dir(exe), "akstage-helper"),
		verbose:      true,
	}, nil
}

// CheckInstallation verifies a helper binary exists at path.
func CheckInstallation(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("helper binary not installed at %s", path)
	}
	return nil
}

// Install copies the helper binary into place and, on Linux, installs the
// polkit action definition pkexec needs.
func (i *Installer) Install() error {
	if os.Geteuid() != 0 {
		return fmt.Errorf("--install requires sudo")
	}
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	i.log("Installing akstage helper...")

	if _, err := os.Stat(i.helperSource); err != nil {
		return fmt.Errorf("helper binary not found next to akstage (%s): %w", i.helperSource, err)
	}

	if err := os.MkdirAll(HelperDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", HelperDir, err)
	}

	if err := i.copyHelper(); err != nil {
		return fmt.Errorf("failed to install helper binary: %w", err)
	}
	i.log("  Installed %s", HelperPath)

	if runtime.GOOS == "linux" {
		policy := fmt.Sprintf(PolkitPolicy, PolkitActionID, HelperPath)
		if err := os.WriteFile(PolkitPolicyPath, []byte(policy), 0o644); err != nil {
			return fmt.Errorf("failed to install polkit policy: %w", err)
		}
		i.log("  Installed %s", PolkitPolicyPath)
	}

	i.log("")
	i.log("✓ Installed successfully!")
	return nil
}

// Uninstall removes the helper binary and polkit policy.
func (i *Installer) Uninstall() error {
	if os.Geteuid() != 0 {
		return fmt.Errorf("--uninstall requires sudo")
	}

	i.log("Uninstalling akstage helper...")

	if err := os.Remove(HelperPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove helper binary: %w", err)
	}
	// The directory may hold nothing else; ignore failure if it does.
	_ = os.Remove(HelperDir)

	if runtime.GOOS == "linux" {
		if err := os.Remove(PolkitPolicyPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove polkit policy: %w", err)
		}
	}

	i.log("")
	i.log("✓ Uninstalled successfully!")
	i.log("")
	i.log("Note: configuration and preferences were preserved.")
	i.log("To fully remove, manually delete ~/.config/akstage/")
	return nil
}

func (i *Installer) copyHelper() error {
	src, err := os.Open(i.helperSource)
	if err != nil {
		return err
	}
	defer src.Close()

	tmp := HelperPath + ".new"
	dst, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmp)
		return err
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	// Replace atomically so a half-written helper is never runnable.
	if err := os.Rename(tmp, HelperPath); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (i *Installer) log(format string, args ...any) {
	if i.verbose {
		fmt.Printf(format+"\n", args...)
	}
}
