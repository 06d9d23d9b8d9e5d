// Package prefs stores per-user preferences in an INI file.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

const section = "Preferences"

// DefaultPath returns the default preferences file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "akstage", "preferences.conf")
}

// Preferences holds user-tunable behavior that is not system configuration.
type Preferences struct {
	// CustomDNSEnabled switches staging lookups to CustomDNSServers instead
	// of the system resolver.
	CustomDNSEnabled bool
	// CustomDNSServers is a comma-separated DNS server list.
	CustomDNSServers string
	// Debug enables diagnostic logging on stderr.
	Debug bool
}

// Servers returns the configured custom DNS servers as a cleaned list, empty
// when custom DNS is disabled or no servers are set.
func (p *Preferences) Servers() []string {
	if !p.CustomDNSEnabled {
		return nil
	}
	var servers []string
	for _, s := range strings.Split(p.CustomDNSServers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	return servers
}

// Load reads preferences from path. A missing file yields defaults.
func Load(path string) (*Preferences, error) {
	p := &Preferences{}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return p, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences file: %w", err)
	}

	sec := file.Section(section)
	p.CustomDNSEnabled = sec.Key("custom_dns_enabled").MustBool(false)
	p.CustomDNSServers = sec.Key("custom_dns_servers").String()
	p.Debug = sec.Key("debug").MustBool(false)
	return p, nil
}

// Save writes preferences to path, creating parent directories as needed.
func Save(path string, p *Preferences) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	file := ini.Empty()
	sec := file.Section(section)
	sec.Key("custom_dns_enabled").SetValue(fmt.Sprintf("%t", p.CustomDNSEnabled))
	sec.Key("custom_dns_servers").SetValue(p.CustomDNSServers)
	sec.Key("debug").SetValue(fmt.Sprintf("%t", p.Debug))

	if err := file.SaveTo(path); err != nil {
		return fmt.Errorf("failed to write preferences file: %w", err)
	}
	return nil
}
