// Package config provides validation functions for configuration.
package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig validates the entire configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return &ValidationError{Field: "config", Message: "config is nil"}
	}

	if strings.TrimSpace(cfg.HostsPath) == "" {
		return &ValidationError{
			Field:   "hostsPath",
			Message: "hosts file path is required",
		}
	}
	if !filepath.IsAbs(cfg.HostsPath) {
		return &ValidationError{
			Field:   "hostsPath",
			Message: fmt.Sprintf("hosts file path must be absolute: %s", cfg.HostsPath),
		}
	}

	if strings.TrimSpace(cfg.HelperPath) == "" {
		return &ValidationError{
			Field:   "helperPath",
			Message: "helper binary path is required",
		}
	}
	if !filepath.IsAbs(cfg.HelperPath) {
		return &ValidationError{
			Field:   "helperPath",
			Message: fmt.Sprintf("helper binary path must be absolute: %s", cfg.HelperPath),
		}
	}

	if cfg.EscalationTimeoutSeconds < 0 {
		return &ValidationError{
			Field:   "escalationTimeoutSeconds",
			Message: fmt.Sprintf("timeout must not be negative: %d", cfg.EscalationTimeoutSeconds),
		}
	}
	if cfg.EscalationTimeoutSeconds > 300 {
		return &ValidationError{
			Field:   "escalationTimeoutSeconds",
			Message: fmt.Sprintf("timeout too large (max 300s): %d", cfg.EscalationTimeoutSeconds),
		}
	}

	return nil
}

// ValidateIP checks if an IP address is valid (IPv4 or IPv6).
func ValidateIP(ip string) bool {
	if ip == "" {
		return false
	}
	return net.ParseIP(ip) != nil
}
