// Package config handles YAML configuration parsing and hot-reload.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/akstage/akstage/internal/elevate"
	"github.com/akstage/akstage/internal/hosts"
)

// DefaultConfigDir returns the default config directory path for users.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "akstage")
}

// DefaultConfigPath returns the default config file path for users.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Config represents the complete configuration.
type Config struct {
	// HostsPath is the hosts file all operations target.
	HostsPath string `yaml:"hostsPath"`
	// HelperPath is the installed location of the privileged helper binary.
	HelperPath string `yaml:"helperPath"`
	// EscalationTimeoutSeconds bounds elevated helper invocations. Zero
	// keeps the built-in default.
	EscalationTimeoutSeconds int `yaml:"escalationTimeoutSeconds"`
}

// EscalationTimeout returns the configured timeout as a duration, or zero
// when unset.
func (c *Config) EscalationTimeout() time.Duration {
	return time.Duration(c.EscalationTimeoutSeconds) * time.Second
}

// applyDefaults fills unset fields with system defaults.
func (c *Config) applyDefaults() {
	if c.HostsPath == "" {
		c.HostsPath = hosts.DefaultPath
	}
	if c.HelperPath == "" {
		c.HelperPath = elevate.DefaultHelperPath
	}
}

// Manager handles configuration loading and watching.
type Manager struct {
	path     string
	config   *Config
	mu       sync.RWMutex
	watcher  *fsnotify.Watcher
	onChange func(*Config)
	stopCh   chan struct{}
}

// NewManager creates a new config manager.
func NewManager(path string) *Manager {
	return &Manager{
		path:   path,
		stopCh: make(chan struct{}),
	}
}

// Load reads and parses the configuration file. A missing file yields the
// defaults rather than an error, so first runs work without any setup.
func (m *Manager) Load() error {
	var cfg Config

	data, err := os.ReadFile(m.path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := ValidateConfig(&cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()

	return nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Watch starts watching the config file for changes.
func (m *Manager) Watch(onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	m.watcher = watcher
	m.onChange = onChange

	go m.watchLoop()

	if err := watcher.Add(m.path); err != nil {
		return fmt.Errorf("failed to watch config file: %w", err)
	}

	return nil
}

func (m *Manager) watchLoop() {
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := m.Load(); err == nil && m.onChange != nil {
					m.onChange(m.Get())
				}
			}
		case <-m.watcher.Errors:
			// Ignore watcher errors
		case <-m.stopCh:
			return
		}
	}
}

// Stop stops watching the config file.
func (m *Manager) Stop() {
	close(m.stopCh)
	if m.watcher != nil {
		m.watcher.Close()
	}
}

// Save writes the configuration to the file.
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if cfg == nil {
		return fmt.Errorf("no config loaded")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// CreateDefault creates a default configuration file.
func CreateDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{}
	cfg.applyDefaults()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}
