package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name  string
		cfg   *Config
		valid bool
	}{
		{"nil config", nil, false},
		{"valid", &Config{HostsPath: "/etc/hosts", HelperPath: "/usr/libexec/akstage/akstage-helper"}, true},
		{"empty hosts path", &Config{HelperPath: "/opt/helper"}, false},
		{"relative hosts path", &Config{HostsPath: "etc/hosts", HelperPath: "/opt/helper"}, false},
		{"empty helper path", &Config{HostsPath: "/etc/hosts"}, false},
		{"relative helper path", &Config{HostsPath: "/etc/hosts", HelperPath: "helper"}, false},
		{"negative timeout", &Config{HostsPath: "/etc/hosts", HelperPath: "/opt/helper", EscalationTimeoutSeconds: -1}, false},
		{"huge timeout", &Config{HostsPath: "/etc/hosts", HelperPath: "/opt/helper", EscalationTimeoutSeconds: 9999}, false},
		{"reasonable timeout", &Config{HostsPath: "/etc/hosts", HelperPath: "/opt/helper", EscalationTimeoutSeconds: 30}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.cfg)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateIP(t *testing.T) {
	assert.True(t, ValidateIP("127.0.0.1"))
	assert.True(t, ValidateIP("23.50.60.70"))
	assert.True(t, ValidateIP("::1"))
	assert.False(t, ValidateIP(""))
	assert.False(t, ValidateIP("999.1.1.1"))
	assert.False(t, ValidateIP("not-an-ip"))
}
