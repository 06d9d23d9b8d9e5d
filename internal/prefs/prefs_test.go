package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "absent.conf"))
	require.NoError(t, err)
	assert.False(t, p.CustomDNSEnabled)
	assert.Empty(t, p.CustomDNSServers)
	assert.False(t, p.Debug)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.conf")
	content := `[Preferences]
custom_dns_enabled = true
custom_dns_servers = 8.8.8.8, 1.1.1.1
debug = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.True(t, p.CustomDNSEnabled)
	assert.True(t, p.Debug)
	assert.Equal(t, []string{"8.8.8.8", "1.1.1.1"}, p.Servers())
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preferences.conf")

	in := &Preferences{CustomDNSEnabled: true, CustomDNSServers: "9.9.9.9", Debug: true}
	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestServers(t *testing.T) {
	p := &Preferences{CustomDNSEnabled: false, CustomDNSServers: "8.8.8.8"}
	assert.Nil(t, p.Servers(), "disabled custom DNS yields no servers")

	p = &Preferences{CustomDNSEnabled: true, CustomDNSServers: " 8.8.8.8 ,, 1.1.1.1 "}
	assert.Equal(t, []string{"8.8.8.8", "1.1.1.1"}, p.Servers())

	p = &Preferences{CustomDNSEnabled: true, CustomDNSServers: "  "}
	assert.Empty(t, p.Servers())
}
