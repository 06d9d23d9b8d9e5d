package tui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akstage/akstage/internal/dnsutil"
	"github.com/akstage/akstage/internal/elevate"
	"github.com/akstage/akstage/internal/hosts"
	"github.com/akstage/akstage/internal/status"
)

func newTestModel(t *testing.T, content string) (*Model, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	dispatcher := elevate.New(hosts.NewEditor(path))
	m := NewModel(dispatcher, dnsutil.NewResolver(), "test")
	m.flushFn = func() error { return nil }
	return m, path
}

func lastLog(m *Model) logEntry {
	if len(m.log) == 0 {
		return logEntry{}
	}
	return m.log[len(m.log)-1]
}

func TestUpdate_ResolveFailureLogsError(t *testing.T) {
	m, _ := newTestModel(t, "127.0.0.1 localhost\n")
	m.busy = true

	updated, cmd := m.Update(resolveMsg{domain: "www.example.com", err: errors.New("no such host")})
	m = updated.(*Model)

	assert.Nil(t, cmd)
	assert.False(t, m.busy)
	assert.Equal(t, logError, lastLog(m).level)
	assert.Contains(t, lastLog(m).text, "no such host")
}

func TestUpdate_ResolveSuccessTriggersApply(t *testing.T) {
	m, path := newTestModel(t, "127.0.0.1 localhost\n")
	m.busy = true

	updated, cmd := m.Update(resolveMsg{domain: "www.example.com", ip: "23.1.2.3", cname: "www.example.com.edgesuite-staging.net"})
	m = updated.(*Model)
	require.NotNil(t, cmd)

	// The returned command performs the hosts update.
	msg := cmd()
	applied, ok := msg.(applyMsg)
	require.True(t, ok)
	assert.Equal(t, status.Success, applied.status)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "23.1.2.3 www.example.com\n")
}

func TestUpdate_ApplySuccessRemembersEntry(t *testing.T) {
	m, _ := newTestModel(t, "")
	m.busy = true

	updated, _ := m.Update(applyMsg{domain: "www.example.com", ip: "23.1.2.3", status: status.Success, detail: "updated"})
	m = updated.(*Model)

	assert.False(t, m.busy)
	assert.Equal(t, "23.1.2.3", m.lastIP)
	assert.Equal(t, "www.example.com", m.lastDomain)
	assert.Equal(t, logSuccess, lastLog(m).level)
}

func TestUpdate_AlreadyExistsIsWarningNotError(t *testing.T) {
	m, _ := newTestModel(t, "")

	updated, _ := m.Update(applyMsg{domain: "www.example.com", ip: "23.1.2.3", status: status.AlreadyExists, detail: "already set"})
	m = updated.(*Model)

	assert.Equal(t, logWarning, lastLog(m).level)
}

func TestUpdate_RemoveClearsRememberedEntry(t *testing.T) {
	m, _ := newTestModel(t, "")
	m.lastIP = "23.1.2.3"
	m.lastDomain = "www.example.com"

	updated, _ := m.Update(removeMsg{domain: "www.example.com", status: status.Success, detail: "removed"})
	m = updated.(*Model)

	assert.Empty(t, m.lastIP)
	assert.Empty(t, m.lastDomain)
}

func TestUpdate_HostsContentFillsViewer(t *testing.T) {
	m, _ := newTestModel(t, "")

	updated, _ := m.Update(hostsContentMsg{status: status.Success, content: "127.0.0.1 localhost\n"})
	m = updated.(*Model)

	assert.Contains(t, m.viewer.View(), "127.0.0.1 localhost")
}

func TestHandleKey_InvalidDomainRejected(t *testing.T) {
	m, _ := newTestModel(t, "127.0.0.1 localhost\n")
	m.input.SetValue("not a domain")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(*Model)

	assert.Nil(t, cmd)
	assert.False(t, m.busy)
	assert.Equal(t, logError, lastLog(m).level)
}

func TestHandleKey_SanitizesInput(t *testing.T) {
	m, _ := newTestModel(t, "127.0.0.1 localhost\n")
	m.input.SetValue("https://www.example.com/page")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(*Model)

	assert.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Equal(t, "www.example.com", m.input.Value())
}

func TestView_RendersWithoutPanicking(t *testing.T) {
	m, _ := newTestModel(t, "127.0.0.1 localhost\n")
	m.logf(logInfo, "hello")

	out := m.View()
	assert.Contains(t, out, "akstage")
	assert.Contains(t, out, "Domain")
}
