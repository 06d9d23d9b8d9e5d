// Package tui provides the main Bubble Tea application.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/akstage/akstage/internal/dnsutil"
	"github.com/akstage/akstage/internal/elevate"
	"github.com/akstage/akstage/internal/flush"
	"github.com/akstage/akstage/internal/status"
)

// resolveTimeout bounds the DNS lookups behind the apply flow.
const resolveTimeout = 15 * time.Second

// logLevel classifies a status log line.
type logLevel int

const (
	logInfo logLevel = iota
	logSuccess
	logWarning
	logError
)

type logEntry struct {
	level logLevel
	text  string
}

// Message types
type (
	resolveMsg struct {
		domain string
		ip     string
		cname  string
		err    error
	}
	applyMsg struct {
		domain string
		ip     string
		status status.Status
		detail string
	}
	removeMsg struct {
		domain string
		status status.Status
		detail string
	}
	hostsContentMsg struct {
		status  status.Status
		content string
	}
)

// Model is the main Bubble Tea model.
type Model struct {
	dispatcher *elevate.Dispatcher
	resolver   *dnsutil.Resolver
	flushFn    func() error

	input   textinput.Model
	viewer  viewport.Model
	spinner spinner.Model

	busy    bool
	log     []logEntry
	width   int
	height  int
	version string

	// lastIP remembers the staging IP applied for the domain currently in
	// the input, so "remove" can target the exact entry.
	lastIP     string
	lastDomain string
}

// NewModel creates a new TUI model.
func NewModel(dispatcher *elevate.Dispatcher, resolver *dnsutil.Resolver, version string) *Model {
	input := textinput.New()
	input.Placeholder = "www.example.com"
	input.CharLimit = 253
	input.Width = 50
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return &Model{
		dispatcher: dispatcher,
		resolver:   resolver,
		flushFn:    flush.New(flush.MethodAuto).Flush,
		input:      input,
		viewer:     viewport.New(80, 12),
		spinner:    sp,
		version:    version,
	}
}

// Run starts the TUI.
func Run(dispatcher *elevate.Dispatcher, resolver *dnsutil.Resolver, version string) error {
	p := tea.NewProgram(NewModel(dispatcher, resolver, version), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("akstage"),
		m.spinner.Tick,
		m.loadHosts(),
	)
}

func (m *Model) loadHosts() tea.Cmd {
	return func() tea.Msg {
		st, content := m.dispatcher.Read()
		return hostsContentMsg{status: st, content: content}
	}
}

func (m *Model) resolve(domain string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		defer cancel()

		ip, cname, err := m.resolver.StagingIP(ctx, domain)
		return resolveMsg{domain: domain, ip: ip, cname: cname, err: err}
	}
}

func (m *Model) apply(domain, ip string) tea.Cmd {
	return func() tea.Msg {
		st, detail := m.dispatcher.Update(ip, domain, false)
		if st == status.Success {
			// Best effort: a stale cache just delays the switch.
			_ = m.flushFn()
		}
		return applyMsg{domain: domain, ip: ip, status: st, detail: detail}
	}
}

func (m *Model) remove(domain, ip string) tea.Cmd {
	return func() tea.Msg {
		var st status.Status
		var detail string
		if ip != "" {
			st, detail = m.dispatcher.Remove(ip, domain)
		} else {
			// IP unknown: drop every entry for the domain. The IP argument
			// is ignored by the delete path but the helper contract still
			// wants one.
			st, detail = m.dispatcher.Update("0.0.0.0", domain, true)
		}
		if st == status.Success {
			_ = m.flushFn()
		}
		return removeMsg{domain: domain, status: st, detail: detail}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewer.Width = msg.Width - 4
		m.viewer.Height = msg.Height - 14
		if m.viewer.Height < 3 {
			m.viewer.Height = 3
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resolveMsg:
		return m.handleResolve(msg)

	case applyMsg:
		m.busy = false
		m.reportOutcome("update", msg.status, msg.detail)
		if msg.status == status.Success {
			m.lastIP = msg.ip
			m.lastDomain = msg.domain
		}
		return m, m.loadHosts()

	case removeMsg:
		m.busy = false
		m.reportOutcome("remove", msg.status, msg.detail)
		if msg.status == status.Success && msg.domain == m.lastDomain {
			m.lastIP = ""
			m.lastDomain = ""
		}
		return m, m.loadHosts()

	case hostsContentMsg:
		if msg.status == status.Success {
			m.viewer.SetContent(msg.content)
		} else {
			m.viewer.SetContent(fmt.Sprintf("(unable to read hosts file: %s)", msg.content))
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		if m.busy {
			return m, nil
		}
		domain := dnsutil.SanitizeDomain(m.input.Value())
		if domain != m.input.Value() {
			m.logf(logInfo, "Input sanitized to %s", domain)
			m.input.SetValue(domain)
		}
		if !dnsutil.ValidateDomain(domain) {
			m.logf(logError, "Invalid domain: %q", domain)
			return m, nil
		}
		m.busy = true
		m.logf(logInfo, "Resolving staging IP for %s ...", domain)
		return m, m.resolve(domain)

	case "ctrl+r":
		if m.busy {
			return m, nil
		}
		domain := dnsutil.SanitizeDomain(m.input.Value())
		if !dnsutil.ValidateDomain(domain) {
			m.logf(logError, "Invalid domain: %q", domain)
			return m, nil
		}
		ip := ""
		if domain == m.lastDomain {
			ip = m.lastIP
		}
		m.busy = true
		m.logf(logInfo, "Removing staging entry for %s ...", domain)
		return m, m.remove(domain, ip)

	case "ctrl+l":
		return m, m.loadHosts()

	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewer, cmd = m.viewer.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResolve(msg resolveMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.busy = false
		m.logf(logError, "Lookup failed: %v", msg.err)
		return m, nil
	}
	m.logf(logSuccess, "Staging IP for %s: %s (via %s)", msg.domain, msg.ip, msg.cname)
	m.logf(logInfo, "Updating hosts file ...")
	return m, m.apply(msg.domain, msg.ip)
}

// reportOutcome appends one log line describing an operation result.
func (m *Model) reportOutcome(op string, st status.Status, detail string) {
	switch st {
	case status.Success:
		m.logf(logSuccess, "%s", detail)
	case status.AlreadyExists:
		m.logf(logWarning, "%s", detail)
	case status.UserCancelled:
		m.logf(logWarning, "Cancelled: %s", detail)
	default:
		m.logf(logError, "%s failed [%s]: %s", op, st, detail)
	}
}

func (m *Model) logf(level logLevel, format string, args ...any) {
	m.log = append(m.log, logEntry{level: level, text: fmt.Sprintf(format, args...)})
	// Keep the log bounded.
	if len(m.log) > 200 {
		m.log = m.log[len(m.log)-200:]
	}
}

// View renders the UI.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("akstage — Akamai Staging Switcher"))
	if m.version != "" {
		b.WriteString(helpBarStyle.Render(" v" + m.version))
	}
	b.WriteString("\n\n")

	b.WriteString(inputLabelStyle.Render("Domain"))
	b.WriteString("\n")
	style := inputStyle
	if m.input.Focused() {
		style = inputFocusStyle
	}
	b.WriteString(style.Render(m.input.View()))
	b.WriteString("\n")

	if m.busy {
		b.WriteString(m.spinner.View())
		b.WriteString(helpBarStyle.Render(" working..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderLog())
	b.WriteString("\n")
	b.WriteString(viewerStyle.Render(m.viewer.View()))
	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

// renderLog shows the most recent status lines.
func (m *Model) renderLog() string {
	const visible = 4
	start := 0
	if len(m.log) > visible {
		start = len(m.log) - visible
	}

	var lines []string
	for _, entry := range m.log[start:] {
		var st lipgloss.Style
		switch entry.level {
		case logSuccess:
			st = logSuccessStyle
		case logWarning:
			st = logWarningStyle
		case logError:
			st = logErrorStyle
		default:
			st = logInfoStyle
		}
		lines = append(lines, st.Render(entry.text))
	}
	for len(lines) < visible {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHelp() string {
	keys := []struct{ key, desc string }{
		{"enter", "resolve & apply"},
		{"ctrl+r", "remove entry"},
		{"ctrl+l", "reload hosts"},
		{"↑/↓", "scroll"},
		{"esc", "quit"},
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = helpKeyStyle.Render(k.key) + helpBarStyle.Render(" "+k.desc)
	}
	return helpBarStyle.Render(strings.Join(parts, helpBarStyle.Render(" • ")))
}
