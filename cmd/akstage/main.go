// Package main provides the entry point for the akstage application.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/akstage/akstage/internal/config"
	"github.com/akstage/akstage/internal/dnsutil"
	"github.com/akstage/akstage/internal/elevate"
	"github.com/akstage/akstage/internal/flush"
	"github.com/akstage/akstage/internal/hosts"
	"github.com/akstage/akstage/internal/installer"
	"github.com/akstage/akstage/internal/prefs"
	"github.com/akstage/akstage/internal/status"
	"github.com/akstage/akstage/internal/tui"
	"github.com/akstage/akstage/internal/version"
)

// version is set at compile time via ldflags
var appVersion = "dev"

const (
	githubOwner = "akstage"
	githubRepo  = "akstage"
)

func main() {
	versionFlag := flag.Bool("version", false, "Show version")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	installFlag := flag.Bool("install", false, "Install the privileged helper (requires sudo)")
	uninstallFlag := flag.Bool("uninstall", false, "Uninstall the privileged helper (requires sudo)")
	updateFlag := flag.Bool("update", false, "Check for updates")
	configPath := flag.String("config", config.DefaultConfigPath(), "Path to config file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "akstage - Akamai Staging Switcher\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  akstage                     Launch TUI\n")
		fmt.Fprintf(os.Stderr, "  akstage resolve <domain>    Resolve staging IP for domain\n")
		fmt.Fprintf(os.Stderr, "  akstage update <domain>     Resolve and pin domain to its staging IP\n")
		fmt.Fprintf(os.Stderr, "  akstage remove <domain>     Remove the pinned entry for domain\n")
		fmt.Fprintf(os.Stderr, "  akstage delete <domain>     Remove every entry for domain\n")
		fmt.Fprintf(os.Stderr, "  akstage read                Print the hosts file\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Installation:\n")
		fmt.Fprintf(os.Stderr, "  sudo akstage --install      Install helper\n")
		fmt.Fprintf(os.Stderr, "  sudo akstage --uninstall    Uninstall helper\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("akstage version %s\n", appVersion)
		os.Exit(0)
	}

	if *updateFlag {
		checkForUpdates()
		os.Exit(0)
	}

	if *installFlag {
		runInstall()
		return
	}

	if *uninstallFlag {
		runUninstall()
		return
	}

	app, err := newApp(*configPath, *debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		app.runTUI()
		return
	}

	switch args[0] {
	case "resolve":
		app.runResolve(requireDomain(args))
	case "update":
		app.runUpdate(requireDomain(args))
	case "remove":
		app.runRemove(requireDomain(args))
	case "delete":
		app.runDelete(requireDomain(args))
	case "read":
		app.runRead()
	case "version":
		fmt.Printf("akstage version %s\n", appVersion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
}

func requireDomain(args []string) string {
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: akstage %s <domain>\n", args[0])
		os.Exit(1)
	}
	domain := dnsutil.SanitizeDomain(args[1])
	if !dnsutil.ValidateDomain(domain) {
		fmt.Fprintf(os.Stderr, "Error: invalid domain: %q\n", args[1])
		os.Exit(1)
	}
	return domain
}

func runInstall() {
	inst, err := installer.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := inst.Install(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runUninstall() {
	inst, err := installer.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := inst.Uninstall(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func checkForUpdates() {
	fmt.Printf("akstage version %s\n", appVersion)
	fmt.Println("Checking for updates...")

	checker := version.NewChecker(githubOwner, githubRepo, appVersion)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := checker.CheckForUpdate(ctx)
	if update == nil {
		fmt.Println("You are running the latest version.")
		return
	}

	fmt.Printf("\n%s\n", update.FormatUpdateMessage())
}

// app wires the configured collaborators together for one invocation.
type app struct {
	editor     *hosts.Editor
	dispatcher *elevate.Dispatcher
	resolver   *dnsutil.Resolver
	flusher    *flush.Flusher
	helperPath string
	debugf     func(format string, args ...any)
}

func newApp(configPath string, debug bool) (*app, error) {
	manager := config.NewManager(configPath)
	if err := manager.Load(); err != nil {
		return nil, err
	}
	cfg := manager.Get()

	userPrefs, err := prefs.Load(prefs.DefaultPath())
	if err != nil {
		return nil, err
	}

	var logger func(format string, args ...any)
	if debug || userPrefs.Debug {
		logger = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}

	editor := hosts.NewEditor(cfg.HostsPath, hosts.WithLogger(logger))

	dispatcherOpts := []elevate.Option{
		elevate.WithHelperPath(cfg.HelperPath),
		elevate.WithLogger(logger),
	}
	if timeout := cfg.EscalationTimeout(); timeout > 0 {
		dispatcherOpts = append(dispatcherOpts, elevate.WithTimeout(timeout))
	}

	resolverOpts := []dnsutil.Option{dnsutil.WithLogger(logger)}
	if servers := userPrefs.Servers(); len(servers) > 0 {
		resolverOpts = append(resolverOpts, dnsutil.WithServers(servers))
	}

	return &app{
		editor:     editor,
		dispatcher: elevate.New(editor, dispatcherOpts...),
		resolver:   dnsutil.NewResolver(resolverOpts...),
		flusher:    flush.New(flush.MethodAuto),
		helperPath: cfg.HelperPath,
		debugf:     logger,
	}, nil
}

// warnIfHelperMissing flags a likely escalation failure before the first
// privileged attempt. Root edits the hosts file directly and never needs
// the helper.
func (a *app) warnIfHelperMissing() {
	if os.Geteuid() == 0 {
		return
	}
	if err := installer.CheckInstallation(a.helperPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v. Run 'sudo akstage --install' if escalation fails.\n", err)
	}
}

// flushDNS clears resolver caches after a successful change, best effort.
func (a *app) flushDNS() {
	if err := a.flusher.Flush(); err != nil && a.debugf != nil {
		a.debugf("DNS cache flush failed: %v", err)
	}
}

func (a *app) runTUI() {
	if err := tui.Run(a.dispatcher, a.resolver, appVersion); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) stagingIP(domain string) (ip, cname string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	ip, cname, err := a.resolver.StagingIP(ctx, domain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return ip, cname
}

func (a *app) runResolve(domain string) {
	ip, cname := a.stagingIP(domain)
	fmt.Printf("%s\t%s\n", ip, cname)
}

func (a *app) runUpdate(domain string) {
	ip, cname := a.stagingIP(domain)
	fmt.Printf("Staging IP for %s: %s (via %s)\n", domain, ip, cname)

	a.warnIfHelperMissing()
	st, msg := a.dispatcher.Update(ip, domain, false)
	if st == status.Success {
		a.flushDNS()
	}
	reportOutcome(st, msg)
}

func (a *app) runRemove(domain string) {
	ip, err := a.editor.LookupIP(domain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if ip == "" {
		fmt.Printf("No entry for %s in %s.\n", domain, a.editor.Path())
		return
	}

	a.warnIfHelperMissing()
	st, msg := a.dispatcher.Remove(ip, domain)
	if st == status.Success {
		a.flushDNS()
	}
	reportOutcome(st, msg)
}

func (a *app) runDelete(domain string) {
	a.warnIfHelperMissing()
	// The IP argument is ignored by the delete path but the helper contract
	// still wants one.
	st, msg := a.dispatcher.Update("0.0.0.0", domain, true)
	if st == status.Success {
		a.flushDNS()
	}
	reportOutcome(st, msg)
}

func (a *app) runRead() {
	st, content := a.dispatcher.Read()
	if st != status.Success {
		fmt.Fprintf(os.Stderr, "Error [%s]: %s\n", st, content)
		os.Exit(1)
	}
	fmt.Print(content)
}

func reportOutcome(st status.Status, msg string) {
	switch st {
	case status.Success:
		fmt.Printf("✓ %s\n", msg)
	case status.AlreadyExists:
		fmt.Printf("= %s\n", msg)
	default:
		fmt.Fprintf(os.Stderr, "Error [%s]: %s\n", st, msg)
		os.Exit(1)
	}
}
