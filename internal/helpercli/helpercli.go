// Package helpercli implements the command-line contract of the privileged
// helper process. The dispatcher re-invokes the helper with the operation
// encoded as arguments; the helper runs the identical direct hosts file
// operation and reports a single STATUS:message line on stdout (raw file
// bytes for successful reads). The helper always exits zero once a status
// has been reported — failures travel in the status line, not the exit
// code, because a non-zero exit is reserved for the elevation mechanism
// itself failing.
package helpercli

import (
	"flag"
	"fmt"
	"io"

	"github.com/akstage/akstage/internal/hosts"
	"github.com/akstage/akstage/internal/status"
)

// Options configures one helper invocation.
type Options struct {
	// HostsPath is the hosts file to operate on.
	HostsPath string
	// Debug enables diagnostic logging on stderr.
	Debug bool
}

// Run parses args (without the program name) and executes the requested
// operation against the hosts file. The exit code is always 0 once a status
// line or read content has been written to stdout.
func Run(args []string, opts Options, stdout, stderr io.Writer) int {
	logf := func(format string, a ...any) {}
	if opts.Debug {
		logf = func(format string, a ...any) {
			fmt.Fprintf(stderr, "[helper] "+format+"\n", a...)
		}
	}

	report := func(st status.Status, msg string) int {
		logf("reporting %s", st)
		fmt.Fprintln(stdout, status.FormatLine(st, msg))
		return 0
	}

	if len(args) < 1 {
		return report(status.ErrorInternal, "Missing command: expected 'update', 'remove', or 'read'.")
	}
	command := args[0]

	fs := flag.NewFlagSet("akstage-helper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	ip := fs.String("ip", "", "IP address (required for update/remove)")
	domain := fs.String("domain", "", "domain name (required for update/remove)")
	deleteFlag := fs.String("delete", "false", "for update: 'true' removes all entries for the domain")
	if err := fs.Parse(args[1:]); err != nil {
		return report(status.ErrorInternal, "Invalid arguments: "+err.Error())
	}

	hostsPath := opts.HostsPath
	if hostsPath == "" {
		hostsPath = hosts.DefaultPath
	}
	editor := hosts.NewEditor(hostsPath, hosts.WithLogger(logf))

	switch command {
	case "update":
		if *ip == "" {
			return report(status.ErrorInternal, "Argument --ip is required for update.")
		}
		if *domain == "" {
			return report(status.ErrorInternal, "Argument --domain is required for update.")
		}
		switch *deleteFlag {
		case "true":
			logf("deleting all entries for %q", *domain)
			return report(editor.DeleteDomain(*domain))
		case "false":
			logf("upserting %q -> %s", *domain, *ip)
			return report(editor.Upsert(*domain, *ip))
		default:
			return report(status.ErrorInternal, "Argument --delete must be 'true' or 'false'.")
		}

	case "remove":
		if *ip == "" {
			return report(status.ErrorInternal, "Argument --ip is required for remove.")
		}
		if *domain == "" {
			return report(status.ErrorInternal, "Argument --domain is required for remove.")
		}
		logf("removing entry %s %s", *ip, *domain)
		return report(editor.Remove(*ip, *domain))

	case "read":
		st, content := editor.Read()
		if st != status.Success {
			return report(st, content)
		}
		logf("read %d bytes", len(content))
		// Raw content on stdout, no status prefix.
		fmt.Fprint(stdout, content)
		return 0

	default:
		return report(status.ErrorInternal, fmt.Sprintf("Unknown command %q: expected 'update', 'remove', or 'read'.", command))
	}
}
