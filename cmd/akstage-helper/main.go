// Package main is the privileged helper invoked through pkexec, osascript or
// flatpak-spawn. It performs a single hosts file operation and reports the
// result as a STATUS:message line on stdout.
package main

import (
	"os"

	"github.com/akstage/akstage/internal/helpercli"
	"github.com/akstage/akstage/internal/hosts"
)

func main() {
	opts := helpercli.Options{
		HostsPath: hosts.DefaultPath,
		Debug:     os.Getenv("AKSTAGE_DEBUG") != "",
	}
	os.Exit(helpercli.Run(os.Args[1:], opts, os.Stdout, os.Stderr))
}
