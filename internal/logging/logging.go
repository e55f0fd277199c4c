// Package logging provides the structured logger shared by every
// synthcore command, a thin wrapper over charmbracelet/log (leveled,
// key=value structured fields, no global mutable logger beyond a process
// default).
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// New creates a logger with the given component name as its prefix,
// writing to stderr at the default (Info) level.
func New(component string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          component,
		ReportTimestamp: true,
	})
	return l
}

// Default is the process-wide logger used by packages that don't carry
// their own component-scoped logger (e.g. library code exercised from
// tests). Commands should prefer New(component) for a distinct prefix.
var Default = New("synthcore")

// SetLevel adjusts the default logger's verbosity; "debug", "info",
// "warn" and "error" are accepted, anything else falls back to Info.
func SetLevel(name string) {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		lvl = log.InfoLevel
	}
	Default.SetLevel(lvl)
}
