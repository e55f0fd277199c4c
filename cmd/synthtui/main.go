// Command synthtui is a terminal monitor for a running patch graph: it
// builds the named patch, triggers its voice, and redraws the output
// peak level and the list of module names on a tick (SPEC_FULL §0).
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/justyntemme/synthcore/internal/logging"
)

func main() {
	patchName := flag.String("patch", "default", "patch name (pkg/preset/patches/<name>.yaml)")
	note := flag.Int("note", 60, "MIDI note to hold")
	flag.Parse()

	logger := logging.New("synthtui")

	m, err := newModel(*patchName, *note)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Info("starting monitor", "patch", *patchName)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
