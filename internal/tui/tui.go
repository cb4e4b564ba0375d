// Package tui is an interactive terminal control panel for the preview:
// pick the monitor, change the view size and push renders or the test
// pattern.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/kiruse/dreamoc-livelink/internal/session"
	"github.com/kiruse/dreamoc-livelink/internal/x11"
)

// Controller is the part of a session the panel drives.
type Controller interface {
	SetDisplay(display int) error
	SetDimensions(width, height int) error
	Update(r session.Renderer) error
	Status() session.Status
}

// Options configures the panel.
type Options struct {
	// SourceDir, when set, is where 's' reads front.png, left.png and
	// right.png from.
	SourceDir string
	// PanelWidthMM and PanelHeightMM pick the monitor flagged as the likely
	// Dreamoc.
	PanelWidthMM  int
	PanelHeightMM int
	// Monitors lists attached monitors. Defaults to querying X11.
	Monitors func() ([]x11.Monitor, error)
	// Save persists the selected display and size. Nil disables ctrl+s.
	Save func(display, width, height int) error
}

// Run starts the panel and blocks until the user quits.
func Run(ctrl Controller, opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if opts.Monitors == nil {
		opts.Monitors = queryMonitors
	}

	p := tea.NewProgram(newModel(ctrl, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func queryMonitors() ([]x11.Monitor, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.GetMonitors()
}
