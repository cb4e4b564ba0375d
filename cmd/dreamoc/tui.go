package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/kiruse/dreamoc-livelink/internal/config"
	"github.com/kiruse/dreamoc-livelink/internal/tui"
)

func runTUI(args []string) int {
	fs := pflag.NewFlagSet("tui", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var common commonFlags
	var dir string
	common.register(fs)
	fs.StringVar(&dir, "dir", "", "directory containing front.png, left.png and right.png for 's'")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dreamoc tui [--dir DIR] [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓  Navigate displays")
		fmt.Fprintln(os.Stderr, "  Enter     Move the preview to the selected display")
		fmt.Fprintln(os.Stderr, "  p         Show the test pattern")
		fmt.Fprintln(os.Stderr, "  s         Show renders from --dir")
		fmt.Fprintln(os.Stderr, "  e         Edit view size")
		fmt.Fprintln(os.Stderr, "  r         Rescan displays")
		fmt.Fprintln(os.Stderr, "  Ctrl+S    Save display and size to the config file")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C Quit")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	// Log lines on stderr would corrupt the screen.
	if common.logLevel == "" {
		common.logLevel = "error"
	}
	h, err := newHost(&common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer h.close()

	err = tui.Run(h.session, tui.Options{
		SourceDir:     dir,
		PanelWidthMM:  int(h.cfg.Panel.WidthCM * 10),
		PanelHeightMM: int(h.cfg.Panel.HeightCM * 10),
		Save: func(display, width, height int) error {
			return saveSelection(common.configPath, display, width, height)
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// saveSelection writes the effective config back with the chosen display and
// size. Includes are flattened into the file.
func saveSelection(path string, display, width, height int) error {
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return err
	}
	cfg := res.Config
	cfg.Display = display
	cfg.Width = width
	cfg.Height = height
	return cfg.Save(path)
}
