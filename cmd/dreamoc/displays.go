package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/kiruse/dreamoc-livelink/internal/x11"
)

func runDisplays(args []string) int {
	fs := pflag.NewFlagSet("displays", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "config file path (default: ~/.config/dreamoc/config.yaml)")
	asJSON := fs.Bool("json", false, "print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dreamoc displays [--json]")
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	common := commonFlags{configPath: *configPath}
	cfg, err := common.load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	conn, err := x11.NewConnection()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer conn.Close()

	monitors, err := conn.GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	likely, _ := x11.ClosestToSize(monitors,
		int(cfg.Panel.WidthCM*10), int(cfg.Panel.HeightCM*10))
	active := 0
	if m, err := conn.GetActiveMonitor(); err == nil {
		active = m.Number
	}

	if *asJSON {
		type entry struct {
			x11.Monitor
			Configured bool `json:"configured"`
			Likely     bool `json:"likely_dreamoc"`
			Active     bool `json:"active"`
		}
		out := make([]entry, 0, len(monitors))
		for _, m := range monitors {
			out = append(out, entry{
				Monitor:    m,
				Configured: m.Number == cfg.Display,
				Likely:     likely != nil && likely.Number == m.Number,
				Active:     m.Number == active,
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tRESOLUTION\tSIZE (mm)\tNOTES")
	for _, m := range monitors {
		notes := ""
		if m.Primary {
			notes += "primary "
		}
		if m.Number == active {
			notes += "active "
		}
		if m.Number == cfg.Display {
			notes += "configured "
		}
		if likely != nil && likely.Number == m.Number {
			notes += "dreamoc?"
		}
		fmt.Fprintf(tw, "%d\t%s\t%dx%d\t%dx%d\t%s\n",
			m.Number, m.Name, m.Width, m.Height, m.WidthMM, m.HeightMM, notes)
	}
	if err := tw.Flush(); err != nil {
		return 1
	}
	if cfg.Display > len(monitors) {
		fmt.Fprintf(os.Stderr, "note: display %d is configured but only %d monitor(s) attached; the last one will be used\n", cfg.Display, len(monitors))
	}
	return 0
}
