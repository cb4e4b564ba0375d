package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	display
//	width
//	height
//	render_dir
//	display_binary
//	terminate_timeout
//	keepalive_interval
//	panel
//	panel.width_cm
//	panel.height_cm
//	log_level
//	window_title
//	hotkeys
//	hotkeys.next_display
//	hotkeys.test_pattern
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if parts[0] == "panel" {
		switch {
		case len(parts) == 1:
			return cfg.Panel, nil
		case len(parts) == 2 && parts[1] == "width_cm":
			return cfg.Panel.WidthCM, nil
		case len(parts) == 2 && parts[1] == "height_cm":
			return cfg.Panel.HeightCM, nil
		}
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	if parts[0] == "hotkeys" {
		switch {
		case len(parts) == 1:
			return cfg.Hotkeys, nil
		case len(parts) == 2 && parts[1] == "next_display":
			return cfg.Hotkeys.NextDisplay, nil
		case len(parts) == 2 && parts[1] == "test_pattern":
			return cfg.Hotkeys.TestPattern, nil
		}
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	if len(parts) != 1 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	switch path {
	case "display":
		return cfg.Display, nil
	case "width":
		return cfg.Width, nil
	case "height":
		return cfg.Height, nil
	case "render_dir":
		return cfg.RenderDir, nil
	case "display_binary":
		return cfg.DisplayBinary, nil
	case "terminate_timeout":
		return cfg.TerminateTimeout, nil
	case "keepalive_interval":
		return cfg.KeepaliveInterval, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "window_title":
		return cfg.WindowTitle, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
