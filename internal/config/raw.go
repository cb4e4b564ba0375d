package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList names files layered under the including one, either as one
// path or a list:
//
//	include: hotkeys.yaml
//
//	include:
//	  - ~/.config/dreamoc/panel.yaml
//	  - hotkeys.yaml
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawPanel struct {
	WidthCM  *float64 `yaml:"width_cm"`
	HeightCM *float64 `yaml:"height_cm"`
}

type RawHotkeys struct {
	NextDisplay *string `yaml:"next_display"`
	TestPattern *string `yaml:"test_pattern"`
}

// RawConfig mirrors one YAML file. Nil fields were not set in that file.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	Display           *int           `yaml:"display"`
	Width             *int           `yaml:"width"`
	Height            *int           `yaml:"height"`
	RenderDir         *string        `yaml:"render_dir"`
	DisplayBinary     *string        `yaml:"display_binary"`
	TerminateTimeout  *time.Duration `yaml:"terminate_timeout"`
	KeepaliveInterval *time.Duration `yaml:"keepalive_interval"`
	Panel             *RawPanel      `yaml:"panel"`
	LogLevel          *string        `yaml:"log_level"`
	WindowTitle       *string        `yaml:"window_title"`
	Hotkeys           *RawHotkeys    `yaml:"hotkeys"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil

	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.Width != nil {
		out.Width = overlay.Width
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	if overlay.RenderDir != nil {
		out.RenderDir = overlay.RenderDir
	}
	if overlay.DisplayBinary != nil {
		out.DisplayBinary = overlay.DisplayBinary
	}
	if overlay.TerminateTimeout != nil {
		out.TerminateTimeout = overlay.TerminateTimeout
	}
	if overlay.KeepaliveInterval != nil {
		out.KeepaliveInterval = overlay.KeepaliveInterval
	}
	if overlay.Panel != nil {
		if out.Panel == nil {
			out.Panel = &RawPanel{}
		}
		merged := mergeRawPanel(*out.Panel, *overlay.Panel)
		out.Panel = &merged
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.WindowTitle != nil {
		out.WindowTitle = overlay.WindowTitle
	}
	if overlay.Hotkeys != nil {
		if out.Hotkeys == nil {
			out.Hotkeys = &RawHotkeys{}
		}
		merged := *out.Hotkeys
		if overlay.Hotkeys.NextDisplay != nil {
			merged.NextDisplay = overlay.Hotkeys.NextDisplay
		}
		if overlay.Hotkeys.TestPattern != nil {
			merged.TestPattern = overlay.Hotkeys.TestPattern
		}
		out.Hotkeys = &merged
	}
	return out
}

func mergeRawPanel(base RawPanel, overlay RawPanel) RawPanel {
	out := base
	if overlay.WidthCM != nil {
		out.WidthCM = overlay.WidthCM
	}
	if overlay.HeightCM != nil {
		out.HeightCM = overlay.HeightCM
	}
	return out
}
