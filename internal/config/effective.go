package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw on top of the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.Width != nil {
		cfg.Width = *raw.Width
	}
	if raw.Height != nil {
		cfg.Height = *raw.Height
	}
	if raw.RenderDir != nil {
		cfg.RenderDir = *raw.RenderDir
	}
	if raw.DisplayBinary != nil {
		cfg.DisplayBinary = *raw.DisplayBinary
	}
	if raw.TerminateTimeout != nil {
		cfg.TerminateTimeout = *raw.TerminateTimeout
	}
	if raw.KeepaliveInterval != nil {
		cfg.KeepaliveInterval = *raw.KeepaliveInterval
	}
	if raw.Panel != nil {
		if raw.Panel.WidthCM != nil {
			cfg.Panel.WidthCM = *raw.Panel.WidthCM
		}
		if raw.Panel.HeightCM != nil {
			cfg.Panel.HeightCM = *raw.Panel.HeightCM
		}
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.WindowTitle != nil {
		cfg.WindowTitle = *raw.WindowTitle
	}
	if raw.Hotkeys != nil {
		if raw.Hotkeys.NextDisplay != nil {
			cfg.Hotkeys.NextDisplay = *raw.Hotkeys.NextDisplay
		}
		if raw.Hotkeys.TestPattern != nil {
			cfg.Hotkeys.TestPattern = *raw.Hotkeys.TestPattern
		}
	}
	return cfg
}
