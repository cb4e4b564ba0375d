package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kiruse/dreamoc-livelink/internal/runtimepath"
)

const (
	DefaultDisplay          = 2
	DefaultWidth            = 1280
	DefaultHeight           = 720
	DefaultTerminateTimeout = 5 * time.Second
	DefaultPanelWidthCM     = 51
	DefaultPanelHeightCM    = 29
	DefaultWindowTitle      = "Dreamoc HD3 Preview"
	DefaultDisplayBinary    = "dreamoc-display"

	MinDimension = 50
	MaxWidth     = 3840
	MaxHeight    = 2160
)

// Panel is the physical size of the visible area of the display in
// centimeters.
type Panel struct {
	WidthCM  float64 `yaml:"width_cm"`
	HeightCM float64 `yaml:"height_cm"`
}

// Hotkeys are global X11 key sequences, e.g. "Mod4-Shift-d", active while
// dreamoc holds a preview. Empty disables a binding.
type Hotkeys struct {
	NextDisplay string `yaml:"next_display"`
	TestPattern string `yaml:"test_pattern"`
}

// Config is the effective configuration shared by dreamoc and
// dreamoc-display.
type Config struct {
	// Display is the 1-based number of the monitor the preview is shown on,
	// as the operating system numbers them.
	Display int `yaml:"display"`
	// Width and Height are the size of each rendered view in pixels.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// RenderDir holds front.png, left.png and right.png. Empty means the
	// runtime render directory.
	RenderDir string `yaml:"render_dir,omitempty"`
	// DisplayBinary is the display executable. Empty means dreamoc-display
	// next to the running executable, then $PATH.
	DisplayBinary     string        `yaml:"display_binary,omitempty"`
	TerminateTimeout  time.Duration `yaml:"terminate_timeout"`
	KeepaliveInterval time.Duration `yaml:"keepalive_interval"`
	Panel             Panel         `yaml:"panel"`
	LogLevel          string        `yaml:"log_level"`
	WindowTitle       string        `yaml:"window_title"`
	Hotkeys           Hotkeys       `yaml:"hotkeys"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Display:           DefaultDisplay,
		Width:             DefaultWidth,
		Height:            DefaultHeight,
		TerminateTimeout:  DefaultTerminateTimeout,
		KeepaliveInterval: 0,
		Panel: Panel{
			WidthCM:  DefaultPanelWidthCM,
			HeightCM: DefaultPanelHeightCM,
		},
		LogLevel:    "info",
		WindowTitle: DefaultWindowTitle,
	}
}

// ResolveRenderDir returns the configured render directory or the runtime
// default, creating it either way.
func (c *Config) ResolveRenderDir() (string, error) {
	if strings.TrimSpace(c.RenderDir) == "" {
		return runtimepath.RenderDir()
	}
	dir, err := expandHome(c.RenderDir)
	if err != nil {
		return "", err
	}
	if err := runtimepath.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// ResolveDisplayBinary locates the display executable.
func (c *Config) ResolveDisplayBinary() string {
	if strings.TrimSpace(c.DisplayBinary) != "" {
		if p, err := expandHome(c.DisplayBinary); err == nil {
			return p
		}
		return c.DisplayBinary
	}
	if exe, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exe), DefaultDisplayBinary)
		if info, err := os.Stat(sibling); err == nil && !info.IsDir() {
			return sibling
		}
	}
	return DefaultDisplayBinary
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.Display < 1 {
		return &ValidationError{Path: "display", Err: fmt.Errorf("display must be >= 1")}
	}
	if c.Width < MinDimension || c.Width > MaxWidth {
		return &ValidationError{Path: "width", Err: fmt.Errorf("width must be between %d and %d", MinDimension, MaxWidth)}
	}
	if c.Height < MinDimension || c.Height > MaxHeight {
		return &ValidationError{Path: "height", Err: fmt.Errorf("height must be between %d and %d", MinDimension, MaxHeight)}
	}
	if c.TerminateTimeout <= 0 {
		return &ValidationError{Path: "terminate_timeout", Err: fmt.Errorf("terminate_timeout must be > 0")}
	}
	if c.KeepaliveInterval < 0 {
		return &ValidationError{Path: "keepalive_interval", Err: fmt.Errorf("keepalive_interval must be >= 0")}
	}
	if c.Panel.WidthCM <= 0 {
		return &ValidationError{Path: "panel.width_cm", Err: fmt.Errorf("width_cm must be > 0")}
	}
	if c.Panel.HeightCM <= 0 {
		return &ValidationError{Path: "panel.height_cm", Err: fmt.Errorf("height_cm must be > 0")}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
