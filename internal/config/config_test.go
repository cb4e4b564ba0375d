package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Display != 2 || cfg.Width != 1280 || cfg.Height != 720 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TerminateTimeout != 5*time.Second {
		t.Fatalf("terminate_timeout = %v, want 5s", cfg.TerminateTimeout)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files loaded, got %v", res.Files)
	}
	if res.Config.Width != DefaultWidth {
		t.Fatalf("width = %d, want %d", res.Config.Width, DefaultWidth)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Display != DefaultDisplay {
		t.Fatalf("display = %d, want %d", res.Config.Display, DefaultDisplay)
	}
}

func TestLoadFromPath_Overrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", strings.Join([]string{
		"display: 1",
		"width: 800",
		"height: 600",
		"terminate_timeout: 2s",
		"keepalive_interval: 500ms",
		"panel:",
		"  width_cm: 40",
		"log_level: debug",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Display != 1 || cfg.Width != 800 || cfg.Height != 600 {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if cfg.TerminateTimeout != 2*time.Second || cfg.KeepaliveInterval != 500*time.Millisecond {
		t.Fatalf("durations = %v, %v", cfg.TerminateTimeout, cfg.KeepaliveInterval)
	}
	if cfg.Panel.WidthCM != 40 || cfg.Panel.HeightCM != DefaultPanelHeightCM {
		t.Fatalf("panel = %+v, want width 40 and default height", cfg.Panel)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log_level = %q", cfg.LogLevel)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "unknown_key: true\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadFromPath_RejectsOutOfRangeDimensions(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
	}{
		{"width too small", "width: 49\n", "width"},
		{"width too large", "width: 3841\n", "width"},
		{"height too small", "height: 10\n", "height"},
		{"height too large", "height: 2161\n", "height"},
		{"display zero", "display: 0\n", "display"},
		{"negative panel", "panel:\n  height_cm: -1\n", "panel.height_cm"},
		{"bad level", "log_level: loud\n", "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "config.yaml", tt.data)
			_, err := LoadFromPath(path)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("Path = %q, want %q", verr.Path, tt.path)
			}
			if verr.Source.Kind != SourceFile || verr.Source.Line == 0 {
				t.Fatalf("expected file source for %s, got %+v", tt.path, verr.Source)
			}
		})
	}
}

func TestLoadFromPath_IncludeOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", "width: 800\nheight: 600\n")
	writeConfig(t, dir, "override.yaml", "width: 900\n")

	// Later includes win over earlier ones; the main file wins over both.
	path := writeConfig(t, dir, "config.yaml", strings.Join([]string{
		"include:",
		"  - base.yaml",
		"  - override.yaml",
		"width: 1000",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Width != 1000 {
		t.Fatalf("expected width to be 1000, got %d", res.Config.Width)
	}
	if res.Config.Height != 600 {
		t.Fatalf("expected height from include to be 600, got %d", res.Config.Height)
	}
	if len(res.Files) != 3 || filepath.Base(res.Files[2]) != "config.yaml" {
		t.Fatalf("expected includes then config.yaml, got %v", res.Files)
	}
	if src := res.Sources["height"]; filepath.Base(src.File) != "base.yaml" || src.Line != 2 {
		t.Fatalf("height source = %+v, want base.yaml line 2", src)
	}
	if src := res.Sources["width"]; filepath.Base(src.File) != "config.yaml" || src.Line != 4 {
		t.Fatalf("width source = %+v, want config.yaml line 4", src)
	}
}

func TestLoadFromPath_IncludeRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config.d"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := writeConfig(t, dir, "config.yaml", "include: config.d\n")

	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), "directory") {
		t.Fatalf("expected directory include error, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorPointsIntoInclude(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "panel.yaml", "panel:\n  width_cm: 0\n")
	path := writeConfig(t, dir, "config.yaml", "include: panel.yaml\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "panel.width_cm" || filepath.Base(verr.Source.File) != "panel.yaml" || verr.Source.Line != 2 {
		t.Fatalf("error = %v (source %+v), want panel.yaml line 2", err, verr.Source)
	}
}

func TestLoadFromPath_SharedIncludeReadOnce(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "common.yaml", "height: 500\n")
	writeConfig(t, dir, "a.yaml", "include: common.yaml\n")
	path := writeConfig(t, dir, "config.yaml", "include:\n  - a.yaml\n  - common.yaml\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Files) != 3 {
		t.Fatalf("files = %v, want common.yaml once", res.Files)
	}
	if res.Config.Height != 500 {
		t.Fatalf("height = %d, want 500", res.Config.Height)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestExplain(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "width: 640\npanel:\n  height_cm: 30\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	value, src, err := Explain(res, "width")
	if err != nil {
		t.Fatalf("Explain(width): %v", err)
	}
	if value != 640 || src.Kind != SourceFile || src.Line != 1 {
		t.Fatalf("Explain(width) = %v, %+v", value, src)
	}

	value, src, err = Explain(res, "panel.height_cm")
	if err != nil {
		t.Fatalf("Explain(panel.height_cm): %v", err)
	}
	if value != 30.0 || src.Kind != SourceFile || src.Line != 3 {
		t.Fatalf("Explain(panel.height_cm) = %v, %+v", value, src)
	}

	value, src, err = Explain(res, "height")
	if err != nil {
		t.Fatalf("Explain(height): %v", err)
	}
	if value != DefaultHeight || src.Kind != SourceDefault {
		t.Fatalf("Explain(height) = %v, %+v", value, src)
	}

	if _, _, err := Explain(res, "panel.depth_cm"); err == nil {
		t.Fatal("expected error for unknown path")
	}
}

func TestLoadFromPath_HotkeysMergeAcrossIncludes(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "keys.yaml", "hotkeys:\n  next_display: Mod4-Shift-d\n  test_pattern: Mod4-Shift-t\n")
	path := writeConfig(t, dir, "config.yaml", "include: keys.yaml\nhotkeys:\n  test_pattern: \"\"\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := res.Config.Hotkeys.NextDisplay; got != "Mod4-Shift-d" {
		t.Fatalf("next_display = %q", got)
	}
	if got := res.Config.Hotkeys.TestPattern; got != "" {
		t.Fatalf("test_pattern = %q, want disabled by main file", got)
	}

	value, src, err := Explain(res, "hotkeys.next_display")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if value != "Mod4-Shift-d" || src.Kind != SourceFile || filepath.Base(src.File) != "keys.yaml" {
		t.Fatalf("Explain(hotkeys.next_display) = %v, %+v", value, src)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 1920
	cfg.Height = 1080
	cfg.KeepaliveInterval = 3 * time.Second

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *res.Config != *cfg {
		t.Fatalf("loaded %+v, want %+v", res.Config, cfg)
	}
}

func TestResolveRenderDir(t *testing.T) {
	runtime := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", runtime)

	cfg := DefaultConfig()
	dir, err := cfg.ResolveRenderDir()
	if err != nil {
		t.Fatalf("ResolveRenderDir() error: %v", err)
	}
	if want := filepath.Join(runtime, "dreamoc", "renders"); dir != want {
		t.Fatalf("ResolveRenderDir() = %q, want %q", dir, want)
	}

	cfg.RenderDir = filepath.Join(t.TempDir(), "custom")
	dir, err = cfg.ResolveRenderDir()
	if err != nil {
		t.Fatalf("ResolveRenderDir() error: %v", err)
	}
	if dir != cfg.RenderDir {
		t.Fatalf("ResolveRenderDir() = %q, want %q", dir, cfg.RenderDir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("custom render dir not created: %v", err)
	}
}

func TestResolveDisplayBinary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DisplayBinary = "/opt/dreamoc/bin/dreamoc-display"
	if got := cfg.ResolveDisplayBinary(); got != cfg.DisplayBinary {
		t.Fatalf("ResolveDisplayBinary() = %q", got)
	}

	cfg.DisplayBinary = ""
	got := cfg.ResolveDisplayBinary()
	if filepath.Base(got) != DefaultDisplayBinary {
		t.Fatalf("ResolveDisplayBinary() = %q, want %s", got, DefaultDisplayBinary)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
