package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kiruse/dreamoc-livelink/internal/compositor"
	"github.com/kiruse/dreamoc-livelink/internal/config"
)

func TestCommonFlagsOverrideConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	flags := commonFlags{display: 3, width: 640, logLevel: "debug"}
	cfg, err := flags.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Display != 3 || cfg.Width != 640 || cfg.Height != config.DefaultHeight {
		t.Fatalf("cfg = display %d, %dx%d", cfg.Display, cfg.Width, cfg.Height)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}

	flags = commonFlags{width: 10}
	if _, err := flags.load(); err == nil {
		t.Fatal("expected validation error for width 10")
	}
}

func TestSourceFlagsRenderer(t *testing.T) {
	if _, err := (&sourceFlags{}).renderer(); err == nil {
		t.Fatal("expected error without sources")
	}
	if _, err := (&sourceFlags{front: "f.png", left: "l.png"}).renderer(); err == nil {
		t.Fatal("expected error for partial file set")
	}

	r, err := (&sourceFlags{dir: "/renders"}).renderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	if got := r.Sources[compositor.Left]; got != filepath.Join("/renders", "left.png") {
		t.Fatalf("left source = %q", got)
	}

	r, err = (&sourceFlags{dir: "/ignored", front: "f.png", left: "l.png", right: "r.png"}).renderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	if got := r.Sources[compositor.Right]; got != "r.png" {
		t.Fatalf("right source = %q", got)
	}
}

func TestSameDir(t *testing.T) {
	dir := t.TempDir()
	same, err := sameDir(dir, filepath.Join(dir, "sub", ".."))
	if err != nil || !same {
		t.Fatalf("sameDir = %v, %v; want true", same, err)
	}
	same, err = sameDir(dir, filepath.Join(dir, "sub"))
	if err != nil || same {
		t.Fatalf("sameDir = %v, %v; want false", same, err)
	}
}

func TestRunConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dreamoc", "config.yaml")

	if rc := runConfig([]string{"init", "--path", path}); rc != 0 {
		t.Fatalf("config init rc=%d, want 0", rc)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "display: 2") {
		t.Fatalf("config missing display:\n%s", data)
	}

	if rc := runConfig([]string{"init", "--path", path}); rc != 1 {
		t.Fatalf("second config init rc=%d, want 1", rc)
	}
	if rc := runConfig([]string{"validate", "--path", path}); rc != 0 {
		t.Fatalf("config validate rc=%d, want 0", rc)
	}

	if err := os.WriteFile(path, []byte("width: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if rc := runConfig([]string{"validate", "--path", path}); rc != 1 {
		t.Fatalf("config validate rc=%d, want 1 for invalid width", rc)
	}
	if rc := runConfig([]string{"bogus"}); rc != 2 {
		t.Fatalf("unknown subcommand rc=%d, want 2", rc)
	}
}
