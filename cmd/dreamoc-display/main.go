// dreamoc-display shows three rendered views on a Dreamoc HD3 holographic
// display. It is spawned by dreamoc and controlled through its stdin; see
// internal/ipc for the request format.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/kiruse/dreamoc-livelink/internal/compositor"
	"github.com/kiruse/dreamoc-livelink/internal/config"
	"github.com/kiruse/dreamoc-livelink/internal/display"
	"github.com/kiruse/dreamoc-livelink/internal/glview"
	"github.com/kiruse/dreamoc-livelink/internal/ipc"
)

// GLFW and OpenGL calls must come from the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "dreamoc-display: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("dreamoc-display", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "config file path (default: ~/.config/dreamoc/config.yaml)")
	renderDir := fs.String("render-dir", "", "directory holding front.png, left.png and right.png")
	logLevel := fs.String("log-level", "", "debug, info, warn or error (overrides config)")
	monitor := fs.Int("monitor", display.LastMonitor, "zero-based monitor to open on before the first USE_DISPLAY (-1: last)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dreamoc-display [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Reads control requests from stdin. Normally started by 'dreamoc'.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *renderDir != "" {
		cfg.RenderDir = *renderDir
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if _, err := config.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		logger.Warn("stdin is a terminal; this program expects binary requests from dreamoc")
	}

	dir, err := cfg.ResolveRenderDir()
	if err != nil {
		return fmt.Errorf("render directory: %w", err)
	}

	backend := glview.New(glview.Options{
		RenderDir: dir,
		Panel: compositor.PanelSize{
			Width:  float32(cfg.Panel.WidthCM),
			Height: float32(cfg.Panel.HeightCM),
		},
		Title:  cfg.WindowTitle,
		Logger: logger,
	})
	engine := display.New(backend, display.Options{
		InitialMonitor: *monitor,
		Dimensions:     display.Dimensions{Width: cfg.Width, Height: cfg.Height},
		Logger:         logger,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("signal received", "signal", sig)
			engine.RequestTerminate()
		case <-engine.Done():
		}
	}()

	go serve(os.Stdin, engine, logger)

	logger.Info("display starting", "render_dir", dir, "monitor", *monitor)
	return engine.Run()
}

func serve(r io.Reader, engine *display.Engine, logger *slog.Logger) {
	if err := ipc.NewHost(r, engine, logger).Serve(); err != nil {
		logger.Error("control stream failed, shutting down", "error", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}
