package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/kiruse/dreamoc-livelink/internal/config"
	"github.com/kiruse/dreamoc-livelink/internal/ipc"
	"github.com/kiruse/dreamoc-livelink/internal/session"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "show":
		os.Exit(runShow(os.Args[2:]))
	case "pattern":
		os.Exit(runPattern(os.Args[2:]))
	case "watch":
		os.Exit(runWatch(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dreamoc <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  show                Show three rendered views until interrupted")
	fmt.Fprintln(w, "  pattern             Show the red/green/blue test pattern")
	fmt.Fprintln(w, "  watch               Re-show views whenever their files change")
	fmt.Fprintln(w, "  displays            List monitors and flag the likely Dreamoc")
	fmt.Fprintln(w, "  tui                 Interactive control panel")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config init         Write a default config file")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'dreamoc <command> --help' for command-specific options.")
}

// commonFlags are shared by every command that drives the display.
type commonFlags struct {
	configPath string
	display    int
	width      int
	height     int
	renderDir  string
	logLevel   string
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file path (default: ~/.config/dreamoc/config.yaml)")
	fs.IntVarP(&c.display, "display", "d", 0, "1-based monitor number (overrides config)")
	fs.IntVar(&c.width, "width", 0, "view width in pixels (overrides config)")
	fs.IntVar(&c.height, "height", 0, "view height in pixels (overrides config)")
	fs.StringVar(&c.renderDir, "render-dir", "", "directory shared with the display process (overrides config)")
	fs.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
}

// load reads the config and applies flag overrides.
func (c *commonFlags) load() (*config.Config, error) {
	var cfg *config.Config
	if c.configPath == "" {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		res, err := config.LoadFromPath(c.configPath)
		if err != nil {
			return nil, err
		}
		cfg = res.Config
	}

	if c.display != 0 {
		cfg.Display = c.display
	}
	if c.width != 0 {
		cfg.Width = c.width
	}
	if c.height != 0 {
		cfg.Height = c.height
	}
	if c.renderDir != "" {
		cfg.RenderDir = c.renderDir
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// host is a session wired to a display process client.
type host struct {
	cfg     *config.Config
	client  *ipc.Client
	session *session.Session
	logger  *slog.Logger
}

func newHost(flags *commonFlags) (*host, error) {
	cfg, err := flags.load()
	if err != nil {
		return nil, err
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	dir, err := cfg.ResolveRenderDir()
	if err != nil {
		return nil, fmt.Errorf("render directory: %w", err)
	}

	args := []string{"--render-dir", dir, "--log-level", cfg.LogLevel}
	if flags.configPath != "" {
		args = append(args, "--config", flags.configPath)
	}
	client := ipc.NewClient(ipc.ClientOptions{
		Binary:           cfg.ResolveDisplayBinary(),
		Args:             args,
		TerminateTimeout: cfg.TerminateTimeout,
		Logger:           logger,
	})

	sess, err := session.New(client, session.Options{
		RenderDir: dir,
		Display:   cfg.Display,
		Settings: session.RenderSettings{
			Width:  cfg.Width,
			Height: cfg.Height,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	return &host{cfg: cfg, client: client, session: sess, logger: logger}, nil
}

func (h *host) close() {
	if err := h.session.Close(); err != nil {
		h.logger.Warn("display process shutdown", "error", err)
	}
}

func isHelp(args []string) bool {
	return len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help")
}
