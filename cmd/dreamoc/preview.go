package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/kiruse/dreamoc-livelink/internal/compositor"
	"github.com/kiruse/dreamoc-livelink/internal/session"
)

type sourceFlags struct {
	dir   string
	front string
	left  string
	right string
}

func (s *sourceFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&s.dir, "dir", "", "directory containing front.png, left.png and right.png")
	fs.StringVar(&s.front, "front", "", "front view image")
	fs.StringVar(&s.left, "left", "", "left view image")
	fs.StringVar(&s.right, "right", "", "right view image")
}

func (s *sourceFlags) renderer() (*session.FileRenderer, error) {
	if s.front != "" || s.left != "" || s.right != "" {
		if s.front == "" || s.left == "" || s.right == "" {
			return nil, errors.New("--front, --left and --right must be given together")
		}
		return session.NewFileRenderer(s.front, s.left, s.right), nil
	}
	if s.dir == "" {
		return nil, errors.New("either --dir or --front, --left and --right are required")
	}
	return session.DirRenderer(s.dir), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func parseFlags(fs *pflag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	return -1
}

func runShow(args []string) int {
	fs := pflag.NewFlagSet("show", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var common commonFlags
	var sources sourceFlags
	common.register(fs)
	sources.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dreamoc show (--dir DIR | --front F --left L --right R) [options]")
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	r, err := sources.renderer()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return present(&common, r)
}

func runPattern(args []string) int {
	fs := pflag.NewFlagSet("pattern", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var common commonFlags
	common.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dreamoc pattern [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Front is red, left green, right blue. Each view has a white marker")
		fmt.Fprintln(os.Stderr, "in its top-left corner.")
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	return present(&common, session.DefaultPattern())
}

// present shows one update and keeps the display up until interrupted or
// until the display process goes away.
func present(common *commonFlags, r session.Renderer) int {
	h, err := newHost(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer h.close()

	if err := h.session.Update(r); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	h.logger.Info("preview shown, press Ctrl-C to stop", "display", h.cfg.Display)

	ctx, cancel := signalContext()
	defer cancel()
	h.startHotkeys(ctx)
	if err := h.hold(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// hold blocks until ctx is done, the display process exits or a keepalive
// fails.
func (h *host) hold(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keepaliveErr := make(chan error, 1)
	go func() { keepaliveErr <- h.client.RunKeepalive(ctx, h.cfg.KeepaliveInterval) }()

	select {
	case <-ctx.Done():
		return nil
	case <-h.client.Done():
		return errors.New("display process exited")
	case err := <-keepaliveErr:
		if err != nil {
			return fmt.Errorf("display process went away: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-h.client.Done():
			return errors.New("display process exited")
		}
	}
}

func runWatch(args []string) int {
	fs := pflag.NewFlagSet("watch", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var common commonFlags
	var dir string
	var debounce time.Duration
	common.register(fs)
	fs.StringVar(&dir, "dir", "", "directory containing front.png, left.png and right.png (required)")
	fs.DurationVar(&debounce, "debounce", session.DefaultDebounce, "quiet period before an update")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dreamoc watch --dir DIR [options]")
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if dir == "" {
		fmt.Fprintln(os.Stderr, "watch requires --dir")
		return 2
	}

	h, err := newHost(&common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer h.close()

	if same, err := sameDir(dir, h.session.RenderDir()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	} else if same {
		fmt.Fprintln(os.Stderr, "watch directory must differ from the render directory")
		return 2
	}

	r := session.DirRenderer(dir)
	update := func() error { return h.session.Update(r) }
	if err := update(); err != nil {
		h.logger.Warn("initial update failed", "error", err)
	}

	ctx, cancel := signalContext()
	defer cancel()
	h.startHotkeys(ctx)

	go func() {
		if err := h.hold(ctx); err != nil {
			h.logger.Error("stopping watch", "error", err)
			cancel()
		}
	}()

	names := make([]string, 0, len(compositor.Roles))
	for _, role := range compositor.Roles {
		names = append(names, role.ImageName())
	}
	h.logger.Info("watching for new renders", "dir", dir)
	if err := session.Watch(ctx, dir, names, debounce, h.logger, update); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func sameDir(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return filepath.Clean(absA) == filepath.Clean(absB), nil
}
