// Package session is the host side of the live preview: it owns the display
// process client, writes the three views into the render directory and tells
// the display to reload them.
package session

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kiruse/dreamoc-livelink/internal/compositor"
	"github.com/kiruse/dreamoc-livelink/internal/config"
	"github.com/kiruse/dreamoc-livelink/internal/profiler"
)

// Display is the control surface of the display process. *ipc.Client
// implements it.
type Display interface {
	Open() error
	Running() bool
	Initialized() bool
	Initialize(display, width, height int) error
	SetDisplay(index int) error
	SetDimensions(width, height int) error
	Notify() error
	Terminate() error
}

// Options configures a Session.
type Options struct {
	RenderDir string
	// Display is the 1-based monitor number.
	Display  int
	Settings RenderSettings
	Profiler *profiler.Profiler
	Logger   *slog.Logger
}

// Status is a snapshot for diagnostics.
type Status struct {
	Running     bool   `json:"running"`
	Initialized bool   `json:"initialized"`
	Display     int    `json:"display"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	RenderDir   string `json:"render_dir"`
	Updates     int    `json:"updates"`
	LastError   string `json:"last_error,omitempty"`
}

// Session carries everything a host update needs. Methods are safe for
// concurrent use; updates are serialized.
type Session struct {
	display   Display
	renderDir string
	prof      *profiler.Profiler
	logger    *slog.Logger

	mu        sync.Mutex
	monitor   int
	settings  RenderSettings
	updates   int
	lastError error
}

// New creates a session driving display.
func New(display Display, opts Options) (*Session, error) {
	if opts.RenderDir == "" {
		return nil, errors.New("render directory is required")
	}
	if opts.Display == 0 {
		opts.Display = config.DefaultDisplay
	}
	if opts.Display < 1 {
		return nil, fmt.Errorf("display must be >= 1, got %d", opts.Display)
	}
	if opts.Settings.Width == 0 {
		opts.Settings.Width = config.DefaultWidth
	}
	if opts.Settings.Height == 0 {
		opts.Settings.Height = config.DefaultHeight
	}
	if err := validateDimensions(opts.Settings.Width, opts.Settings.Height); err != nil {
		return nil, err
	}
	if opts.Profiler == nil {
		opts.Profiler = profiler.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		display:   display,
		renderDir: opts.RenderDir,
		prof:      opts.Profiler,
		logger:    logger.With("component", "session"),
		monitor:   opts.Display,
		settings:  opts.Settings,
	}, nil
}

func validateDimensions(width, height int) error {
	if width < config.MinDimension || width > config.MaxWidth {
		return fmt.Errorf("width must be between %d and %d, got %d", config.MinDimension, config.MaxWidth, width)
	}
	if height < config.MinDimension || height > config.MaxHeight {
		return fmt.Errorf("height must be between %d and %d, got %d", config.MinDimension, config.MaxHeight, height)
	}
	return nil
}

// Start spawns the display process and sends the initial monitor and size
// if that has not happened since it was spawned.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureStarted(nil)
}

func (s *Session) ensureStarted(parent *profiler.Segment) error {
	if err := s.display.Open(); err != nil {
		return err
	}
	if s.display.Initialized() {
		return nil
	}
	init := func() error {
		return s.display.Initialize(s.monitor-1, s.settings.Width, s.settings.Height)
	}
	if parent != nil {
		return parent.Time("initialize display", init)
	}
	return init()
}

// SetDisplay selects the 1-based monitor and forwards it to a running
// display process.
func (s *Session) SetDisplay(display int) error {
	if display < 1 {
		return fmt.Errorf("display must be >= 1, got %d", display)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seg := s.prof.Segment("update display")
	defer seg.End()

	s.monitor = display
	if !s.display.Running() {
		return nil
	}
	return s.display.SetDisplay(display - 1)
}

// SetDimensions changes the size of future renders and forwards it to a
// running display process.
func (s *Session) SetDimensions(width, height int) error {
	if err := validateDimensions(width, height); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seg := s.prof.Segment("update dimensions")
	defer seg.End()

	s.settings.Width = width
	s.settings.Height = height
	if !s.display.Running() {
		return nil
	}
	return s.display.SetDimensions(width, height)
}

// Update renders all three views with r, writes them into the render
// directory and asks the display to reload. The timing tree of the pass is
// logged at debug level.
func (s *Session) Update(r Renderer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.update(r)
	s.updates++
	s.lastError = err

	var sb strings.Builder
	if dumpErr := s.prof.Dump(&sb); dumpErr == nil && sb.Len() > 0 {
		s.logger.Debug("update profile\n" + sb.String())
	}
	s.prof.Clear()
	return err
}

func (s *Session) update(r Renderer) error {
	seg := s.prof.Segment("update")
	defer seg.End()

	if err := s.ensureStarted(seg); err != nil {
		return err
	}

	// Overridden settings apply to this pass only.
	var ovr Overrides
	defer ovr.Restore()
	Set(&ovr, &s.settings.Background, color.RGBA{A: 255})

	if p, ok := r.(Preparer); ok {
		_ = seg.Time("prepare", func() error {
			return BestEffort(s.logger, "prepare renderer", p.Prepare)
		})
	}

	for _, role := range compositor.Roles {
		err := seg.Time("render "+role.String(), func() error {
			img, err := r.Render(role, s.settings)
			if err != nil {
				return err
			}
			return writeImage(filepath.Join(s.renderDir, role.ImageName()), img)
		})
		if err != nil {
			return fmt.Errorf("rendering %s view: %w", role, err)
		}
	}

	return seg.Time("notify display", s.display.Notify)
}

// Settings returns the current render settings.
func (s *Session) Settings() RenderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// RenderDir is where the views are written.
func (s *Session) RenderDir() string {
	return s.renderDir
}

// Status reports the session and display process state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Running:     s.display.Running(),
		Initialized: s.display.Initialized(),
		Display:     s.monitor,
		Width:       s.settings.Width,
		Height:      s.settings.Height,
		RenderDir:   s.renderDir,
		Updates:     s.updates,
	}
	if s.lastError != nil {
		st.LastError = s.lastError.Error()
	}
	return st
}

// Close terminates the display process.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display.Terminate()
}
