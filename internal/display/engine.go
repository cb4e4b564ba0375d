package display

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
)

// State is the lifecycle phase of an Engine.
type State int

const (
	StateUninitialized State = iota
	StateRunning
	StateTerminating
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// LastMonitor selects the highest-indexed monitor available.
const LastMonitor = -1

var (
	ErrAlreadyStarted = errors.New("display engine already started")
	ErrNoMonitors     = errors.New("no monitors attached")
)

// Options configures an Engine.
type Options struct {
	// InitialMonitor is the monitor the window opens on. LastMonitor (or any
	// other out-of-range value) selects the highest-indexed monitor.
	InitialMonitor int
	// Dimensions is the starting view size hint.
	Dimensions Dimensions
	Logger     *slog.Logger
}

// Stats is a snapshot of what the engine thread has done so far.
type Stats struct {
	State           State
	BoundMonitor    int
	Redraws         int
	Failures        int
	MonitorSwitches int
	LastError       error
}

// Engine serializes all window and GPU work onto the goroutine running Run.
// The Request* methods and SetDimensions may be called from any goroutine at
// any time, including before Run starts.
type Engine struct {
	backend Backend
	logger  *slog.Logger
	initial int

	mu             sync.Mutex
	cond           *sync.Cond
	state          State
	started        bool
	dirty          bool
	wantsTerminate bool
	pendingMonitor *int
	dims           Dimensions
	stats          Stats

	done chan struct{}
}

// New creates an engine driving backend. Nothing touches the backend until
// Run is called.
func New(backend Backend, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		backend: backend,
		logger:  logger,
		initial: opts.InitialMonitor,
		dims:    opts.Dimensions,
		done:    make(chan struct{}),
	}
	e.cond = sync.NewCond(&e.mu)
	e.stats.BoundMonitor = -1
	return e
}

// Run brings up the backend, services requests until RequestTerminate is
// called and then tears the backend down. It locks the calling goroutine to
// its OS thread for its whole duration since GPU contexts are bound to a
// thread. A startup error is returned without entering the request loop.
func (e *Engine) Run() error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	e.started = true
	e.mu.Unlock()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(e.done)

	if err := e.start(); err != nil {
		e.setState(StateStopped)
		return err
	}
	e.setState(StateRunning)
	e.logger.Info("display engine running", "monitor", e.Stats().BoundMonitor)

	e.loop()

	e.setState(StateTerminating)
	e.logger.Info("display engine terminating")
	err := e.backend.Close()
	e.setState(StateStopped)
	if err != nil {
		return fmt.Errorf("closing display backend: %w", err)
	}
	return nil
}

func (e *Engine) start() error {
	if err := e.backend.Init(); err != nil {
		return fmt.Errorf("initializing display backend: %w", err)
	}

	monitor, err := e.resolve(e.initial)
	if err == nil {
		err = e.backend.Open(monitor)
	}
	if err != nil {
		if closeErr := e.backend.Close(); closeErr != nil {
			e.logger.Warn("closing display backend after failed start", "error", closeErr)
		}
		return fmt.Errorf("opening display window: %w", err)
	}

	e.mu.Lock()
	e.stats.BoundMonitor = monitor
	e.mu.Unlock()
	return nil
}

func (e *Engine) loop() {
	for {
		e.mu.Lock()
		for !e.dirty && !e.wantsTerminate {
			e.cond.Wait()
		}
		if e.wantsTerminate {
			e.mu.Unlock()
			return
		}
		pending := e.pendingMonitor
		e.pendingMonitor = nil
		dims := e.dims
		e.dirty = false
		e.mu.Unlock()

		e.update(pending, dims)
	}
}

// update runs one wakeup's worth of work: an optional monitor switch followed
// by exactly one redraw.
func (e *Engine) update(pending *int, dims Dimensions) {
	if pending != nil {
		if err := e.switchMonitor(*pending); err != nil {
			e.logger.Error("monitor switch failed", "requested", *pending, "error", err)
			e.recordFailure(err)
		}
	}

	err := e.backend.Redraw(dims)

	e.mu.Lock()
	e.stats.Redraws++
	e.mu.Unlock()

	if err != nil {
		e.logger.Error("redraw failed", "width", dims.Width, "height", dims.Height, "error", err)
		e.recordFailure(err)
		return
	}
	e.logger.Debug("redraw complete", "width", dims.Width, "height", dims.Height)
}

func (e *Engine) switchMonitor(requested int) error {
	monitor, err := e.resolve(requested)
	if err != nil {
		return err
	}
	if monitor != requested {
		e.logger.Warn("requested monitor not available, using last monitor",
			"requested", requested, "monitor", monitor)
	}
	if err := e.backend.BindMonitor(monitor); err != nil {
		return fmt.Errorf("binding monitor %d: %w", monitor, err)
	}

	e.mu.Lock()
	e.stats.BoundMonitor = monitor
	e.stats.MonitorSwitches++
	e.mu.Unlock()

	e.logger.Info("switched monitor", "monitor", monitor)
	return nil
}

// resolve enumerates monitors now, not when the request was made, so a
// monitor unplugged in between falls back to the last one still attached.
func (e *Engine) resolve(requested int) (int, error) {
	count, err := e.backend.Monitors()
	if err != nil {
		return 0, fmt.Errorf("enumerating monitors: %w", err)
	}
	if count <= 0 {
		return 0, ErrNoMonitors
	}
	return ResolveMonitor(requested, count), nil
}

func (e *Engine) recordFailure(err error) {
	e.mu.Lock()
	e.stats.Failures++
	e.stats.LastError = err
	e.mu.Unlock()
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// RequestMonitor asks the engine to move to monitor index and redraw there.
// Only the latest index requested before the engine wakes is used.
func (e *Engine) RequestMonitor(index int) {
	e.mu.Lock()
	e.pendingMonitor = &index
	e.dirty = true
	e.mu.Unlock()
	e.cond.Signal()
}

// SetDimensions stores the view size hint for the next redraw. It never
// causes a redraw on its own.
func (e *Engine) SetDimensions(width, height int) {
	e.mu.Lock()
	e.dims = Dimensions{Width: width, Height: height}
	e.mu.Unlock()
	e.cond.Signal()
}

// RequestRedraw marks a redraw as owed. Repeated calls before the engine wakes
// collapse into one redraw.
func (e *Engine) RequestRedraw() {
	e.mu.Lock()
	e.dirty = true
	e.mu.Unlock()
	e.cond.Signal()
}

// RequestTerminate makes Run leave its loop and shut the backend down, even
// when no redraw is owed.
func (e *Engine) RequestTerminate() {
	e.mu.Lock()
	e.wantsTerminate = true
	e.mu.Unlock()
	e.cond.Signal()
}

// Pending reports whether a redraw or monitor switch is owed that the engine
// thread has not picked up yet.
func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty || e.pendingMonitor != nil
}

// Dimensions returns the current view size hint.
func (e *Engine) Dimensions() Dimensions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dims
}

// Stats returns a snapshot of the engine's counters and state.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.stats
	s.State = e.state
	return s
}

// Done is closed when Run returns.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}
