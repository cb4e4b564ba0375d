// Package displaytest provides an in-memory display.Backend for tests.
package displaytest

import (
	"errors"
	"sync"

	"github.com/kiruse/dreamoc-livelink/internal/display"
)

var _ display.Backend = (*Backend)(nil)

// ErrInjected is a convenience error for failure injection.
var ErrInjected = errors.New("injected failure")

// Backend records every call the engine makes. Exported fields must be set
// before the engine starts; use the setters afterwards.
type Backend struct {
	InitErr error
	OpenErr error

	mu         sync.Mutex
	monitors   int
	opened     int
	binds      []int
	draws      []display.Dimensions
	redrawErrs []error
	gate       chan struct{}
	closed     bool
	closeCalls int

	// Drawn receives a value after every Redraw call, if non-nil. It should
	// be buffered.
	Drawn chan display.Dimensions
}

// New returns a backend reporting the given number of monitors.
func New(monitors int) *Backend {
	return &Backend{monitors: monitors, opened: -1}
}

func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.InitErr != nil {
		return b.InitErr
	}
	return nil
}

func (b *Backend) Monitors() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.monitors, nil
}

func (b *Backend) Open(monitor int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.OpenErr != nil {
		return b.OpenErr
	}
	b.opened = monitor
	return nil
}

func (b *Backend) BindMonitor(monitor int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.binds = append(b.binds, monitor)
	return nil
}

func (b *Backend) Redraw(dims display.Dimensions) error {
	b.mu.Lock()
	gate := b.gate
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}

	b.mu.Lock()
	b.draws = append(b.draws, dims)
	var err error
	if len(b.redrawErrs) > 0 {
		err = b.redrawErrs[0]
		b.redrawErrs = b.redrawErrs[1:]
	}
	drawn := b.Drawn
	b.mu.Unlock()

	if drawn != nil {
		drawn <- dims
	}
	return err
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.closeCalls++
	return nil
}

// SetMonitors changes the number of attached monitors, as if one had been
// plugged in or removed.
func (b *Backend) SetMonitors(n int) {
	b.mu.Lock()
	b.monitors = n
	b.mu.Unlock()
}

// FailNextRedraws makes the next len(errs) redraws return errs in order.
func (b *Backend) FailNextRedraws(errs ...error) {
	b.mu.Lock()
	b.redrawErrs = append(b.redrawErrs, errs...)
	b.mu.Unlock()
}

// Hold makes every following Redraw block until Release is called.
func (b *Backend) Hold() {
	b.mu.Lock()
	b.gate = make(chan struct{})
	b.mu.Unlock()
}

// Release unblocks redraws held by Hold.
func (b *Backend) Release() {
	b.mu.Lock()
	gate := b.gate
	b.gate = nil
	b.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

// OpenedOn returns the monitor the window was opened on, or -1.
func (b *Backend) OpenedOn() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened
}

// Binds returns the monitors passed to BindMonitor, in order.
func (b *Backend) Binds() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int(nil), b.binds...)
}

// Draws returns the dimension hints of every Redraw call, in order.
func (b *Backend) Draws() []display.Dimensions {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]display.Dimensions(nil), b.draws...)
}

// Closed reports whether Close was called and how often.
func (b *Backend) Closed() (bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed, b.closeCalls
}
