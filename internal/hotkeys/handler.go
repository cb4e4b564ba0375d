// Package hotkeys binds global X11 key sequences to preview actions.
package hotkeys

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/kiruse/dreamoc-livelink/internal/x11"
)

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger
	count  int
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler on conn.
func NewHandler(conn *x11.Connection, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	keybind.Initialize(conn.XUtil)

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	return &Handler{
		xu:     conn.XUtil,
		root:   conn.Root,
		logger: logger.With("component", "hotkeys"),
	}
}

// RegisterFunc binds keySequence to callback. An empty sequence is ignored.
// Callbacks run on the event loop goroutine, one at a time.
func (h *Handler) RegisterFunc(name, keySequence string, callback func() error) error {
	if keySequence == "" {
		return nil
	}
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		h.logger.Debug("hotkey triggered", "action", name, "keys", keySequence)
		if err := callback(); err != nil {
			h.logger.Error("hotkey action failed", "action", name, "error", err)
		}
	}).Connect(h.xu, h.root, keySequence, true)
	if err != nil {
		return fmt.Errorf("failed to bind %s to %q: %w", name, keySequence, err)
	}
	h.count++
	h.logger.Info("hotkey bound", "action", name, "keys", keySequence)
	return nil
}

// Bound reports how many sequences are registered.
func (h *Handler) Bound() int {
	return h.count
}

// Run processes key events until ctx is cancelled.
func (h *Handler) Run(ctx context.Context) {
	done := make(chan struct{})
	defer close(done)
	go stopOnCancel(ctx, done, h.stop)
	xevent.Main(h.xu)
}

// stopOnCancel calls stop once ctx is cancelled, unless done closes first.
func stopOnCancel(ctx context.Context, done <-chan struct{}, stop func()) {
	select {
	case <-ctx.Done():
		stop()
	case <-done:
	}
}

// stop flags the event loop to quit and wakes it. xevent.Main only checks
// the flag between events, so without a wake-up it would block until the
// next key press.
func (h *Handler) stop() {
	xevent.Quit(h.xu)
	if err := h.wake(); err != nil {
		h.logger.Warn("failed to wake hotkey loop", "error", err)
	}
}

// wake sends a client message to a private unmapped window. The server
// delivers it to this connection, which unblocks the pending read.
func (h *Handler) wake() error {
	win, err := xwindow.Create(h.xu, h.root)
	if err != nil {
		return err
	}
	defer win.Destroy()

	ev, err := xevent.NewClientMessage(32, win.Id, xproto.AtomNone)
	if err != nil {
		return err
	}
	return xproto.SendEventChecked(h.xu.Conn(), false, win.Id,
		xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}

// NextDisplay returns the 1-based display after current, wrapping to 1.
// Out-of-range values, which the display process treats as the last
// monitor, advance to 1 as well.
func NextDisplay(current, count int) int {
	if count <= 0 || current < 1 || current >= count {
		return 1
	}
	return current + 1
}
