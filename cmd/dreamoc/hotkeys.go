package main

import (
	"context"

	"github.com/kiruse/dreamoc-livelink/internal/hotkeys"
	"github.com/kiruse/dreamoc-livelink/internal/session"
	"github.com/kiruse/dreamoc-livelink/internal/x11"
)

// startHotkeys binds the configured global hotkeys until ctx is done. It is
// a no-op when none are configured. Binding failures are logged, not fatal.
func (h *host) startHotkeys(ctx context.Context) {
	keys := h.cfg.Hotkeys
	if keys.NextDisplay == "" && keys.TestPattern == "" {
		return
	}

	conn, err := x11.NewConnection()
	if err != nil {
		h.logger.Warn("hotkeys disabled", "error", err)
		return
	}
	handler := hotkeys.NewHandler(conn, h.logger)

	nextDisplay := func() error {
		monitors, err := conn.GetMonitors()
		if err != nil {
			return err
		}
		next := hotkeys.NextDisplay(h.session.Status().Display, len(monitors))
		h.logger.Info("moving preview", "display", next)
		return h.session.SetDisplay(next)
	}
	testPattern := func() error {
		return h.session.Update(session.DefaultPattern())
	}

	if err := handler.RegisterFunc("next_display", keys.NextDisplay, nextDisplay); err != nil {
		h.logger.Warn("hotkey not bound", "error", err)
	}
	if err := handler.RegisterFunc("test_pattern", keys.TestPattern, testPattern); err != nil {
		h.logger.Warn("hotkey not bound", "error", err)
	}
	if handler.Bound() == 0 {
		conn.Close()
		return
	}

	go func() {
		defer conn.Close()
		handler.Run(ctx)
	}()
}
