package session

import (
	"fmt"
	"log/slog"
)

// Overrides records temporary assignments and undoes them on Restore, in
// reverse order, so the first saved value of each target wins.
//
//	var ovr Overrides
//	defer ovr.Restore()
//	Set(&ovr, &settings.Background, color.RGBA{A: 255})
type Overrides struct {
	undo []func()
}

// Set assigns value to *target and remembers the previous value.
func Set[T any](o *Overrides, target *T, value T) {
	prev := *target
	o.undo = append(o.undo, func() { *target = prev })
	*target = value
}

// Restore puts back every overridden value. It is safe to call more than
// once.
func (o *Overrides) Restore() {
	for i := len(o.undo) - 1; i >= 0; i-- {
		o.undo[i]()
	}
	o.undo = nil
}

// Len is the number of pending restores.
func (o *Overrides) Len() int {
	return len(o.undo)
}

// BestEffort runs fn and logs its failure instead of returning it. A panic in
// fn is recovered and logged the same way. The error is returned for callers
// that want to count failures.
func BestEffort(logger *slog.Logger, name string, fn func() error) (err error) {
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", name, r)
		}
		if err != nil {
			logger.Warn("best-effort step failed", "step", name, "error", err)
		}
	}()
	return fn()
}
