package ipc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Delegate receives decoded requests. *display.Engine implements it.
type Delegate interface {
	RequestMonitor(index int)
	SetDimensions(width, height int)
	RequestRedraw()
	RequestTerminate()
}

// Host reads requests from the control stream and forwards them to a
// Delegate. It does no work of its own.
type Host struct {
	dec      *Decoder
	delegate Delegate
	logger   *slog.Logger
}

// NewHost returns a host reading from r, typically os.Stdin.
func NewHost(r io.Reader, delegate Delegate, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		dec:      NewDecoder(r),
		delegate: delegate,
		logger:   logger.With("component", "ipc-host"),
	}
}

// HandleRequest blocks for one request and dispatches it. The returned opcode
// is OpTerminate when the caller should stop calling HandleRequest.
func (h *Host) HandleRequest() (Opcode, error) {
	req, err := h.dec.Decode()
	if err != nil {
		return 0, err
	}
	h.logger.Debug("received request", "opcode", req.Opcode, "args", req.Args)

	switch req.Opcode {
	case OpTerminate:
		h.delegate.RequestTerminate()
	case OpKeepalive:
	case OpUseDisplay:
		// Sent as uint32; reinterpreting as int32 keeps "-1" meaning the last
		// monitor.
		h.delegate.RequestMonitor(int(int32(req.Args[0])))
	case OpSetDimensions:
		h.delegate.SetDimensions(int(req.Args[0]), int(req.Args[1]))
	case OpReloadRenders:
		h.delegate.RequestRedraw()
	}
	return req.Opcode, nil
}

// Serve handles requests until TERMINATE, returning nil, or until the stream
// fails. The stream cannot be resynchronized after a decode error, so Serve
// then asks the delegate to terminate and returns the error. A stream that
// closes cleanly between requests yields an error wrapping io.EOF.
func (h *Host) Serve() error {
	for {
		op, err := h.HandleRequest()
		if err != nil {
			h.delegate.RequestTerminate()
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("control stream closed without %s: %w", OpTerminate, err)
			}
			return fmt.Errorf("control stream: %w", err)
		}
		if op == OpTerminate {
			h.logger.Info("terminate requested")
			return nil
		}
	}
}
