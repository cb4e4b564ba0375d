package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

// DefaultTerminateTimeout is how long Terminate waits for the display process
// to exit on its own before killing it.
const DefaultTerminateTimeout = 5 * time.Second

var (
	// ErrNotOpen is returned by requests issued before Open.
	ErrNotOpen = errors.New("display process not open")
	// ErrChannelClosed wraps every failed request write. The channel cannot
	// be re-established; the display process must be respawned.
	ErrChannelClosed = errors.New("control channel closed")
	// ErrTerminateTimeout is returned by Terminate when the display process
	// had to be killed.
	ErrTerminateTimeout = errors.New("display process did not exit in time")
)

// ClientOptions configures how the display process is spawned.
type ClientOptions struct {
	// Binary is the display executable. Required.
	Binary string
	Args   []string
	// Env is appended to the current environment.
	Env []string
	// Stdout and Stderr receive the child's output. Nil means os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	// TerminateTimeout defaults to DefaultTerminateTimeout.
	TerminateTimeout time.Duration
	Logger           *slog.Logger
}

// Client spawns the display process and writes requests to its stdin. It is
// safe for concurrent use; requests are written one at a time.
type Client struct {
	opts   ClientOptions
	logger *slog.Logger

	mu          sync.Mutex
	cmd         *exec.Cmd
	stdin       io.WriteCloser
	exited      chan struct{}
	initialized bool
}

// NewClient creates a client. The display process is not started until Open.
func NewClient(opts ClientOptions) *Client {
	if opts.TerminateTimeout <= 0 {
		opts.TerminateTimeout = DefaultTerminateTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{opts: opts, logger: logger.With("component", "ipc-client")}
}

// Open starts the display process if it is not already running. A process
// that has exited since the last Open is replaced by a fresh one, which must
// be initialized again.
func (c *Client) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cmd != nil {
		select {
		case <-c.exited:
			c.logger.Info("respawning display process")
			_ = c.stdin.Close()
			c.cmd, c.stdin, c.exited = nil, nil, nil
			c.initialized = false
		default:
			return nil
		}
	}
	if c.opts.Binary == "" {
		return errors.New("no display binary configured")
	}

	cmd := exec.Command(c.opts.Binary, c.opts.Args...)
	if len(c.opts.Env) > 0 {
		cmd.Env = append(os.Environ(), c.opts.Env...)
	}
	cmd.Stdout = c.opts.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stderr
	}
	cmd.Stderr = c.opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", c.opts.Binary, err)
	}

	exited := make(chan struct{})
	go func() {
		err := cmd.Wait()
		if err != nil {
			c.logger.Warn("display process exited", "pid", cmd.Process.Pid, "error", err)
		} else {
			c.logger.Info("display process exited", "pid", cmd.Process.Pid)
		}
		close(exited)
	}()

	c.cmd = cmd
	c.stdin = stdin
	c.exited = exited
	c.initialized = false
	c.logger.Info("display process started", "pid", cmd.Process.Pid, "binary", c.opts.Binary)
	return nil
}

// Running reports whether a display process is attached and has not exited.
func (c *Client) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd == nil {
		return false
	}
	select {
	case <-c.exited:
		return false
	default:
		return true
	}
}

// Done is closed when the current display process exits. It is nil, and so
// blocks forever, when no process is attached.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exited
}

// Initialized reports whether Initialize succeeded since the last Open.
func (c *Client) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Initialize selects the monitor and view size in one go.
func (c *Client) Initialize(display, width, height int) error {
	if err := c.SetDisplay(display); err != nil {
		return err
	}
	if err := c.SetDimensions(width, height); err != nil {
		return err
	}
	c.mu.Lock()
	c.initialized = c.cmd != nil
	c.mu.Unlock()
	return nil
}

// SetDisplay asks the display process to move to the zero-based monitor
// index. Negative values are sent as-is and select the last monitor.
func (c *Client) SetDisplay(index int) error {
	return c.send(OpUseDisplay, uint32(index))
}

// SetDimensions announces the size of the images that will be rendered.
func (c *Client) SetDimensions(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	return c.send(OpSetDimensions, uint32(width), uint32(height))
}

// Notify tells the display process that fresh renders are on disk.
func (c *Client) Notify() error {
	return c.send(OpReloadRenders)
}

// Keepalive writes a no-op request. It only detects a closed pipe; the
// display process never answers.
func (c *Client) Keepalive() error {
	return c.send(OpKeepalive)
}

func (c *Client) send(op Opcode, args ...uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stdin == nil {
		return ErrNotOpen
	}
	if err := WriteRequest(c.stdin, Request{Opcode: op, Args: args}); err != nil {
		return fmt.Errorf("%w: sending %s: %w", ErrChannelClosed, op, err)
	}
	c.logger.Debug("sent request", "opcode", op, "args", args)
	return nil
}

// Terminate asks the display process to exit and waits up to the configured
// timeout before killing it. It always detaches the process, even when it
// returns an error. Terminate on a client that is not open does nothing.
func (c *Client) Terminate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cmd == nil {
		return nil
	}
	cmd, exited := c.cmd, c.exited
	defer func() {
		c.cmd = nil
		c.stdin = nil
		c.exited = nil
		c.initialized = false
	}()

	if err := WriteRequest(c.stdin, Request{Opcode: OpTerminate}); err != nil {
		c.logger.Debug("terminate request not delivered", "error", err)
	}
	_ = c.stdin.Close()

	timer := time.NewTimer(c.opts.TerminateTimeout)
	defer timer.Stop()

	select {
	case <-exited:
		return nil
	case <-timer.C:
	}

	c.logger.Warn("display process did not exit, killing it",
		"pid", cmd.Process.Pid,
		"timeout", c.opts.TerminateTimeout,
	)
	err := cmd.Process.Kill()
	<-exited
	switch {
	case errors.Is(err, os.ErrProcessDone):
		return nil
	case err != nil:
		return fmt.Errorf("%w: kill: %w", ErrTerminateTimeout, err)
	}
	return ErrTerminateTimeout
}

// RunKeepalive sends a keepalive every interval until ctx is cancelled or a
// write fails. A non-positive interval returns immediately.
func (c *Client) RunKeepalive(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.Keepalive(); err != nil {
				return err
			}
		}
	}
}
