// Package glview draws the compositor layout into a fullscreen OpenGL
// window using GLFW. It implements display.Backend and must only be used
// from the thread that runs display.Engine.Run.
package glview

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/kiruse/dreamoc-livelink/internal/compositor"
	"github.com/kiruse/dreamoc-livelink/internal/display"
)

// DefaultTitle is the window title used when Options.Title is empty.
const DefaultTitle = "Dreamoc LiveLink"

// Options configures a Backend.
type Options struct {
	RenderDir string
	Panel     compositor.PanelSize
	Title     string
	Logger    *slog.Logger
}

// Backend is the GLFW implementation of display.Backend.
type Backend struct {
	opts   Options
	logger *slog.Logger

	window  *glfw.Window
	program uint32
	shapes  []*shape
	glfwUp  bool
}

var _ display.Backend = (*Backend)(nil)

// New returns a Backend. No window system resources are touched until Init.
func New(opts Options) *Backend {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Panel == (compositor.PanelSize{}) {
		opts.Panel = compositor.DefaultPanel
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{opts: opts, logger: logger.With("component", "glview")}
}

func (b *Backend) Init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	b.glfwUp = true
	return nil
}

func (b *Backend) Monitors() (int, error) {
	return len(glfw.GetMonitors()), nil
}

func (b *Backend) monitor(index int) (*glfw.Monitor, *glfw.VidMode, error) {
	monitors := glfw.GetMonitors()
	if index < 0 || index >= len(monitors) {
		return nil, nil, fmt.Errorf("monitor %d out of range (have %d)", index, len(monitors))
	}
	m := monitors[index]
	vm := m.GetVideoMode()
	if vm == nil {
		return nil, nil, fmt.Errorf("monitor %d has no video mode", index)
	}
	return m, vm, nil
}

func (b *Backend) Open(index int) error {
	m, vm, err := b.monitor(index)
	if err != nil {
		return err
	}

	glfw.WindowHint(glfw.RedBits, vm.RedBits)
	glfw.WindowHint(glfw.GreenBits, vm.GreenBits)
	glfw.WindowHint(glfw.BlueBits, vm.BlueBits)
	glfw.WindowHint(glfw.RefreshRate, vm.RefreshRate)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(vm.Width, vm.Height, b.opts.Title, m, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	b.window = win
	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}
	b.logger.Info("opened display",
		"monitor", index,
		"name", m.GetName(),
		"width", vm.Width,
		"height", vm.Height,
		"refresh", vm.RefreshRate,
		"gl", gl.GoStr(gl.GetString(gl.VERSION)),
	)

	prog, err := newProgram()
	if err != nil {
		return err
	}
	b.program = prog

	for _, spec := range compositor.Layout(b.opts.Panel, b.opts.RenderDir) {
		b.shapes = append(b.shapes, newShape(spec))
	}

	gl.ClearColor(0, 0, 0, 0)
	return nil
}

func (b *Backend) BindMonitor(index int) error {
	if b.window == nil {
		return errors.New("window not open")
	}
	m, vm, err := b.monitor(index)
	if err != nil {
		return err
	}
	b.window.SetMonitor(m, 0, 0, vm.Width, vm.Height, vm.RefreshRate)
	b.logger.Info("switched display", "monitor", index, "name", m.GetName())
	return nil
}

// Redraw reloads all three textures and presents one frame. A failed texture
// load aborts the frame before anything is presented.
func (b *Backend) Redraw(dims display.Dimensions) error {
	if b.window == nil {
		return errors.New("window not open")
	}
	for _, s := range b.shapes {
		if err := s.loadTexture(); err != nil {
			return err
		}
		if want := (image.Point{X: dims.Width, Y: dims.Height}); s.size != want {
			b.logger.Warn("render size differs from announced dimensions",
				"image", s.spec.ImagePath,
				"got", s.size,
				"want", want,
			)
		}
	}

	gl.UseProgram(b.program)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	for _, s := range b.shapes {
		s.draw()
	}
	b.window.SwapBuffers()
	glfw.PollEvents()
	return nil
}

func (b *Backend) Close() error {
	if b.window != nil {
		for _, s := range b.shapes {
			s.delete()
		}
		b.shapes = nil
		if b.program != 0 {
			gl.DeleteProgram(b.program)
			b.program = 0
		}
		b.window.Destroy()
		b.window = nil
	}
	if b.glfwUp {
		glfw.Terminate()
		b.glfwUp = false
	}
	return nil
}
