package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kiruse/dreamoc-livelink/internal/session"
	"github.com/kiruse/dreamoc-livelink/internal/x11"
)

type fakeController struct {
	status    session.Status
	renderers []session.Renderer
	updateErr error
}

func (c *fakeController) SetDisplay(display int) error {
	c.status.Display = display
	return nil
}

func (c *fakeController) SetDimensions(width, height int) error {
	c.status.Width, c.status.Height = width, height
	return nil
}

func (c *fakeController) Update(r session.Renderer) error {
	c.renderers = append(c.renderers, r)
	if c.updateErr != nil {
		return c.updateErr
	}
	c.status.Updates++
	return nil
}

func (c *fakeController) Status() session.Status { return c.status }

func testMonitors() ([]x11.Monitor, error) {
	return []x11.Monitor{
		{Number: 1, Name: "eDP-1", Primary: true, Width: 1920, Height: 1080, WidthMM: 344, HeightMM: 194},
		{Number: 2, Name: "HDMI-1", Width: 1920, Height: 1080, WidthMM: 509, HeightMM: 286},
	}, nil
}

func newTestModel(ctrl *fakeController, opts Options) model {
	if opts.Monitors == nil {
		opts.Monitors = testMonitors
	}
	opts.PanelWidthMM, opts.PanelHeightMM = 510, 290
	m := newModel(ctrl, opts)
	m = step(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return step(m, m.Init()())
}

// step feeds msg to m. For key presses the resulting command is run once and
// its message fed back; other messages only schedule timers.
func step(m model, msg tea.Msg) model {
	next, cmd := m.Update(msg)
	m = next.(model)
	if _, ok := msg.(tea.KeyMsg); !ok || cmd == nil {
		return m
	}
	out := cmd()
	if out == nil {
		return m
	}
	next, _ = m.Update(out)
	return next.(model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBuildDisplayItems(t *testing.T) {
	monitors, _ := testMonitors()
	items := buildDisplayItems(monitors, 1, 510, 290)
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	first := items[0].(displayItem)
	second := items[1].(displayItem)
	if !first.selected || first.likely {
		t.Fatalf("first item = %+v", first)
	}
	if second.selected || !second.likely {
		t.Fatalf("second item = %+v", second)
	}
	if !strings.Contains(second.Title(), "dreamoc?") {
		t.Fatalf("title = %q", second.Title())
	}
	if !strings.Contains(first.Description(), "primary") {
		t.Fatalf("description = %q", first.Description())
	}
}

func TestUseSelectedDisplay(t *testing.T) {
	ctrl := &fakeController{status: session.Status{Display: 1, Width: 1280, Height: 720}}
	m := newTestModel(ctrl, Options{})
	if len(m.list.Items()) != 2 {
		t.Fatalf("list items = %d, want 2", len(m.list.Items()))
	}

	m = step(m, key("down"))
	m = step(m, key("enter"))
	if ctrl.status.Display != 2 {
		t.Fatalf("display = %d, want 2", ctrl.status.Display)
	}
	if m.statusText != "using display 2" {
		t.Fatalf("status = %q", m.statusText)
	}
	if !m.list.Items()[1].(displayItem).selected {
		t.Fatal("selected marker not moved")
	}
}

func TestPatternAndRenders(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(ctrl, Options{})

	m = step(m, key("p"))
	if len(ctrl.renderers) != 1 {
		t.Fatalf("updates = %d, want 1", len(ctrl.renderers))
	}
	if _, ok := ctrl.renderers[0].(*session.PatternRenderer); !ok {
		t.Fatalf("renderer = %T", ctrl.renderers[0])
	}

	m = step(m, key("s"))
	if len(ctrl.renderers) != 1 || !strings.Contains(m.statusText, "no source directory") {
		t.Fatalf("status = %q, updates = %d", m.statusText, len(ctrl.renderers))
	}

	ctrl.updateErr = errors.New("boom")
	m.opts.SourceDir = "/renders"
	m = step(m, key("s"))
	if !strings.HasPrefix(m.statusText, "error:") {
		t.Fatalf("status = %q", m.statusText)
	}
}

func TestResizeRedrawsLastRenderer(t *testing.T) {
	ctrl := &fakeController{status: session.Status{Width: 1280, Height: 720}}
	m := newTestModel(ctrl, Options{})
	m = step(m, key("p"))

	next, _ := m.resize(640, 480)().(statusMsg)
	if ctrl.status.Width != 640 || ctrl.status.Height != 480 {
		t.Fatalf("size = %dx%d", ctrl.status.Width, ctrl.status.Height)
	}
	if len(ctrl.renderers) != 2 {
		t.Fatalf("updates = %d, want 2", len(ctrl.renderers))
	}
	if next.text != "views now 640x480, redrawn" {
		t.Fatalf("status = %q", next.text)
	}
}

func TestSave(t *testing.T) {
	ctrl := &fakeController{status: session.Status{Display: 2, Width: 800, Height: 600}}

	m := newTestModel(ctrl, Options{})
	m = step(m, key("ctrl+s"))
	if m.statusText != "saving is not available" {
		t.Fatalf("status = %q", m.statusText)
	}

	var saved [3]int
	m = newTestModel(ctrl, Options{Save: func(d, w, h int) error {
		saved = [3]int{d, w, h}
		return nil
	}})
	m = step(m, key("ctrl+s"))
	if saved != [3]int{2, 800, 600} || m.statusText != "saved" {
		t.Fatalf("saved = %v, status = %q", saved, m.statusText)
	}
}

func TestMonitorError(t *testing.T) {
	m := newTestModel(&fakeController{}, Options{Monitors: func() ([]x11.Monitor, error) {
		return nil, errors.New("no X")
	}})
	if m.statusText != "error: no X" {
		t.Fatalf("status = %q", m.statusText)
	}
	if m.View() == "" {
		t.Fatal("empty view")
	}
}
