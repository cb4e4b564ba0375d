package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kiruse/dreamoc-livelink/internal/session"
	"github.com/kiruse/dreamoc-livelink/internal/x11"
)

// statusMsg is sent after an action completes.
type statusMsg struct {
	text string
}

// clearStatusMsg clears the status message after a delay.
type clearStatusMsg struct{}

// monitorsMsg carries a fresh monitor listing.
type monitorsMsg struct {
	monitors []x11.Monitor
	err      error
}

const statusTTL = 3 * time.Second

// model is the root bubbletea model for the panel.
type model struct {
	ctrl Controller
	opts Options

	list     list.Model
	monitors []x11.Monitor
	dims     *dimensionsForm

	// lastRenderer is re-run after a size change so the display never shows
	// views at a stale size.
	lastRenderer session.Renderer
	statusText   string

	width  int
	height int
}

func newModel(ctrl Controller, opts Options) model {
	return model{
		ctrl: ctrl,
		opts: opts,
		list: newDisplayList(),
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.loadMonitors()
}

func (m model) loadMonitors() tea.Cmd {
	fn := m.opts.Monitors
	return func() tea.Msg {
		monitors, err := fn()
		return monitorsMsg{monitors: monitors, err: err}
	}
}

func clearStatusAfter() tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width, m.contentHeight())
		return m, nil

	case statusMsg:
		m.statusText = msg.text
		m.rebuildItems()
		return m, clearStatusAfter()

	case clearStatusMsg:
		m.statusText = ""
		return m, nil

	case monitorsMsg:
		if msg.err != nil {
			m.statusText = fmt.Sprintf("error: %v", msg.err)
			return m, clearStatusAfter()
		}
		m.monitors = msg.monitors
		m.rebuildItems()
		return m, nil
	}

	// The dimensions form captures input while open; only ctrl+c escapes.
	if m.dims != nil {
		if km, ok := msg.(tea.KeyMsg); ok {
			switch km.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc":
				m.dims = nil
				return m, nil
			}
		}
		done, cmd := m.dims.update(msg)
		if !done {
			return m, cmd
		}
		w, h, err := m.dims.values()
		m.dims = nil
		if err != nil {
			return m, status(fmt.Sprintf("error: %v", err))
		}
		return m, m.resize(w, h)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter":
			return m, m.useSelected()
		case "p":
			m.lastRenderer = session.DefaultPattern()
			return m, m.update(m.lastRenderer, "test pattern shown")
		case "s":
			if m.opts.SourceDir == "" {
				return m, status("no source directory (start with --dir)")
			}
			m.lastRenderer = session.DirRenderer(m.opts.SourceDir)
			return m, m.update(m.lastRenderer, "renders shown from "+m.opts.SourceDir)
		case "e":
			st := m.ctrl.Status()
			m.dims = newDimensionsForm(st.Width, st.Height, m.width)
			return m, m.dims.form.Init()
		case "r":
			return m, m.loadMonitors()
		case "ctrl+s":
			return m, m.save()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func (m model) useSelected() tea.Cmd {
	item, ok := m.list.SelectedItem().(displayItem)
	if !ok {
		return nil
	}
	ctrl := m.ctrl
	number := item.monitor.Number
	return func() tea.Msg {
		if err := ctrl.SetDisplay(number); err != nil {
			return statusMsg{text: fmt.Sprintf("error: %v", err)}
		}
		return statusMsg{text: fmt.Sprintf("using display %d", number)}
	}
}

func (m model) update(r session.Renderer, done string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		if err := ctrl.Update(r); err != nil {
			return statusMsg{text: fmt.Sprintf("error: %v", err)}
		}
		return statusMsg{text: done}
	}
}

func (m model) resize(width, height int) tea.Cmd {
	ctrl, r := m.ctrl, m.lastRenderer
	return func() tea.Msg {
		if err := ctrl.SetDimensions(width, height); err != nil {
			return statusMsg{text: fmt.Sprintf("error: %v", err)}
		}
		text := fmt.Sprintf("views now %dx%d", width, height)
		if r == nil {
			return statusMsg{text: text}
		}
		if err := ctrl.Update(r); err != nil {
			return statusMsg{text: fmt.Sprintf("error: %v", err)}
		}
		return statusMsg{text: text + ", redrawn"}
	}
}

func (m model) save() tea.Cmd {
	if m.opts.Save == nil {
		return status("saving is not available")
	}
	st := m.ctrl.Status()
	save := m.opts.Save
	return func() tea.Msg {
		if err := save(st.Display, st.Width, st.Height); err != nil {
			return statusMsg{text: fmt.Sprintf("save failed: %v", err)}
		}
		return statusMsg{text: "saved"}
	}
}

func (m *model) rebuildItems() {
	items := buildDisplayItems(m.monitors, m.ctrl.Status().Display, m.opts.PanelWidthMM, m.opts.PanelHeightMM)
	m.list.SetItems(items)
}

// contentHeight returns the height available between the status and help
// bars.
func (m model) contentHeight() int {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.ctrl.Status(), m.width)
	helpBar := renderHelpBar(m.width, m.statusText)

	var content string
	if m.dims != nil {
		content = m.dims.view(m.width, m.contentHeight())
	} else {
		content = lipgloss.NewStyle().
			Width(m.width).
			Height(m.contentHeight()).
			Render(m.list.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, statusBar, content, helpBar)
}
