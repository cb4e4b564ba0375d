package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/kiruse/dreamoc-livelink/internal/x11"
)

// displayItem implements list.Item for the monitor picker.
type displayItem struct {
	monitor  x11.Monitor
	selected bool
	likely   bool
}

func (i displayItem) Title() string {
	prefix := "  "
	if i.selected {
		prefix = "* "
	}
	title := fmt.Sprintf("%s%d: %s", prefix, i.monitor.Number, i.monitor.Name)
	if i.likely {
		title += " (dreamoc?)"
	}
	return title
}

func (i displayItem) Description() string {
	d := fmt.Sprintf("%dx%d px, %dx%d mm", i.monitor.Width, i.monitor.Height, i.monitor.WidthMM, i.monitor.HeightMM)
	if i.monitor.Primary {
		d += ", primary"
	}
	return d
}

func (i displayItem) FilterValue() string { return i.monitor.Name }

func buildDisplayItems(monitors []x11.Monitor, selected, widthMM, heightMM int) []list.Item {
	likely, _ := x11.ClosestToSize(monitors, widthMM, heightMM)
	items := make([]list.Item, 0, len(monitors))
	for _, m := range monitors {
		items = append(items, displayItem{
			monitor:  m,
			selected: m.Number == selected,
			likely:   likely != nil && likely.Number == m.Number,
		})
	}
	return items
}

func newDisplayList() list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Displays"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}
