package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/kiruse/dreamoc-livelink/internal/config"
)

// dimensionsForm edits the per-view render size.
type dimensionsForm struct {
	form *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fWidth  string
	fHeight string
}

func newDimensionsForm(width, height, termWidth int) *dimensionsForm {
	d := &dimensionsForm{
		fWidth:  strconv.Itoa(width),
		fHeight: strconv.Itoa(height),
	}

	w := termWidth - 4
	if w < 40 {
		w = 40
	}

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("width").
				Title("Width").
				Description(fmt.Sprintf("Pixels per view (%d-%d)", config.MinDimension, config.MaxWidth)).
				Validate(rangeValidator(config.MinDimension, config.MaxWidth)).
				Value(&d.fWidth),
			huh.NewInput().
				Key("height").
				Title("Height").
				Description(fmt.Sprintf("Pixels per view (%d-%d)", config.MinDimension, config.MaxHeight)).
				Validate(rangeValidator(config.MinDimension, config.MaxHeight)).
				Value(&d.fHeight),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)
	return d
}

func rangeValidator(lo, hi int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("not a number")
		}
		if v < lo || v > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

// update returns true once the form has been submitted.
func (d *dimensionsForm) update(msg tea.Msg) (bool, tea.Cmd) {
	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}
	return d.form.State == huh.StateCompleted, cmd
}

func (d *dimensionsForm) values() (int, int, error) {
	w, err := strconv.Atoi(d.fWidth)
	if err != nil {
		return 0, 0, err
	}
	h, err := strconv.Atoi(d.fHeight)
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

func (d *dimensionsForm) view(width, height int) string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("View Size") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	style := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 2)
	return style.Render(header + "\n\n" + d.form.View())
}
