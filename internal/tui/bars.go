package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kiruse/dreamoc-livelink/internal/session"
)

// renderStatusBar shows the display process state and current settings.
func renderStatusBar(st session.Status, width int) string {
	var parts []string
	if st.Running {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts = append(parts, dot+" display running")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		parts = append(parts, dot+" display not started")
	}
	parts = append(parts,
		fmt.Sprintf("display:%d", st.Display),
		fmt.Sprintf("size:%dx%d", st.Width, st.Height),
		fmt.Sprintf("updates:%d", st.Updates),
	)
	if st.LastError != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("last error: "+st.LastError))
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(strings.Join(parts, "  "))
}

// renderHelpBar renders the bottom keybinding bar, or the latest status
// message while one is showing.
func renderHelpBar(width int, statusText string) string {
	text := "enter: use display  p: pattern  s: show renders  e: size  r: rescan  ctrl-s: save  q: quit"
	color := lipgloss.Color("241")
	if statusText != "" {
		text = statusText
		color = lipgloss.Color("15")
	}
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(color).
		Padding(0, 1)
	return style.Render(text)
}
