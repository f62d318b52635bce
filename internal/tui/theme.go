package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette helpers.
//
// The checklist must stay readable on both light and dark terminal
// backgrounds, so everything goes through lipgloss.AdaptiveColor.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted    = ac("240", "243")
	colorChecked  = ac("28", "42")
	colorCursorFg = ac("235", "255")
	colorCursorBg = ac("#e9e9e9", "#262626")

	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	checkedStyle = lipgloss.NewStyle().Foreground(colorChecked)
	cursorStyle  = lipgloss.NewStyle().Foreground(colorCursorFg).Background(colorCursorBg).Bold(true)
)

// applyColorProfilePreference honors NO_COLOR and otherwise follows the
// terminal's capabilities. termenv.EnvColorProfile also respects
// CLICOLOR/CLICOLOR_FORCE, which can accidentally disable colors inside a
// TUI, so only NO_COLOR is consulted here.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.ColorProfile())
}
