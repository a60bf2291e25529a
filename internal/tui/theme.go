package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"duet-cli/internal/format"
	"duet-cli/internal/model"
)

// The TUI must stay readable on both light and dark terminals, so chrome
// colors are adaptive. Status colors come from the fixed format mapping and
// degrade to plain ANSI when the terminal has no truecolor support.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorHeaderBg   lipgloss.TerminalColor = ac("252", "235")
	colorHeaderFg   lipgloss.TerminalColor = ac("235", "252")
	colorErrorFg    lipgloss.TerminalColor = ac("160", "203")
)

func styleMuted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorMuted)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorErrorFg).Bold(true)
}

// statusStyle colors a column heading after its task status.
func statusStyle(s model.TaskStatus) lipgloss.Style {
	if termenv.ColorProfile() == termenv.Ascii {
		return lipgloss.NewStyle().Bold(true)
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(format.StatusColor(s)))
}
