package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"duet-cli/internal/format"
	"duet-cli/internal/model"
)

// renderEvents draws the event list in date order, one row per event with the
// category icon up front. Like the board this is a pure function of the
// projection and selection.
func renderEvents(events []model.Event, sel int, width int) string {
	if len(events) == 0 {
		return styleMuted().Render("Sin eventos. Pulsa «a» para crear el primero.")
	}
	if width < 30 {
		width = 30
	}

	rowStyle := lipgloss.NewStyle().Width(width)
	rowSelected := rowStyle.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)

	var out strings.Builder
	for i, ev := range events {
		line := format.CategoryIcon(ev.Category) + " " +
			format.Sanitize(ev.Title) + "  " +
			format.DateTime(ev.Date)
		line = xansi.Truncate(line, width, "…")

		st := rowStyle
		if i == sel {
			st = rowSelected
		}
		out.WriteString(st.Render(line))
		out.WriteByte('\n')

		if desc := strings.TrimSpace(ev.Description); desc != "" {
			out.WriteString(styleMuted().Render("   " + xansi.Truncate(format.Sanitize(desc), width-3, "…")))
			out.WriteByte('\n')
		}
	}
	return strings.TrimRight(out.String(), "\n")
}

// renderNotes draws the shared notes, newest first as the projection already
// orders them. Each note shows its color dot, message, and creation date.
func renderNotes(notes []model.Note, sel int, width int) string {
	if len(notes) == 0 {
		return styleMuted().Render("Sin notas todavía.")
	}
	if width < 30 {
		width = 30
	}

	rowStyle := lipgloss.NewStyle().Width(width)
	rowSelected := rowStyle.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)

	var out strings.Builder
	for i, n := range notes {
		dot := "●"
		if n.Color != "" {
			dot = lipgloss.NewStyle().Foreground(lipgloss.Color(n.Color)).Render("●")
		}
		line := dot + " " + xansi.Truncate(format.Sanitize(n.Message), width-16, "…")

		st := rowStyle
		if i == sel {
			st = rowSelected
		}
		out.WriteString(st.Render(line))
		out.WriteByte('\n')
		out.WriteString(styleMuted().Render("   " + format.Date(n.CreatedAt)))
		out.WriteByte('\n')
	}
	return strings.TrimRight(out.String(), "\n")
}
