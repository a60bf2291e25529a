// Package format maps rows to display fields. Everything here is a pure
// function: no I/O, no clock, no service calls.
package format

import (
	"fmt"
	"strings"

	"duet-cli/internal/model"
)

// categoryIcons is the fixed glyph set for event categories.
var categoryIcons = map[string]string{
	"cita":        "💕",
	"aniversario": "🎂",
	"viaje":       "✈️",
	"pago":        "💳",
}

// DefaultCategoryIcon is used for categories outside the known set.
const DefaultCategoryIcon = "📌"

func CategoryIcon(category string) string {
	if icon, ok := categoryIcons[strings.ToLower(strings.TrimSpace(category))]; ok {
		return icon
	}
	return DefaultCategoryIcon
}

// StatusLabel returns the human column heading for a task status.
func StatusLabel(s model.TaskStatus) string {
	switch s {
	case model.TaskPending:
		return "Pendiente"
	case model.TaskInProgress:
		return "En progreso"
	case model.TaskDone:
		return "Hecha"
	default:
		return string(s)
	}
}

// StatusColor returns the fixed lipgloss-compatible color for a status.
func StatusColor(s model.TaskStatus) string {
	switch s {
	case model.TaskPending:
		return "#f59e0b" // amber
	case model.TaskInProgress:
		return "#38bdf8" // sky
	case model.TaskDone:
		return "#34d399" // emerald
	default:
		return "#94a3b8" // slate
	}
}

// Progress renders the board progress line. The empty board intentionally
// reads "0/1 (0%)": total falls back to 1 so the percentage never divides by
// zero. Quirky, but it is the documented behavior and scripts match on it.
// The percentage rounds to nearest, so 2/3 is 67%, not 66%.
func Progress(done, total int) string {
	if total == 0 {
		total = 1
	}
	pct := (done*100 + total/2) / total
	return fmt.Sprintf("%d/%d (%d%%)", done, total, pct)
}
