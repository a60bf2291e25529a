package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"duet-cli/internal/format"
	"duet-cli/internal/model"
)

// boardSelection tracks the focused card. TaskID is preferred over indexes so
// focus survives reloads that reorder or move cards between columns.
type boardSelection struct {
	Col    int
	Row    int
	TaskID string
}

type boardColumn struct {
	status model.TaskStatus
	tasks  []model.Task
}

type board struct {
	cols []boardColumn
}

// buildBoard partitions a task projection into the three fixed columns. The
// projection is already in created_at order; partitioning keeps it. A task
// with an out-of-set status lands in the pendiente column, mirroring the
// empty-status fallback of the original surface.
func buildBoard(tasks []model.Task) board {
	b := board{cols: make([]boardColumn, len(model.TaskStatuses))}
	for i, st := range model.TaskStatuses {
		b.cols[i] = boardColumn{status: st}
	}
	for _, t := range tasks {
		placed := false
		for i := range b.cols {
			if b.cols[i].status == t.Status {
				b.cols[i].tasks = append(b.cols[i].tasks, t)
				placed = true
				break
			}
		}
		if !placed {
			b.cols[0].tasks = append(b.cols[0].tasks, t)
		}
	}
	return b
}

func (b board) counts() (done, total int) {
	for _, col := range b.cols {
		for _, t := range col.tasks {
			total++
			if t.Completed {
				done++
			}
		}
	}
	return done, total
}

func (b board) indexOfTaskID(id string) (int, int, bool) {
	if id == "" {
		return 0, 0, false
	}
	for ci := range b.cols {
		for ri := range b.cols[ci].tasks {
			if b.cols[ci].tasks[ri].ID == id {
				return ci, ri, true
			}
		}
	}
	return 0, 0, false
}

func (b board) clamp(sel boardSelection) boardSelection {
	if ci, ri, ok := b.indexOfTaskID(sel.TaskID); ok {
		sel.Col = ci
		sel.Row = ri
	} else {
		sel.TaskID = ""
	}

	if sel.Col < 0 {
		sel.Col = 0
	}
	if sel.Col >= len(b.cols) {
		sel.Col = len(b.cols) - 1
	}
	n := len(b.cols[sel.Col].tasks)
	if n == 0 {
		sel.Row = -1
		return sel
	}
	if sel.Row < 0 {
		sel.Row = 0
	}
	if sel.Row >= n {
		sel.Row = n - 1
	}
	sel.TaskID = b.cols[sel.Col].tasks[sel.Row].ID
	return sel
}

func (b board) selectedTask(sel boardSelection) (model.Task, bool) {
	sel = b.clamp(sel)
	if sel.Row < 0 {
		return model.Task{}, false
	}
	return b.cols[sel.Col].tasks[sel.Row], true
}

// renderBoard draws the three columns side by side. Rendering is a pure
// function of the board and selection: same input, same frame.
func renderBoard(b board, sel boardSelection, width int) string {
	if width < 30 {
		width = 30
	}
	sel = b.clamp(sel)

	n := len(b.cols)
	gap := 2
	colW := (width - gap*(n-1)) / n
	if colW < 12 {
		colW = 12
	}

	cardStyle := lipgloss.NewStyle().Width(colW).Padding(0, 1)
	cardSelected := cardStyle.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)

	rendered := make([]string, 0, n)
	for ci, col := range b.cols {
		head := fmt.Sprintf("%s (%d)", format.StatusLabel(col.status), len(col.tasks))
		head = xansi.Truncate(head, colW, "…")
		lines := []string{statusStyle(col.status).Width(colW).Render(head)}

		if len(col.tasks) == 0 {
			lines = append(lines, styleMuted().Render("(vacío)"))
		}
		for ri, t := range col.tasks {
			check := "[ ]"
			if t.Completed {
				check = "[x]"
			}
			text := format.Sanitize(t.Description)
			line := check + " " + text
			line = xansi.Truncate(line, colW-2, "…")

			st := cardStyle
			if t.Completed {
				st = st.Strikethrough(true).Foreground(colorMuted)
			}
			if ci == sel.Col && ri == sel.Row {
				st = cardSelected
				if t.Completed {
					st = st.Strikethrough(true)
				}
			}
			lines = append(lines, st.Render(line))
		}
		rendered = append(rendered, strings.Join(lines, "\n"))
	}

	out := rendered[0]
	sep := strings.Repeat(" ", gap)
	for i := 1; i < len(rendered); i++ {
		out = lipgloss.JoinHorizontal(lipgloss.Top, out, sep, rendered[i])
	}
	return out
}
