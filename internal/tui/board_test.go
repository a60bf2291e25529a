package tui

import (
	"strings"
	"testing"

	"duet-cli/internal/format"
	"duet-cli/internal/model"
)

func TestEmptyBoardRendersThreeEmptyColumns(t *testing.T) {
	b := buildBoard(nil)
	out := renderBoard(b, boardSelection{}, 90)

	for _, head := range []string{"Pendiente (0)", "En progreso (0)", "Hecha (0)"} {
		if !strings.Contains(out, head) {
			t.Fatalf("missing column header %q in:\n%s", head, out)
		}
	}
	if strings.Count(out, "(vacío)") != 3 {
		t.Fatalf("want three empty markers, got:\n%s", out)
	}
	if got := format.Progress(b.counts()); got != "0/1 (0%)" {
		t.Fatalf("empty board progress=%q, want 0/1 (0%%)", got)
	}
}

func TestInsertedTaskAppearsPendingUnchecked(t *testing.T) {
	b := buildBoard([]model.Task{
		{ID: "t1", Description: "Buy flowers", Status: model.TaskPending},
	})

	if len(b.cols[0].tasks) != 1 || len(b.cols[1].tasks) != 0 || len(b.cols[2].tasks) != 0 {
		t.Fatalf("partition=%v, want card only in pendiente", b.cols)
	}
	out := renderBoard(b, boardSelection{}, 120)
	if !strings.Contains(out, "[ ] Buy flowers") {
		t.Fatalf("want unchecked card, got:\n%s", out)
	}
	if strings.Contains(out, "[x]") {
		t.Fatalf("no card should be checked:\n%s", out)
	}
}

func TestMovedTaskAppearsOnlyInTargetColumn(t *testing.T) {
	// The projection after the move reload: same task, new status.
	b := buildBoard([]model.Task{
		{ID: "t1", Description: "Buy flowers", Status: model.TaskDone},
	})
	if len(b.cols[0].tasks) != 0 || len(b.cols[2].tasks) != 1 {
		t.Fatalf("partition=%v, want card only in hecha", b.cols)
	}
}

func TestUnknownStatusFallsBackToPending(t *testing.T) {
	b := buildBoard([]model.Task{{ID: "t1", Description: "x", Status: "archivada"}})
	if len(b.cols[0].tasks) != 1 {
		t.Fatalf("unknown status should land in pendiente, got %v", b.cols)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Description: "uno", Status: model.TaskPending},
		{ID: "b", Description: "dos", Status: model.TaskInProgress, Completed: false},
		{ID: "c", Description: "tres", Status: model.TaskDone, Completed: true},
	}
	sel := boardSelection{TaskID: "b"}
	first := renderBoard(buildBoard(tasks), sel, 100)
	second := renderBoard(buildBoard(tasks), sel, 100)
	if first != second {
		t.Fatal("rendering the same projection twice produced different frames")
	}
}

func TestSelectionFollowsTaskAcrossColumns(t *testing.T) {
	before := buildBoard([]model.Task{
		{ID: "a", Description: "uno", Status: model.TaskPending},
		{ID: "b", Description: "dos", Status: model.TaskPending},
	})
	sel := before.clamp(boardSelection{TaskID: "b"})
	if sel.Col != 0 || sel.Row != 1 {
		t.Fatalf("sel=%+v", sel)
	}

	// After a move reload the same task id is found in its new column.
	after := buildBoard([]model.Task{
		{ID: "a", Description: "uno", Status: model.TaskPending},
		{ID: "b", Description: "dos", Status: model.TaskDone},
	})
	sel = after.clamp(sel)
	if sel.Col != 2 || sel.Row != 0 || sel.TaskID != "b" {
		t.Fatalf("sel after move=%+v, want col 2 row 0", sel)
	}
}

func TestClampOnDeletedSelection(t *testing.T) {
	b := buildBoard([]model.Task{{ID: "a", Description: "uno", Status: model.TaskPending}})
	sel := b.clamp(boardSelection{TaskID: "gone", Col: 5, Row: 9})
	if sel.Col != 2 || sel.Row != -1 {
		// Col clamps into range; the hecha column is empty so no row focus.
		t.Fatalf("sel=%+v", sel)
	}
}

func TestCompletedCounts(t *testing.T) {
	b := buildBoard([]model.Task{
		{ID: "a", Status: model.TaskPending, Completed: false},
		{ID: "b", Status: model.TaskDone, Completed: true},
		{ID: "c", Status: model.TaskDone, Completed: true},
	})
	done, total := b.counts()
	if done != 2 || total != 3 {
		t.Fatalf("done=%d total=%d", done, total)
	}
	if got := format.Progress(done, total); got != "2/3 (67%)" {
		t.Fatalf("progress=%q", got)
	}
}
