package format

import (
	"testing"
	"time"

	"duet-cli/internal/model"
)

func TestCategoryIcon(t *testing.T) {
	for _, tc := range []struct {
		cat  string
		want string
	}{
		{"cita", "💕"},
		{"aniversario", "🎂"},
		{"viaje", "✈️"},
		{"pago", "💳"},
		{"CITA", "💕"},
		{"reunión", "📌"},
		{"", "📌"},
	} {
		if got := CategoryIcon(tc.cat); got != tc.want {
			t.Fatalf("CategoryIcon(%q)=%q, want %q", tc.cat, got, tc.want)
		}
	}
}

func TestStatusLabels(t *testing.T) {
	for _, tc := range []struct {
		status model.TaskStatus
		want   string
	}{
		{model.TaskPending, "Pendiente"},
		{model.TaskInProgress, "En progreso"},
		{model.TaskDone, "Hecha"},
	} {
		if got := StatusLabel(tc.status); got != tc.want {
			t.Fatalf("StatusLabel(%q)=%q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestProgress(t *testing.T) {
	for _, tc := range []struct {
		done, total int
		want        string
	}{
		// The empty board divides by a literal 1, not by zero.
		{0, 0, "0/1 (0%)"},
		{0, 1, "0/1 (0%)"},
		// Percentages round to nearest, never truncate.
		{2, 3, "2/3 (67%)"},
		{1, 6, "1/6 (17%)"},
		{5, 6, "5/6 (83%)"},
		{1, 2, "1/2 (50%)"},
		{3, 3, "3/3 (100%)"},
	} {
		if got := Progress(tc.done, tc.total); got != tc.want {
			t.Fatalf("Progress(%d,%d)=%q, want %q", tc.done, tc.total, got, tc.want)
		}
	}
}

func TestDateTimeSpanish(t *testing.T) {
	ts := time.Date(2025, time.July, 2, 19, 30, 0, 0, time.UTC)
	if got := DateTime(ts); got != "2 de julio de 2025, 19:30" {
		t.Fatalf("DateTime=%q", got)
	}
	if got := Date(ts); got != "2 de julio de 2025" {
		t.Fatalf("Date=%q", got)
	}
}

func TestDaysTogether(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, time.January, 31, 12, 0, 0, 0, time.UTC)
	if got := DaysTogether(start, now); got != 30 {
		t.Fatalf("DaysTogether=%d, want 30", got)
	}
	if got := DaysTogether(now, start); got != 0 {
		t.Fatalf("negative span should clamp to 0, got %d", got)
	}
}

func TestSanitize(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"rojo \x1b[31mtext\x1b[0m", "rojo text"},
		{"bell\x07 and null\x00", "bell and null"},
		{"keep\nnewlines\tand tabs", "keep\nnewlines\tand tabs"},
		{"", ""},
	} {
		if got := Sanitize(tc.in); got != tc.want {
			t.Fatalf("Sanitize(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}
