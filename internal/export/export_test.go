package export

import (
	"context"
	"strings"
	"testing"
	"time"

	"duet-cli/internal/model"
	"duet-cli/internal/remote"
	"duet-cli/internal/remote/remotetest"
)

var now = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func TestMarkdownEmptyData(t *testing.T) {
	md := Markdown(Data{Now: now})

	for _, want := range []string{
		"# Nuestro resumen",
		"_Nada en la agenda._",
		"Progreso: **0/1 (0%)**",
		"_Sin notas todavía._",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("missing %q in:\n%s", want, md)
		}
	}
}

func TestMarkdownFullDocument(t *testing.T) {
	start := "2023-02-14"
	d := Data{
		Profile:    model.Profile{FullName: "Ana & Leo", StartDate: start},
		HasProfile: true,
		Events: []model.Event{
			{Title: "Pagar alquiler", Category: "pago", Date: now.Add(48 * time.Hour)},
			{Title: "Cena romántica", Category: "cita", Date: now.Add(24 * time.Hour)},
			{Title: "Ya pasó", Date: now.Add(-time.Hour)},
		},
		Tasks: []model.Task{
			{Completed: true}, {Completed: false}, {Completed: true},
		},
		Notes: []model.Note{
			{Message: "te quiero", CreatedAt: now},
		},
		Now: now,
	}
	md := Markdown(d)

	if !strings.Contains(md, "**Ana & Leo**") {
		t.Fatalf("missing profile name:\n%s", md)
	}
	if !strings.Contains(md, "Juntos desde el 14 de febrero de 2023") {
		t.Fatalf("missing start date line:\n%s", md)
	}
	if !strings.Contains(md, "Progreso: **2/3 (67%)**") {
		t.Fatalf("missing task progress:\n%s", md)
	}
	if strings.Contains(md, "Ya pasó") {
		t.Fatalf("past event leaked into upcoming list:\n%s", md)
	}
	// Soonest first.
	cena := strings.Index(md, "Cena romántica")
	pago := strings.Index(md, "Pagar alquiler")
	if cena == -1 || pago == -1 || cena > pago {
		t.Fatalf("upcoming events out of order:\n%s", md)
	}
	if !strings.Contains(md, "💕") || !strings.Contains(md, "💳") {
		t.Fatalf("missing category icons:\n%s", md)
	}
	if !strings.Contains(md, "te quiero") {
		t.Fatalf("missing note:\n%s", md)
	}
}

func TestUpcomingEventsCapped(t *testing.T) {
	var events []model.Event
	for i := 0; i < 10; i++ {
		events = append(events, model.Event{
			Title: "e", Date: now.Add(time.Duration(i+1) * time.Hour),
		})
	}
	if got := len(upcomingEvents(events, now)); got != maxUpcomingEvents {
		t.Fatalf("len=%d, want %d", got, maxUpcomingEvents)
	}
}

func TestCollectReadsEverything(t *testing.T) {
	fake := remotetest.NewFakeService()
	p := fake.SignInAs("alice")
	ctx := context.Background()

	if err := fake.InsertTask(ctx, model.Task{UserID: p.ID, Description: "uno", Status: model.TaskPending}); err != nil {
		t.Fatalf("seed task: %v", err)
	}
	if err := fake.InsertNote(ctx, model.Note{UserID: p.ID, Message: "hola"}); err != nil {
		t.Fatalf("seed note: %v", err)
	}

	d, err := Collect(ctx, fake, p, now)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(d.Tasks) != 1 || len(d.Notes) != 1 {
		t.Fatalf("tasks=%d notes=%d, want 1/1", len(d.Tasks), len(d.Notes))
	}
}

func TestCollectAbortsOnReadError(t *testing.T) {
	fake := remotetest.NewFakeService()
	p := fake.SignInAs("alice")
	fake.ReadErr[remote.TableEvents] = context.DeadlineExceeded

	if _, err := Collect(context.Background(), fake, p, now); err == nil {
		t.Fatal("want error when a read fails")
	}
}

func TestRenderTerminalFallsBackGracefully(t *testing.T) {
	md := "# hola\n\ntexto\n"
	out := RenderTerminal(md, 60, true)
	if !strings.Contains(out, "hola") {
		t.Fatalf("rendered output lost content: %q", out)
	}
}
