package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"duet-cli/internal/model"
	"duet-cli/internal/mutate"
	"duet-cli/internal/remote/remotetest"
	"duet-cli/internal/session"
)

func run(t *testing.T, fake *remotetest.FakeService, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(&App{Service: fake})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func decodeData(t *testing.T, out string, into any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		t.Fatalf("bad output %q: %v", out, err)
	}
	if err := json.Unmarshal(envelope.Data, into); err != nil {
		t.Fatalf("bad data in %q: %v", out, err)
	}
}

func TestTasksAddAndList(t *testing.T) {
	fake := remotetest.NewFakeService()
	fake.SignInAs("alice")

	if _, _, err := run(t, fake, "tasks", "add", "Buy", "flowers"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, _, err := run(t, fake, "tasks", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var got struct {
		Tasks    []model.Task `json:"tasks"`
		Progress string       `json:"progress"`
	}
	decodeData(t, out, &got)
	if len(got.Tasks) != 1 || got.Tasks[0].Description != "Buy flowers" {
		t.Fatalf("tasks=%+v", got.Tasks)
	}
	if got.Tasks[0].Status != model.TaskPending || got.Tasks[0].Completed {
		t.Fatalf("new task should be pending and unchecked: %+v", got.Tasks[0])
	}
	if got.Progress != "0/1 (0%)" {
		t.Fatalf("progress=%q", got.Progress)
	}
}

func TestTasksMoveInvalidStatus(t *testing.T) {
	fake := remotetest.NewFakeService()
	fake.SignInAs("alice")

	_, errOut, err := run(t, fake, "tasks", "mv", "some-id", "archivada")
	var bad mutate.InvalidStatusError
	if !errors.As(err, &bad) {
		t.Fatalf("err=%v, want InvalidStatusError", err)
	}
	if !strings.Contains(errOut, "invalid task status") {
		t.Fatalf("stderr=%q", errOut)
	}
}

func TestEventsAddRequiresDate(t *testing.T) {
	fake := remotetest.NewFakeService()
	fake.SignInAs("alice")

	_, _, err := run(t, fake, "events", "add", "--title", "Cena")
	var empty mutate.EmptyFieldError
	if !errors.As(err, &empty) || empty.Field != "date" {
		t.Fatalf("err=%v, want EmptyFieldError{date}", err)
	}
}

func TestEventsAddAndList(t *testing.T) {
	fake := remotetest.NewFakeService()
	fake.SignInAs("alice")

	if _, _, err := run(t, fake, "events", "add",
		"--title", "Cena", "--date", "2025-12-24T20:00", "--category", "cita"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, _, err := run(t, fake, "events", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var events []model.Event
	decodeData(t, out, &events)
	if len(events) != 1 || events[0].Title != "Cena" || events[0].Category != "cita" {
		t.Fatalf("events=%+v", events)
	}
}

func TestNotesAddRejectsOverlongMessage(t *testing.T) {
	fake := remotetest.NewFakeService()
	fake.SignInAs("alice")

	_, errOut, err := run(t, fake, "notes", "add", strings.Repeat("x", noteMaxLen+1))
	if err == nil {
		t.Fatal("want error for overlong note")
	}
	if !strings.Contains(errOut, "max 200") {
		t.Fatalf("stderr=%q", errOut)
	}
}

func TestCommandsRequireSession(t *testing.T) {
	fake := remotetest.NewFakeService()

	for _, args := range [][]string{
		{"whoami"},
		{"tasks", "list"},
		{"events", "list"},
		{"notes", "add", "hola"},
		{"settings", "show"},
		{"export", "--raw"},
	} {
		_, _, err := run(t, fake, args...)
		if !errors.Is(err, session.ErrAuthRequired) {
			t.Fatalf("%v: err=%v, want ErrAuthRequired", args, err)
		}
	}
}

func TestSettingsSetPatchesOnlyPassedFlags(t *testing.T) {
	fake := remotetest.NewFakeService()
	fake.SignInAs("alice")

	if _, _, err := run(t, fake, "settings", "set", "--name", "Ana", "--start-date", "2023-02-14"); err != nil {
		t.Fatalf("set: %v", err)
	}
	out, _, err := run(t, fake, "settings", "set", "--theme", "dark")
	if err != nil {
		t.Fatalf("set theme: %v", err)
	}
	var profile model.Profile
	decodeData(t, out, &profile)
	if profile.FullName != "Ana" || profile.StartDate != "2023-02-14" || profile.PrefTheme != "dark" {
		t.Fatalf("profile=%+v, earlier fields must survive the second patch", profile)
	}
}

func TestLogoutThenWhoami(t *testing.T) {
	fake := remotetest.NewFakeService()
	fake.SignInAs("alice")

	if _, _, err := run(t, fake, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, _, err := run(t, fake, "whoami"); !errors.Is(err, session.ErrAuthRequired) {
		t.Fatalf("err=%v, want ErrAuthRequired after logout", err)
	}
}

func TestExportRawPrintsMarkdown(t *testing.T) {
	fake := remotetest.NewFakeService()
	fake.SignInAs("alice")
	if _, _, err := run(t, fake, "notes", "add", "te", "quiero"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, _, err := run(t, fake, "export", "--raw")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "# Nuestro resumen") || !strings.Contains(out, "te quiero") {
		t.Fatalf("markdown output:\n%s", out)
	}
}
