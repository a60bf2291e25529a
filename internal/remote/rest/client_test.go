package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"duet-cli/internal/model"
	"duet-cli/internal/remote"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(srv.URL, "anon-key", filepath.Join(t.TempDir(), "session.json"), nil)
	return c, srv
}

func TestListTasksQueryShape(t *testing.T) {
	var gotPath, gotUser, gotOrder, gotAPIKey string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser = r.URL.Query().Get("user_id")
		gotOrder = r.URL.Query().Get("order")
		gotAPIKey = r.Header.Get("apikey")
		json.NewEncoder(w).Encode([]model.Task{{ID: "t1", UserID: "alice", Description: "x", Status: model.TaskPending}})
	})

	tasks, err := c.ListTasks(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if gotPath != "/rest/v1/tasks" {
		t.Fatalf("path=%q", gotPath)
	}
	if gotUser != "eq.alice" || gotOrder != "created_at.asc" {
		t.Fatalf("query user_id=%q order=%q", gotUser, gotOrder)
	}
	if gotAPIKey != "anon-key" {
		t.Fatalf("apikey header=%q", gotAPIKey)
	}
	if len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Fatalf("tasks=%+v", tasks)
	}
}

func TestListNotesUsesOwnerOrPartnerPredicate(t *testing.T) {
	var gotOr, gotOrder string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotOr = r.URL.Query().Get("or")
		gotOrder = r.URL.Query().Get("order")
		json.NewEncoder(w).Encode([]model.Note{})
	})

	if _, err := c.ListNotes(context.Background(), "alice"); err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if gotOr != "(user_id.eq.alice,partner_id.eq.alice)" {
		t.Fatalf("or predicate=%q", gotOr)
	}
	if gotOrder != "created_at.desc" {
		t.Fatalf("order=%q", gotOrder)
	}
}

func TestReadFailureMapsToReadError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusUnauthorized)
	})

	_, err := c.ListEvents(context.Background(), "alice")
	var re *remote.ReadError
	if !errors.As(err, &re) || re.Table != remote.TableEvents {
		t.Fatalf("err=%v, want *remote.ReadError for events", err)
	}
}

func TestUpdateTaskPatchesOnlySetFields(t *testing.T) {
	var gotMethod, gotID string
	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotID = r.URL.Query().Get("id")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	})

	status := model.TaskDone
	if err := c.UpdateTask(context.Background(), "t9", remote.TaskPatch{Status: &status}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if gotMethod != http.MethodPatch || gotID != "eq.t9" {
		t.Fatalf("method=%q id=%q", gotMethod, gotID)
	}
	if len(gotBody) != 1 || gotBody["status"] != "hecha" {
		t.Fatalf("body=%v, want only status", gotBody)
	}
}

func TestUpdateWithEmptyPatchSkipsRequest(t *testing.T) {
	called := false
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	if err := c.UpdateTask(context.Background(), "t1", remote.TaskPatch{}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if called {
		t.Fatal("empty patch should not issue a request")
	}
}

func TestSignInPersistsSession(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("unexpected auth request %s %s", r.Method, r.URL)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "jwt-123",
			"user":         map[string]string{"id": "u-1", "email": "a@b.c"},
		})
	})

	p, err := c.SignIn(context.Background(), "a@b.c", "secret")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if p.ID != "u-1" {
		t.Fatalf("principal=%+v", p)
	}

	// A fresh client over the same session path resumes the session.
	c2 := New(c.baseURL, "anon-key", c.sessionPath, nil)
	got, err := c2.CurrentPrincipal(context.Background())
	if err != nil {
		t.Fatalf("CurrentPrincipal after reload: %v", err)
	}
	if got.ID != "u-1" {
		t.Fatalf("resumed principal=%+v", got)
	}

	if err := c2.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := c2.CurrentPrincipal(context.Background()); !errors.Is(err, remote.ErrNoSession) {
		t.Fatalf("err=%v, want ErrNoSession after sign-out", err)
	}
}

func TestSaveProfileUpserts(t *testing.T) {
	var gotPrefer string
	var gotRows []map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		json.NewDecoder(r.Body).Decode(&gotRows)
		w.WriteHeader(http.StatusCreated)
	})

	name := "Alice"
	if err := c.SaveProfile(context.Background(), "u-1", remote.ProfilePatch{FullName: &name}); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if gotPrefer != "resolution=merge-duplicates" {
		t.Fatalf("Prefer=%q", gotPrefer)
	}
	if len(gotRows) != 1 || gotRows[0]["id"] != "u-1" || gotRows[0]["full_name"] != "Alice" {
		t.Fatalf("rows=%v", gotRows)
	}
}
