// Package remote defines the contract with the remote data service: an
// authenticated row store with per-table CRUD and a per-table change feed.
// Commands and views never talk to a concrete backend directly.
package remote

import (
	"context"

	"duet-cli/internal/model"
)

// Table names the row collections the client consumes.
type Table string

const (
	TableEvents   Table = "events"
	TableTasks    Table = "tasks"
	TableNotes    Table = "notes"
	TableProfiles Table = "profiles"
)

type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeUpdate ChangeKind = "UPDATE"
	ChangeDelete ChangeKind = "DELETE"
)

// Change is an untyped "something changed" signal. It deliberately carries no
// row payload: consumers re-run their scoped query instead of patching.
type Change struct {
	Table Table
	Kind  ChangeKind
}

// EventPatch is a partial update; nil fields are left untouched.
type EventPatch struct {
	Title       *string
	Date        *string // RFC 3339 or YYYY-MM-DD
	Category    *string
	Description *string
}

type TaskPatch struct {
	Description *string
	Status      *model.TaskStatus
	Completed   *bool
}

type ProfilePatch struct {
	FullName           *string
	AvatarURL          *string
	StartDate          *string
	PrefTheme          *string
	NotifEvents        *bool
	NotifTasks         *bool
	NotifAnniversaries *bool
	NotifDaily         *bool
	PartnerID          *string
}

// Service is the full remote capability: session, scoped reads, writes and
// the change feed. Row-level authorization is the server's job; every list
// operation still passes the principal so implementations can scope the
// query (and the local backend can emulate RLS).
//
// Updates and deletes that match zero rows succeed silently.
type Service interface {
	// Session.
	CurrentPrincipal(ctx context.Context) (model.Principal, error)
	SignIn(ctx context.Context, email, password string) (model.Principal, error)
	SignUp(ctx context.Context, email, password string) (model.Principal, error)
	SignOut(ctx context.Context) error

	// Events, ordered by date ascending.
	ListEvents(ctx context.Context, ownerID string) ([]model.Event, error)
	InsertEvent(ctx context.Context, ev model.Event) error
	UpdateEvent(ctx context.Context, id string, patch EventPatch) error
	DeleteEvent(ctx context.Context, id string) error

	// Tasks, ordered by created_at ascending.
	ListTasks(ctx context.Context, ownerID string) ([]model.Task, error)
	InsertTask(ctx context.Context, t model.Task) error
	UpdateTask(ctx context.Context, id string, patch TaskPatch) error
	DeleteTask(ctx context.Context, id string) error

	// Notes visible to the principal (owner or partner), newest first.
	ListNotes(ctx context.Context, principalID string) ([]model.Note, error)
	InsertNote(ctx context.Context, n model.Note) error
	DeleteNote(ctx context.Context, id string) error

	// Profiles.
	GetProfile(ctx context.Context, id string) (model.Profile, bool, error)
	SaveProfile(ctx context.Context, id string, patch ProfilePatch) error

	// Subscribe opens the change feed for one table. The channel closes when
	// ctx is cancelled. Events are coalesced-at-will signals, not deltas.
	Subscribe(ctx context.Context, table Table) (<-chan Change, error)
}
