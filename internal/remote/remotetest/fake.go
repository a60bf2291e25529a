// Package remotetest provides an in-memory remote.Service for tests.
package remotetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"duet-cli/internal/model"
	"duet-cli/internal/remote"
)

// FakeService implements remote.Service against in-memory tables, including
// the table-wide change feed. The scoping/ordering rules match the real
// backends: events by date ascending, tasks by created_at ascending, notes
// (owner or partner) by created_at descending.
type FakeService struct {
	mu        sync.Mutex
	principal *model.Principal
	events    []model.Event
	tasks     []model.Task
	notes     []model.Note
	profiles  map[string]model.Profile
	nextID    int
	now       time.Time

	subs map[remote.Table][]chan remote.Change

	// Error injection.
	ReadErr  map[remote.Table]error
	WriteErr error
}

func NewFakeService() *FakeService {
	return &FakeService{
		profiles: make(map[string]model.Profile),
		subs:     make(map[remote.Table][]chan remote.Change),
		ReadErr:  make(map[remote.Table]error),
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// SignInAs seeds a session without going through SignIn.
func (f *FakeService) SignInAs(id string) model.Principal {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := model.Principal{ID: id, Email: id + "@example.test"}
	f.principal = &p
	return p
}

func (f *FakeService) genID() string {
	f.nextID++
	return fmt.Sprintf("row-%d", f.nextID)
}

// tick advances the fake clock so created_at ordering is deterministic.
func (f *FakeService) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *FakeService) emit(table remote.Table, kind remote.ChangeKind) {
	for _, ch := range f.subs[table] {
		select {
		case ch <- remote.Change{Table: table, Kind: kind}:
		default:
		}
	}
}

// Session.

func (f *FakeService) CurrentPrincipal(ctx context.Context) (model.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.principal == nil {
		return model.Principal{}, remote.ErrNoSession
	}
	return *f.principal, nil
}

func (f *FakeService) SignIn(ctx context.Context, email, password string) (model.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := model.Principal{ID: "user-" + email, Email: email}
	f.principal = &p
	return p, nil
}

func (f *FakeService) SignUp(ctx context.Context, email, password string) (model.Principal, error) {
	return f.SignIn(ctx, email, password)
}

func (f *FakeService) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.principal = nil
	return nil
}

// Events.

func (f *FakeService) ListEvents(ctx context.Context, ownerID string) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ReadErr[remote.TableEvents]; err != nil {
		return nil, &remote.ReadError{Table: remote.TableEvents, Err: err}
	}
	var out []model.Event
	for _, ev := range f.events {
		if ev.UserID == ownerID {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *FakeService) InsertEvent(ctx context.Context, ev model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return &remote.WriteError{Table: remote.TableEvents, Op: "insert", Err: f.WriteErr}
	}
	if ev.ID == "" {
		ev.ID = f.genID()
	}
	f.events = append(f.events, ev)
	f.emit(remote.TableEvents, remote.ChangeInsert)
	return nil
}

func (f *FakeService) UpdateEvent(ctx context.Context, id string, patch remote.EventPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return &remote.WriteError{Table: remote.TableEvents, Op: "update", Err: f.WriteErr}
	}
	for i := range f.events {
		if f.events[i].ID != id {
			continue
		}
		if patch.Title != nil {
			f.events[i].Title = *patch.Title
		}
		if patch.Date != nil {
			if ts, err := time.Parse(time.RFC3339, *patch.Date); err == nil {
				f.events[i].Date = ts
			}
		}
		if patch.Category != nil {
			f.events[i].Category = *patch.Category
		}
		if patch.Description != nil {
			f.events[i].Description = *patch.Description
		}
		break
	}
	// Zero rows matched is still a success.
	f.emit(remote.TableEvents, remote.ChangeUpdate)
	return nil
}

func (f *FakeService) DeleteEvent(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return &remote.WriteError{Table: remote.TableEvents, Op: "delete", Err: f.WriteErr}
	}
	for i := range f.events {
		if f.events[i].ID == id {
			f.events = append(f.events[:i], f.events[i+1:]...)
			break
		}
	}
	f.emit(remote.TableEvents, remote.ChangeDelete)
	return nil
}

// Tasks.

func (f *FakeService) ListTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ReadErr[remote.TableTasks]; err != nil {
		return nil, &remote.ReadError{Table: remote.TableTasks, Err: err}
	}
	var out []model.Task
	for _, t := range f.tasks {
		if t.UserID == ownerID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *FakeService) InsertTask(ctx context.Context, t model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return &remote.WriteError{Table: remote.TableTasks, Op: "insert", Err: f.WriteErr}
	}
	if t.ID == "" {
		t.ID = f.genID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = f.tick()
	}
	t.UpdatedAt = t.CreatedAt
	f.tasks = append(f.tasks, t)
	f.emit(remote.TableTasks, remote.ChangeInsert)
	return nil
}

func (f *FakeService) UpdateTask(ctx context.Context, id string, patch remote.TaskPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return &remote.WriteError{Table: remote.TableTasks, Op: "update", Err: f.WriteErr}
	}
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		if patch.Description != nil {
			f.tasks[i].Description = *patch.Description
		}
		if patch.Status != nil {
			f.tasks[i].Status = *patch.Status
		}
		if patch.Completed != nil {
			f.tasks[i].Completed = *patch.Completed
		}
		f.tasks[i].UpdatedAt = f.tick()
		break
	}
	f.emit(remote.TableTasks, remote.ChangeUpdate)
	return nil
}

func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return &remote.WriteError{Table: remote.TableTasks, Op: "delete", Err: f.WriteErr}
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			break
		}
	}
	f.emit(remote.TableTasks, remote.ChangeDelete)
	return nil
}

// Notes.

func (f *FakeService) ListNotes(ctx context.Context, principalID string) ([]model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ReadErr[remote.TableNotes]; err != nil {
		return nil, &remote.ReadError{Table: remote.TableNotes, Err: err}
	}
	var out []model.Note
	for _, n := range f.notes {
		if n.UserID == principalID || (n.PartnerID != nil && *n.PartnerID == principalID) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *FakeService) InsertNote(ctx context.Context, n model.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return &remote.WriteError{Table: remote.TableNotes, Op: "insert", Err: f.WriteErr}
	}
	if n.ID == "" {
		n.ID = f.genID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = f.tick()
	}
	f.notes = append(f.notes, n)
	f.emit(remote.TableNotes, remote.ChangeInsert)
	return nil
}

func (f *FakeService) DeleteNote(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return &remote.WriteError{Table: remote.TableNotes, Op: "delete", Err: f.WriteErr}
	}
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			break
		}
	}
	f.emit(remote.TableNotes, remote.ChangeDelete)
	return nil
}

// Profiles.

func (f *FakeService) GetProfile(ctx context.Context, id string) (model.Profile, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ReadErr[remote.TableProfiles]; err != nil {
		return model.Profile{}, false, &remote.ReadError{Table: remote.TableProfiles, Err: err}
	}
	p, ok := f.profiles[id]
	return p, ok, nil
}

func (f *FakeService) SaveProfile(ctx context.Context, id string, patch remote.ProfilePatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return &remote.WriteError{Table: remote.TableProfiles, Op: "update", Err: f.WriteErr}
	}
	p := f.profiles[id]
	p.ID = id
	applyProfilePatch(&p, patch)
	f.profiles[id] = p
	f.emit(remote.TableProfiles, remote.ChangeUpdate)
	return nil
}

func applyProfilePatch(p *model.Profile, patch remote.ProfilePatch) {
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.AvatarURL != nil {
		p.AvatarURL = *patch.AvatarURL
	}
	if patch.StartDate != nil {
		p.StartDate = *patch.StartDate
	}
	if patch.PrefTheme != nil {
		p.PrefTheme = *patch.PrefTheme
	}
	if patch.NotifEvents != nil {
		p.NotifEvents = *patch.NotifEvents
	}
	if patch.NotifTasks != nil {
		p.NotifTasks = *patch.NotifTasks
	}
	if patch.NotifAnniversaries != nil {
		p.NotifAnniversaries = *patch.NotifAnniversaries
	}
	if patch.NotifDaily != nil {
		p.NotifDaily = *patch.NotifDaily
	}
	if patch.PartnerID != nil {
		p.PartnerID = patch.PartnerID
	}
}

// Subscribe implements the table-wide change feed. Signals are dropped if
// the subscriber is not keeping up, which matches the contract: a signal is
// an invitation to reload, not a delta.
func (f *FakeService) Subscribe(ctx context.Context, table remote.Table) (<-chan remote.Change, error) {
	f.mu.Lock()
	ch := make(chan remote.Change, 16)
	f.subs[table] = append(f.subs[table], ch)
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		subs := f.subs[table]
		for i := range subs {
			if subs[i] == ch {
				f.subs[table] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		f.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}
