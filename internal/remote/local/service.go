// Package local implements remote.Service against a sqlite database on disk,
// so the whole client works without a server ("solo mode"). It honors the
// same contract as the hosted backend: scoped queries, entity orderings,
// silent zero-row updates, and a table-wide change feed (in-process here).
package local

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"duet-cli/internal/model"
	"duet-cli/internal/remote"
)

type Service struct {
	db  *sql.DB
	log *zap.Logger

	mu   sync.Mutex
	subs map[remote.Table][]chan remote.Change
}

// Open opens (and migrates) the solo-mode database at path.
func Open(ctx context.Context, path string, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	s := &Service{db: db, log: log, subs: make(map[remote.Table][]chan remote.Change)}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Service) Close() error { return s.db.Close() }

func (s *Service) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			date TEXT NOT NULL,
			ends_at TEXT,
			category TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			description TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pendiente',
			completed INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			partner_id TEXT,
			message TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			start_date TEXT NOT NULL DEFAULT '',
			pref_theme TEXT NOT NULL DEFAULT '',
			notif_events INTEGER NOT NULL DEFAULT 0,
			notif_tasks INTEGER NOT NULL DEFAULT 0,
			notif_anniversaries INTEGER NOT NULL DEFAULT 0,
			notif_daily INTEGER NOT NULL DEFAULT 0,
			partner_id TEXT
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func hashPassword(pw string) string {
	sum := sha256.Sum256([]byte(pw))
	return hex.EncodeToString(sum[:])
}

func (s *Service) emit(table remote.Table, kind remote.ChangeKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs[table] {
		select {
		case ch <- remote.Change{Table: table, Kind: kind}:
		default:
		}
	}
}

// Session. The signed-in principal is kept in the meta table so it survives
// across invocations, mirroring the hosted session cache.

func (s *Service) CurrentPrincipal(ctx context.Context) (model.Principal, error) {
	var id, email string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k='session_id'`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Principal{}, remote.ErrNoSession
	}
	if err != nil {
		return model.Principal{}, err
	}
	_ = s.db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k='session_email'`).Scan(&email)
	return model.Principal{ID: id, Email: email}, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (model.Principal, error) {
	var id, hash string
	err := s.db.QueryRowContext(ctx, `SELECT id, password_hash FROM accounts WHERE email=?`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Principal{}, fmt.Errorf("unknown account: %s", email)
	}
	if err != nil {
		return model.Principal{}, err
	}
	if hash != hashPassword(password) {
		return model.Principal{}, errors.New("wrong password")
	}
	if err := s.setSession(ctx, id, email); err != nil {
		return model.Principal{}, err
	}
	return model.Principal{ID: id, Email: email}, nil
}

func (s *Service) SignUp(ctx context.Context, email, password string) (model.Principal, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts(id, email, password_hash) VALUES(?,?,?)`,
		id, email, hashPassword(password))
	if err != nil {
		return model.Principal{}, fmt.Errorf("creating account: %w", err)
	}
	if err := s.setSession(ctx, id, email); err != nil {
		return model.Principal{}, err
	}
	return model.Principal{ID: id, Email: email}, nil
}

func (s *Service) setSession(ctx context.Context, id, email string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k,v) VALUES('session_id',?)`, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k,v) VALUES('session_email',?)`, email)
	return err
}

func (s *Service) SignOut(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM meta WHERE k IN ('session_id','session_email')`)
	return err
}

// Events.

func (s *Service) ListEvents(ctx context.Context, ownerID string) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, date, ends_at, category, description
		 FROM events WHERE user_id=? ORDER BY date ASC`, ownerID)
	if err != nil {
		return nil, &remote.ReadError{Table: remote.TableEvents, Err: err}
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var ev model.Event
		var date string
		var endsAt sql.NullString
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Title, &date, &endsAt, &ev.Category, &ev.Description); err != nil {
			return nil, &remote.ReadError{Table: remote.TableEvents, Err: err}
		}
		ev.Date, _ = time.Parse(time.RFC3339, date)
		if endsAt.Valid && endsAt.String != "" {
			if ts, err := time.Parse(time.RFC3339, endsAt.String); err == nil {
				ev.EndsAt = &ts
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, &remote.ReadError{Table: remote.TableEvents, Err: err}
	}
	return out, nil
}

func (s *Service) InsertEvent(ctx context.Context, ev model.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	// Dates are stored normalized to UTC: ORDER BY date compares the strings
	// lexicographically, and mixed offsets would break chronological order.
	var endsAt any
	if ev.EndsAt != nil {
		endsAt = ev.EndsAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events(id, user_id, title, date, ends_at, category, description) VALUES(?,?,?,?,?,?,?)`,
		ev.ID, ev.UserID, ev.Title, ev.Date.UTC().Format(time.RFC3339), endsAt, ev.Category, ev.Description)
	if err != nil {
		return &remote.WriteError{Table: remote.TableEvents, Op: "insert", Err: err}
	}
	s.emit(remote.TableEvents, remote.ChangeInsert)
	return nil
}

func (s *Service) UpdateEvent(ctx context.Context, id string, patch remote.EventPatch) error {
	var date any
	if patch.Date != nil {
		date = normalizeDate(*patch.Date)
	}
	set, args := buildSet(map[string]any{
		"title":       deref(patch.Title),
		"date":        date,
		"category":    deref(patch.Category),
		"description": deref(patch.Description),
	})
	if set == "" {
		return nil
	}
	args = append(args, id)
	if _, err := s.db.ExecContext(ctx, `UPDATE events SET `+set+` WHERE id=?`, args...); err != nil {
		return &remote.WriteError{Table: remote.TableEvents, Op: "update", Err: err}
	}
	s.emit(remote.TableEvents, remote.ChangeUpdate)
	return nil
}

func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id=?`, id); err != nil {
		return &remote.WriteError{Table: remote.TableEvents, Op: "delete", Err: err}
	}
	s.emit(remote.TableEvents, remote.ChangeDelete)
	return nil
}

// Tasks.

func (s *Service) ListTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, description, status, completed, created_at, updated_at
		 FROM tasks WHERE user_id=? ORDER BY created_at ASC`, ownerID)
	if err != nil {
		return nil, &remote.ReadError{Table: remote.TableTasks, Err: err}
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		var t model.Task
		var completed int
		var created, updated string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Description, &t.Status, &completed, &created, &updated); err != nil {
			return nil, &remote.ReadError{Table: remote.TableTasks, Err: err}
		}
		t.Completed = completed != 0
		t.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &remote.ReadError{Table: remote.TableTasks, Err: err}
	}
	return out, nil
}

func (s *Service) InsertTask(ctx context.Context, t model.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	now := t.CreatedAt.Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks(id, user_id, description, status, completed, created_at, updated_at) VALUES(?,?,?,?,?,?,?)`,
		t.ID, t.UserID, t.Description, string(t.Status), boolToInt(t.Completed), now, now)
	if err != nil {
		return &remote.WriteError{Table: remote.TableTasks, Op: "insert", Err: err}
	}
	s.emit(remote.TableTasks, remote.ChangeInsert)
	return nil
}

func (s *Service) UpdateTask(ctx context.Context, id string, patch remote.TaskPatch) error {
	fields := map[string]any{}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Status != nil {
		fields["status"] = string(*patch.Status)
	}
	if patch.Completed != nil {
		fields["completed"] = boolToInt(*patch.Completed)
	}
	set, args := buildSet(fields)
	if set == "" {
		return nil
	}
	set += ", updated_at=?"
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano), id)
	if _, err := s.db.ExecContext(ctx, `UPDATE tasks SET `+set+` WHERE id=?`, args...); err != nil {
		return &remote.WriteError{Table: remote.TableTasks, Op: "update", Err: err}
	}
	s.emit(remote.TableTasks, remote.ChangeUpdate)
	return nil
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id); err != nil {
		return &remote.WriteError{Table: remote.TableTasks, Op: "delete", Err: err}
	}
	s.emit(remote.TableTasks, remote.ChangeDelete)
	return nil
}

// Notes.

func (s *Service) ListNotes(ctx context.Context, principalID string) ([]model.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, partner_id, message, color, created_at
		 FROM notes WHERE user_id=? OR partner_id=? ORDER BY created_at DESC`, principalID, principalID)
	if err != nil {
		return nil, &remote.ReadError{Table: remote.TableNotes, Err: err}
	}
	defer rows.Close()

	var out []model.Note
	for rows.Next() {
		var n model.Note
		var partner sql.NullString
		var created string
		if err := rows.Scan(&n.ID, &n.UserID, &partner, &n.Message, &n.Color, &created); err != nil {
			return nil, &remote.ReadError{Table: remote.TableNotes, Err: err}
		}
		if partner.Valid && partner.String != "" {
			p := partner.String
			n.PartnerID = &p
		}
		n.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, &remote.ReadError{Table: remote.TableNotes, Err: err}
	}
	return out, nil
}

func (s *Service) InsertNote(ctx context.Context, n model.Note) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	var partner any
	if n.PartnerID != nil {
		partner = *n.PartnerID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes(id, user_id, partner_id, message, color, created_at) VALUES(?,?,?,?,?,?)`,
		n.ID, n.UserID, partner, n.Message, n.Color, n.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return &remote.WriteError{Table: remote.TableNotes, Op: "insert", Err: err}
	}
	s.emit(remote.TableNotes, remote.ChangeInsert)
	return nil
}

func (s *Service) DeleteNote(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id=?`, id); err != nil {
		return &remote.WriteError{Table: remote.TableNotes, Op: "delete", Err: err}
	}
	s.emit(remote.TableNotes, remote.ChangeDelete)
	return nil
}

// Profiles.

func (s *Service) GetProfile(ctx context.Context, id string) (model.Profile, bool, error) {
	var p model.Profile
	var partner sql.NullString
	var ev, tk, an, dl int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, avatar_url, start_date, pref_theme,
		        notif_events, notif_tasks, notif_anniversaries, notif_daily, partner_id
		 FROM profiles WHERE id=?`, id).
		Scan(&p.ID, &p.FullName, &p.AvatarURL, &p.StartDate, &p.PrefTheme, &ev, &tk, &an, &dl, &partner)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, false, nil
	}
	if err != nil {
		return model.Profile{}, false, &remote.ReadError{Table: remote.TableProfiles, Err: err}
	}
	p.NotifEvents, p.NotifTasks, p.NotifAnniversaries, p.NotifDaily = ev != 0, tk != 0, an != 0, dl != 0
	if partner.Valid && partner.String != "" {
		v := partner.String
		p.PartnerID = &v
	}
	return p, true, nil
}

func (s *Service) SaveProfile(ctx context.Context, id string, patch remote.ProfilePatch) error {
	// Read-modify-write upsert; solo mode has no concurrent writers to race.
	current, _, err := s.GetProfile(ctx, id)
	if err != nil {
		return &remote.WriteError{Table: remote.TableProfiles, Op: "update", Err: err}
	}
	current.ID = id
	applyProfilePatch(&current, patch)

	var partner any
	if current.PartnerID != nil {
		partner = *current.PartnerID
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO profiles
		 (id, full_name, avatar_url, start_date, pref_theme,
		  notif_events, notif_tasks, notif_anniversaries, notif_daily, partner_id)
		 VALUES(?,?,?,?,?,?,?,?,?,?)`,
		id, current.FullName, current.AvatarURL, current.StartDate, current.PrefTheme,
		boolToInt(current.NotifEvents), boolToInt(current.NotifTasks),
		boolToInt(current.NotifAnniversaries), boolToInt(current.NotifDaily), partner)
	if err != nil {
		return &remote.WriteError{Table: remote.TableProfiles, Op: "update", Err: err}
	}
	s.emit(remote.TableProfiles, remote.ChangeUpdate)
	return nil
}

// Subscribe returns an in-process change feed; there is no server to push,
// so only writes through this process are observed.
func (s *Service) Subscribe(ctx context.Context, table remote.Table) (<-chan remote.Change, error) {
	ch := make(chan remote.Change, 16)
	s.mu.Lock()
	s.subs[table] = append(s.subs[table], ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		subs := s.subs[table]
		for i := range subs {
			if subs[i] == ch {
				s.subs[table] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// Helpers.

func deref(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// normalizeDate rewrites a date input in stored (UTC, RFC 3339) form. Inputs
// that don't parse are stored verbatim; the server-backed service is no
// stricter.
func normalizeDate(s string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC().Format(time.RFC3339)
		}
	}
	return s
}

// buildSet assembles "col=?, col=?" for the non-nil fields.
func buildSet(fields map[string]any) (string, []any) {
	// Fixed column order keeps the statement deterministic for tests.
	order := []string{"title", "date", "category", "description", "status", "completed"}
	set := ""
	var args []any
	for _, col := range order {
		v, ok := fields[col]
		if !ok || v == nil {
			continue
		}
		if set != "" {
			set += ", "
		}
		set += col + "=?"
		args = append(args, v)
	}
	return set, args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
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
