// Package rest implements remote.Service against a hosted row store speaking
// the PostgREST dialect: per-table REST endpoints with query-string filters,
// a password-grant auth endpoint, and a websocket change feed. Row-level
// security lives server-side; this client only scopes queries and forwards
// the session token.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"duet-cli/internal/model"
	"duet-cli/internal/remote"
)

// requestTimeout bounds every REST call. The change feed socket is exempt:
// it lives as long as its context.
const requestTimeout = 10 * time.Second

type Client struct {
	baseURL     string
	anonKey     string
	http        *http.Client
	sessionPath string
	log         *zap.Logger

	session *session
}

// Option tweaks the client at construction.
type Option func(*Client)

// WithHTTPClient swaps the transport (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a client for the service at baseURL. A previously saved session
// is loaded from sessionPath when present; an unreadable session file is
// treated as signed out.
func New(baseURL, anonKey, sessionPath string, log *zap.Logger, opts ...Option) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		anonKey:     anonKey,
		http:        &http.Client{},
		sessionPath: sessionPath,
		log:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.session = loadSession(sessionPath)
	return c
}

func (c *Client) restURL(table remote.Table, query url.Values) string {
	u := c.baseURL + "/rest/v1/" + string(table)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, rawURL string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if c.session != nil {
		req.Header.Set("Authorization", "Bearer "+c.session.AccessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Events.

func (c *Client) ListEvents(ctx context.Context, ownerID string) ([]model.Event, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+ownerID)
	q.Set("order", "date.asc")
	var out []model.Event
	if err := c.do(ctx, http.MethodGet, c.restURL(remote.TableEvents, q), nil, &out); err != nil {
		return nil, &remote.ReadError{Table: remote.TableEvents, Err: err}
	}
	return out, nil
}

func (c *Client) InsertEvent(ctx context.Context, ev model.Event) error {
	if err := c.do(ctx, http.MethodPost, c.restURL(remote.TableEvents, nil), []model.Event{ev}, nil); err != nil {
		return &remote.WriteError{Table: remote.TableEvents, Op: "insert", Err: err}
	}
	return nil
}

func (c *Client) UpdateEvent(ctx context.Context, id string, patch remote.EventPatch) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	body := map[string]any{}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Date != nil {
		body["date"] = *patch.Date
	}
	if patch.Category != nil {
		body["category"] = *patch.Category
	}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}
	if len(body) == 0 {
		return nil
	}
	if err := c.do(ctx, http.MethodPatch, c.restURL(remote.TableEvents, q), body, nil); err != nil {
		return &remote.WriteError{Table: remote.TableEvents, Op: "update", Err: err}
	}
	return nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	if err := c.do(ctx, http.MethodDelete, c.restURL(remote.TableEvents, q), nil, nil); err != nil {
		return &remote.WriteError{Table: remote.TableEvents, Op: "delete", Err: err}
	}
	return nil
}

// Tasks.

func (c *Client) ListTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+ownerID)
	q.Set("order", "created_at.asc")
	var out []model.Task
	if err := c.do(ctx, http.MethodGet, c.restURL(remote.TableTasks, q), nil, &out); err != nil {
		return nil, &remote.ReadError{Table: remote.TableTasks, Err: err}
	}
	return out, nil
}

func (c *Client) InsertTask(ctx context.Context, t model.Task) error {
	body := map[string]any{
		"user_id":     t.UserID,
		"description": t.Description,
		"status":      t.Status,
		"completed":   t.Completed,
	}
	if err := c.do(ctx, http.MethodPost, c.restURL(remote.TableTasks, nil), []map[string]any{body}, nil); err != nil {
		return &remote.WriteError{Table: remote.TableTasks, Op: "insert", Err: err}
	}
	return nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch remote.TaskPatch) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	body := map[string]any{}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}
	if patch.Status != nil {
		body["status"] = *patch.Status
	}
	if patch.Completed != nil {
		body["completed"] = *patch.Completed
	}
	if len(body) == 0 {
		return nil
	}
	if err := c.do(ctx, http.MethodPatch, c.restURL(remote.TableTasks, q), body, nil); err != nil {
		return &remote.WriteError{Table: remote.TableTasks, Op: "update", Err: err}
	}
	return nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	if err := c.do(ctx, http.MethodDelete, c.restURL(remote.TableTasks, q), nil, nil); err != nil {
		return &remote.WriteError{Table: remote.TableTasks, Op: "delete", Err: err}
	}
	return nil
}

// Notes.

func (c *Client) ListNotes(ctx context.Context, principalID string) ([]model.Note, error) {
	q := url.Values{}
	q.Set("select", "*")
	// Owner or partner: the shared-visibility predicate.
	q.Set("or", fmt.Sprintf("(user_id.eq.%s,partner_id.eq.%s)", principalID, principalID))
	q.Set("order", "created_at.desc")
	var out []model.Note
	if err := c.do(ctx, http.MethodGet, c.restURL(remote.TableNotes, q), nil, &out); err != nil {
		return nil, &remote.ReadError{Table: remote.TableNotes, Err: err}
	}
	return out, nil
}

func (c *Client) InsertNote(ctx context.Context, n model.Note) error {
	body := map[string]any{
		"user_id": n.UserID,
		"message": n.Message,
	}
	if n.PartnerID != nil {
		body["partner_id"] = *n.PartnerID
	}
	if n.Color != "" {
		body["color"] = n.Color
	}
	if err := c.do(ctx, http.MethodPost, c.restURL(remote.TableNotes, nil), []map[string]any{body}, nil); err != nil {
		return &remote.WriteError{Table: remote.TableNotes, Op: "insert", Err: err}
	}
	return nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	if err := c.do(ctx, http.MethodDelete, c.restURL(remote.TableNotes, q), nil, nil); err != nil {
		return &remote.WriteError{Table: remote.TableNotes, Op: "delete", Err: err}
	}
	return nil
}

// Profiles.

func (c *Client) GetProfile(ctx context.Context, id string) (model.Profile, bool, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+id)
	var out []model.Profile
	if err := c.do(ctx, http.MethodGet, c.restURL(remote.TableProfiles, q), nil, &out); err != nil {
		return model.Profile{}, false, &remote.ReadError{Table: remote.TableProfiles, Err: err}
	}
	if len(out) == 0 {
		return model.Profile{}, false, nil
	}
	return out[0], true, nil
}

func (c *Client) SaveProfile(ctx context.Context, id string, patch remote.ProfilePatch) error {
	body := map[string]any{"id": id}
	if patch.FullName != nil {
		body["full_name"] = *patch.FullName
	}
	if patch.AvatarURL != nil {
		body["avatar_url"] = *patch.AvatarURL
	}
	if patch.StartDate != nil {
		body["start_date"] = *patch.StartDate
	}
	if patch.PrefTheme != nil {
		body["pref_theme"] = *patch.PrefTheme
	}
	if patch.NotifEvents != nil {
		body["notif_events"] = *patch.NotifEvents
	}
	if patch.NotifTasks != nil {
		body["notif_tasks"] = *patch.NotifTasks
	}
	if patch.NotifAnniversaries != nil {
		body["notif_anniversaries"] = *patch.NotifAnniversaries
	}
	if patch.NotifDaily != nil {
		body["notif_daily"] = *patch.NotifDaily
	}
	if patch.PartnerID != nil {
		body["partner_id"] = *patch.PartnerID
	}

	// Upsert: the profile row may not exist yet.
	q := url.Values{}
	q.Set("on_conflict", "id")
	u := c.restURL(remote.TableProfiles, q)
	req := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		data, err := json.Marshal([]map[string]any{body})
		if err != nil {
			return err
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
		if err != nil {
			return err
		}
		httpReq.Header.Set("apikey", c.anonKey)
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Prefer", "resolution=merge-duplicates")
		if c.session != nil {
			httpReq.Header.Set("Authorization", "Bearer "+c.session.AccessToken)
		}
		resp, err := c.http.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data)))
		}
		return nil
	}
	if err := req(ctx); err != nil {
		return &remote.WriteError{Table: remote.TableProfiles, Op: "update", Err: err}
	}
	return nil
}
