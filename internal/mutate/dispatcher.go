package mutate

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"duet-cli/internal/model"
	"duet-cli/internal/remote"
)

// Dispatcher issues exactly one remote write per command. No retries, no
// queueing, no optimistic state: on failure the caller reports the error and
// the view stays as it was; on success the change feed drives the reload.
type Dispatcher struct {
	svc remote.Service
	log *zap.Logger
}

func NewDispatcher(svc remote.Service, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{svc: svc, log: log}
}

// Do validates required fields, then performs the write as the given
// principal. Concurrent calls are not serialized here; the backend is the
// arbiter of write ordering.
func (d *Dispatcher) Do(ctx context.Context, principal model.Principal, cmd Command) error {
	switch c := cmd.(type) {
	case CreateEvent:
		title := strings.TrimSpace(c.Title)
		if title == "" {
			return EmptyFieldError{Field: "title"}
		}
		if strings.TrimSpace(c.Date) == "" {
			return EmptyFieldError{Field: "date"}
		}
		date, err := ParseEventDate(c.Date)
		if err != nil {
			return err
		}
		return d.svc.InsertEvent(ctx, model.Event{
			UserID:      principal.ID,
			Title:       title,
			Date:        date,
			Category:    strings.TrimSpace(c.Category),
			Description: strings.TrimSpace(c.Description),
		})

	case RetitleEvent:
		title := strings.TrimSpace(c.Title)
		if title == "" {
			return EmptyFieldError{Field: "title"}
		}
		return d.svc.UpdateEvent(ctx, c.ID, remote.EventPatch{Title: &title})

	case DeleteEvent:
		return d.svc.DeleteEvent(ctx, c.ID)

	case CreateTask:
		desc := strings.TrimSpace(c.Description)
		if desc == "" {
			return EmptyFieldError{Field: "description"}
		}
		return d.svc.InsertTask(ctx, model.Task{
			UserID:      principal.ID,
			Description: desc,
			Status:      model.TaskPending,
		})

	case MoveTask:
		if !model.ValidTaskStatus(c.Status) {
			return InvalidStatusError{Status: string(c.Status)}
		}
		status := c.Status
		return d.svc.UpdateTask(ctx, c.ID, remote.TaskPatch{Status: &status})

	case ToggleTask:
		completed := c.Completed
		return d.svc.UpdateTask(ctx, c.ID, remote.TaskPatch{Completed: &completed})

	case DeleteTask:
		return d.svc.DeleteTask(ctx, c.ID)

	case CreateNote:
		msg := strings.TrimSpace(c.Message)
		if msg == "" {
			return EmptyFieldError{Field: "message"}
		}
		note := model.Note{
			UserID:  principal.ID,
			Message: msg,
			Color:   strings.TrimSpace(c.Color),
		}
		// Share with the partner when one is configured. A missing or
		// unreadable profile is not an error, the note just stays private.
		if profile, ok, err := d.svc.GetProfile(ctx, principal.ID); err != nil {
			d.log.Warn("partner lookup failed, creating unshared note", zap.Error(err))
		} else if ok && profile.PartnerID != nil && strings.TrimSpace(*profile.PartnerID) != "" {
			note.PartnerID = profile.PartnerID
		}
		return d.svc.InsertNote(ctx, note)

	case DeleteNote:
		return d.svc.DeleteNote(ctx, c.ID)
	}
	return nil
}

// ParseEventDate accepts the forms the event form accepts: a bare date, a
// date with minutes, or full RFC 3339.
func ParseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, BadDateError{Value: s}
}
