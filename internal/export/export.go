// Package export builds the relationship summary document: profile, days
// together, upcoming events, task progress, and the latest shared notes,
// assembled as markdown. The caller decides whether it goes to the terminal
// (glamour-rendered) or to a file as-is.
package export

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"duet-cli/internal/format"
	"duet-cli/internal/model"
	"duet-cli/internal/remote"
)

const (
	maxUpcomingEvents = 5
	maxLatestNotes    = 5
)

// Data is everything the summary draws on, read in one pass.
type Data struct {
	Profile    model.Profile
	HasProfile bool
	Events     []model.Event
	Tasks      []model.Task
	Notes      []model.Note
	Now        time.Time
}

// Collect reads the four projections for the summary. Unlike the live views,
// export is a one-shot read: any failure aborts with the read error rather
// than silently producing a partial document.
func Collect(ctx context.Context, svc remote.Service, principal model.Principal, now time.Time) (Data, error) {
	d := Data{Now: now}

	profile, ok, err := svc.GetProfile(ctx, principal.ID)
	if err != nil {
		return Data{}, err
	}
	d.Profile, d.HasProfile = profile, ok

	if d.Events, err = svc.ListEvents(ctx, principal.ID); err != nil {
		return Data{}, err
	}
	if d.Tasks, err = svc.ListTasks(ctx, principal.ID); err != nil {
		return Data{}, err
	}
	if d.Notes, err = svc.ListNotes(ctx, principal.ID); err != nil {
		return Data{}, err
	}
	return d, nil
}

// Markdown renders the summary document. Pure function of Data.
func Markdown(d Data) string {
	var b strings.Builder
	b.WriteString("# Nuestro resumen\n\n")

	if d.HasProfile {
		if name := strings.TrimSpace(d.Profile.FullName); name != "" {
			fmt.Fprintf(&b, "**%s**\n\n", name)
		}
		if start, err := time.Parse("2006-01-02", d.Profile.StartDate); err == nil {
			fmt.Fprintf(&b, "Juntos desde el %s — **%d días**.\n\n",
				format.Date(start), format.DaysTogether(start, d.Now))
		}
	}

	b.WriteString("## Próximos eventos\n\n")
	upcoming := upcomingEvents(d.Events, d.Now)
	if len(upcoming) == 0 {
		b.WriteString("_Nada en la agenda._\n\n")
	} else {
		for _, ev := range upcoming {
			fmt.Fprintf(&b, "- %s **%s** — %s\n",
				format.CategoryIcon(ev.Category), sanitizeInline(ev.Title), format.DateTime(ev.Date))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Tareas\n\n")
	done, total := 0, 0
	for _, t := range d.Tasks {
		total++
		if t.Completed {
			done++
		}
	}
	fmt.Fprintf(&b, "Progreso: **%s**\n\n", format.Progress(done, total))

	b.WriteString("## Últimas notas\n\n")
	if len(d.Notes) == 0 {
		b.WriteString("_Sin notas todavía._\n")
	} else {
		notes := d.Notes
		if len(notes) > maxLatestNotes {
			notes = notes[:maxLatestNotes]
		}
		for _, n := range notes {
			fmt.Fprintf(&b, "- %s _(%s)_\n", sanitizeInline(n.Message), format.Date(n.CreatedAt))
		}
	}
	return b.String()
}

// upcomingEvents picks the next events at or after now, soonest first.
func upcomingEvents(events []model.Event, now time.Time) []model.Event {
	var out []model.Event
	for _, ev := range events {
		if !ev.Date.Before(now) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if len(out) > maxUpcomingEvents {
		out = out[:maxUpcomingEvents]
	}
	return out
}

// sanitizeInline keeps user text from breaking the markdown list structure.
func sanitizeInline(s string) string {
	s = format.Sanitize(s)
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// RenderTerminal pretty-prints the markdown for the terminal. A fixed style
// avoids glamour's auto-detection, which can block querying the terminal;
// rendering failures fall back to the raw markdown.
func RenderTerminal(md string, width int, dark bool) string {
	if width < 10 {
		width = 80
	}
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}
