package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"duet-cli/internal/format"
	"duet-cli/internal/model"
	"duet-cli/internal/mutate"
	"duet-cli/internal/remote"
	"duet-cli/internal/sync"
)

const noteMaxLen = 200

type view int

const (
	viewBoard view = iota
	viewEvents
	viewNotes
)

// Messages.

type tasksLoadedMsg []model.Task
type eventsLoadedMsg []model.Event
type notesLoadedMsg []model.Note

// changedMsg is a change-feed signal for one table.
type changedMsg remote.Table

// feedClosedMsg means a change feed ended; the view keeps working, it just
// stops updating on its own.
type feedClosedMsg remote.Table

// mutationDoneMsg reports a write result. err==nil is silent: the view
// advances via the authoritative reload, not via this message.
type mutationDoneMsg struct {
	err error
}

type appModel struct {
	ctx        context.Context
	svc        remote.Service
	dispatcher *mutate.Dispatcher
	principal  model.Principal
	log        *zap.Logger

	syncTasks  *sync.Syncer[model.Task]
	syncEvents *sync.Syncer[model.Event]
	syncNotes  *sync.Syncer[model.Note]

	feeds map[remote.Table]<-chan remote.Change

	tasks  []model.Task
	events []model.Event
	notes  []model.Note

	view     view
	boardSel boardSelection
	eventSel int
	noteSel  int

	input     textinput.Model
	inputMode view // which view the input belongs to
	inputOpen bool

	flash string

	width  int
	height int
}

func newAppModel(ctx context.Context, svc remote.Service, principal model.Principal, log *zap.Logger) appModel {
	if log == nil {
		log = zap.NewNop()
	}
	in := textinput.New()
	in.CharLimit = 500
	in.Width = 60

	m := appModel{
		ctx:        ctx,
		svc:        svc,
		dispatcher: mutate.NewDispatcher(svc, log),
		principal:  principal,
		log:        log,
		feeds:      make(map[remote.Table]<-chan remote.Change),
		input:      in,
	}
	m.syncTasks = sync.New(func(ctx context.Context) ([]model.Task, error) {
		return svc.ListTasks(ctx, principal.ID)
	}, log.Named("tasks"))
	m.syncEvents = sync.New(func(ctx context.Context) ([]model.Event, error) {
		return svc.ListEvents(ctx, principal.ID)
	}, log.Named("events"))
	m.syncNotes = sync.New(func(ctx context.Context) ([]model.Note, error) {
		return svc.ListNotes(ctx, principal.ID)
	}, log.Named("notes"))
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadTasks, m.loadEvents, m.loadNotes}
	for _, table := range []remote.Table{remote.TableTasks, remote.TableEvents, remote.TableNotes} {
		if cmd := m.subscribe(table); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// subscribe opens the change feed for a table and returns the first wait
// command. A failed subscribe is logged and the table simply does not live
// update (manual reloads still work).
func (m appModel) subscribe(table remote.Table) tea.Cmd {
	ch, err := m.svc.Subscribe(m.ctx, table)
	if err != nil {
		m.log.Warn("subscribe failed", zap.String("table", string(table)), zap.Error(err))
		return nil
	}
	m.feeds[table] = ch
	return waitChange(table, ch)
}

func waitChange(table remote.Table, ch <-chan remote.Change) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return feedClosedMsg(table)
		}
		return changedMsg(table)
	}
}

// Load commands funnel through the table's Syncer, which owns the projection
// and drops stale overlapping reloads.

func (m appModel) loadTasks() tea.Msg  { return tasksLoadedMsg(m.syncTasks.Load(m.ctx)) }
func (m appModel) loadEvents() tea.Msg { return eventsLoadedMsg(m.syncEvents.Load(m.ctx)) }
func (m appModel) loadNotes() tea.Msg  { return notesLoadedMsg(m.syncNotes.Load(m.ctx)) }

func (m appModel) loadForTable(table remote.Table) tea.Cmd {
	switch table {
	case remote.TableTasks:
		return m.loadTasks
	case remote.TableEvents:
		return m.loadEvents
	case remote.TableNotes:
		return m.loadNotes
	}
	return nil
}

func (m appModel) dispatch(cmd mutate.Command) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{err: m.dispatcher.Do(m.ctx, m.principal, cmd)}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tasksLoadedMsg:
		m.tasks = msg
		m.boardSel = buildBoard(m.tasks).clamp(m.boardSel)
		return m, nil
	case eventsLoadedMsg:
		m.events = msg
		if m.eventSel >= len(m.events) {
			m.eventSel = len(m.events) - 1
		}
		return m, nil
	case notesLoadedMsg:
		m.notes = msg
		if m.noteSel >= len(m.notes) {
			m.noteSel = len(m.notes) - 1
		}
		return m, nil

	case changedMsg:
		table := remote.Table(msg)
		cmds := []tea.Cmd{m.loadForTable(table)}
		if ch, ok := m.feeds[table]; ok {
			cmds = append(cmds, waitChange(table, ch))
		}
		return m, tea.Batch(cmds...)

	case feedClosedMsg:
		delete(m.feeds, remote.Table(msg))
		return m, nil

	case mutationDoneMsg:
		if msg.err != nil {
			// The write-failure alert, terminal style.
			m.flash = msg.err.Error()
			return m, nil
		}
		m.flash = ""
		// Success is silent; reload the active table for backends without a
		// live feed. The Syncer discards it if a fresher load already won.
		switch m.view {
		case viewBoard:
			return m, m.loadTasks
		case viewEvents:
			return m, m.loadEvents
		case viewNotes:
			return m, m.loadNotes
		}
		return m, nil

	case tea.KeyMsg:
		if m.inputOpen {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m appModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "1":
		m.view = viewBoard
	case "2":
		m.view = viewEvents
	case "3":
		m.view = viewNotes
	case "tab":
		m.view = (m.view + 1) % 3
	case "r":
		return m, tea.Batch(m.loadTasks, m.loadEvents, m.loadNotes)
	case "a":
		m.inputOpen = true
		m.inputMode = m.view
		m.input.SetValue("")
		m.input.Placeholder = inputPlaceholder(m.view)
		if m.view == viewNotes {
			m.input.CharLimit = noteMaxLen
		} else {
			m.input.CharLimit = 500
		}
		return m, m.input.Focus()
	}

	switch m.view {
	case viewBoard:
		return m.updateBoardKeys(msg)
	case viewEvents:
		return m.updateEventKeys(msg)
	case viewNotes:
		return m.updateNoteKeys(msg)
	}
	return m, nil
}

func inputPlaceholder(v view) string {
	switch v {
	case viewBoard:
		return "Nueva tarea"
	case viewEvents:
		return "Título | 2025-12-24T20:00 | cita"
	default:
		return "Nueva nota para los dos"
	}
}

func (m appModel) updateBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := buildBoard(m.tasks)
	sel := b.clamp(m.boardSel)

	switch msg.String() {
	case "j", "down":
		sel.Row++
		sel.TaskID = ""
	case "k", "up":
		sel.Row--
		sel.TaskID = ""
	case "h", "left", "l", "right":
		dir := 1
		if s := msg.String(); s == "h" || s == "left" {
			dir = -1
		}
		if t, ok := b.selectedTask(sel); ok {
			target := sel.Col + dir
			if target >= 0 && target < len(model.TaskStatuses) {
				return m, m.dispatch(mutate.MoveTask{ID: t.ID, Status: model.TaskStatuses[target]})
			}
		}
		return m, nil
	case "H", "L":
		// Column focus without moving the card.
		if msg.String() == "H" {
			sel.Col--
		} else {
			sel.Col++
		}
		sel.Row = 0
		sel.TaskID = ""
	case " ":
		if t, ok := b.selectedTask(sel); ok {
			return m, m.dispatch(mutate.ToggleTask{ID: t.ID, Completed: !t.Completed})
		}
		return m, nil
	case "d", "delete":
		if t, ok := b.selectedTask(sel); ok {
			return m, m.dispatch(mutate.DeleteTask{ID: t.ID})
		}
		return m, nil
	}

	m.boardSel = b.clamp(sel)
	return m, nil
}

func (m appModel) updateEventKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.eventSel < len(m.events)-1 {
			m.eventSel++
		}
	case "k", "up":
		if m.eventSel > 0 {
			m.eventSel--
		}
	case "d", "delete":
		if m.eventSel >= 0 && m.eventSel < len(m.events) {
			return m, m.dispatch(mutate.DeleteEvent{ID: m.events[m.eventSel].ID})
		}
	}
	return m, nil
}

func (m appModel) updateNoteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.noteSel < len(m.notes)-1 {
			m.noteSel++
		}
	case "k", "up":
		if m.noteSel > 0 {
			m.noteSel--
		}
	case "d", "delete":
		if m.noteSel >= 0 && m.noteSel < len(m.notes) {
			return m, m.dispatch(mutate.DeleteNote{ID: m.notes[m.noteSel].ID})
		}
	}
	return m, nil
}

func (m appModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputOpen = false
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.inputOpen = false
		m.input.Blur()
		if value == "" {
			return m, nil
		}
		switch m.inputMode {
		case viewBoard:
			return m, m.dispatch(mutate.CreateTask{Description: value})
		case viewEvents:
			return m, m.dispatch(parseEventInput(value))
		case viewNotes:
			return m, m.dispatch(mutate.CreateNote{Message: value})
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// parseEventInput splits "title | date | category" from the quick-add line.
func parseEventInput(value string) mutate.Command {
	parts := strings.SplitN(value, "|", 3)
	cmd := mutate.CreateEvent{Title: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		cmd.Date = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		cmd.Category = strings.TrimSpace(parts[2])
	}
	return cmd
}

func (m appModel) View() string {
	width := m.width
	if width <= 0 {
		width = 100
	}

	header := lipgloss.NewStyle().Bold(true).
		Foreground(colorHeaderFg).Background(colorHeaderBg).Width(width).
		Render(fmt.Sprintf(" duet  [1]Tablero [2]Eventos [3]Notas  %s", m.principal.Email))

	var body string
	switch m.view {
	case viewBoard:
		b := buildBoard(m.tasks)
		done, total := b.counts()
		body = renderBoard(b, m.boardSel, width) +
			"\n\n" + styleMuted().Render("Progreso: "+format.Progress(done, total))
	case viewEvents:
		body = renderEvents(m.events, m.eventSel, width)
	case viewNotes:
		body = renderNotes(m.notes, m.noteSel, width)
	}

	footer := styleMuted().Render("a añadir · d borrar · espacio completar · h/l mover · r recargar · q salir")
	if m.flash != "" {
		footer = styleError().Render("⚠ " + m.flash)
	}
	if m.inputOpen {
		prompt := m.input.View()
		if m.inputMode == viewNotes {
			prompt += styleMuted().Render(fmt.Sprintf("  %d/%d", len([]rune(m.input.Value())), noteMaxLen))
		}
		footer = prompt
	}

	return header + "\n\n" + body + "\n\n" + footer
}
