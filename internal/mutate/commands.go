// Package mutate turns discrete user actions into remote writes. Commands are
// fire-and-forget with respect to view state: a successful write never
// touches a projection directly, the change feed and the next reload do.
package mutate

import (
	"duet-cli/internal/model"
)

// Command is a user action bound for the remote data service. UI layers
// (CLI flags, TUI key handlers) produce commands; the Dispatcher consumes
// them. Keeping the two apart is what makes each independently testable.
type Command interface {
	isCommand()
}

type CreateEvent struct {
	Title       string
	Date        string // YYYY-MM-DD or RFC 3339
	Category    string
	Description string
}

type RetitleEvent struct {
	ID    string
	Title string
}

type DeleteEvent struct {
	ID string
}

type CreateTask struct {
	Description string
}

// MoveTask changes a task's board column. The drop target decides the new
// status; nobody re-checks that the task still exists (a move racing a
// delete is a benign zero-row update).
type MoveTask struct {
	ID     string
	Status model.TaskStatus
}

type ToggleTask struct {
	ID        string
	Completed bool
}

type DeleteTask struct {
	ID string
}

type CreateNote struct {
	Message string
	Color   string
}

type DeleteNote struct {
	ID string
}

func (CreateEvent) isCommand()  {}
func (RetitleEvent) isCommand() {}
func (DeleteEvent) isCommand()  {}
func (CreateTask) isCommand()   {}
func (MoveTask) isCommand()     {}
func (ToggleTask) isCommand()   {}
func (DeleteTask) isCommand()   {}
func (CreateNote) isCommand()   {}
func (DeleteNote) isCommand()   {}
