package model

import "time"

// Principal is the authenticated identity every read and write is scoped to.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pendiente"
	TaskInProgress TaskStatus = "progreso"
	TaskDone       TaskStatus = "hecha"
)

// TaskStatuses is the fixed column order of the board.
var TaskStatuses = []TaskStatus{TaskPending, TaskInProgress, TaskDone}

func ValidTaskStatus(s TaskStatus) bool {
	for _, st := range TaskStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type Event struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Date        time.Time  `json:"date"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Category    string     `json:"category,omitempty"`
	Description string     `json:"description,omitempty"`
}

type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Note is the one shared entity: visible to its owner and, when set, to the
// partner it was shared with.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PartnerID *string   `json:"partner_id,omitempty"`
	Message   string    `json:"message"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Profile struct {
	ID                 string  `json:"id"`
	FullName           string  `json:"full_name,omitempty"`
	AvatarURL          string  `json:"avatar_url,omitempty"`
	StartDate          string  `json:"start_date,omitempty"` // YYYY-MM-DD
	PrefTheme          string  `json:"pref_theme,omitempty"`
	NotifEvents        bool    `json:"notif_events"`
	NotifTasks         bool    `json:"notif_tasks"`
	NotifAnniversaries bool    `json:"notif_anniversaries"`
	NotifDaily         bool    `json:"notif_daily"`
	PartnerID          *string `json:"partner_id,omitempty"`
}
