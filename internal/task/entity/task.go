package entity

import "time"

// Task status values.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Task priority values.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Statuses and Priorities list the enumerations in display order.
var (
	Statuses   = []string{StatusTodo, StatusInProgress, StatusDone}
	Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
)

func ValidStatus(s string) bool   { return contains(Statuses, s) }
func ValidPriority(p string) bool { return contains(Priorities, p) }

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Task represents a row in the `tasks` table.
type Task struct {
	ID          int64      `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description"`
	Status      string     `db:"status" json:"status"`
	Priority    string     `db:"priority" json:"priority"`
	CreatorID   int64      `db:"creator_id" json:"creator_id"`
	AssigneeID  *int64     `db:"assignee_id" json:"assignee_id"`
	DueDate     *time.Time `db:"due_date" json:"due_date"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// CreateInput carries the fields accepted when creating a task.
// Empty Priority means "use the default".
type CreateInput struct {
	Title       string
	Description *string
	Priority    string
	CreatorID   int64
	AssigneeID  *int64
	DueDate     *time.Time
}

// Updatable column names. Patch keys outside this set are ignored.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldPriority    = "priority"
	FieldAssigneeID  = "assignee_id"
	FieldDueDate     = "due_date"
)

// Patch is a partial update keyed by column name. Values are already typed:
// string for title/status/priority, *string for description, *int64 for
// assignee_id and *time.Time for due_date (nil pointers clear the column).
type Patch map[string]any

// Filter selects tasks by equality on each non-nil field.
type Filter struct {
	Status     *string
	Priority   *string
	AssigneeID *int64
}

// PageRequest is the caller's pagination window; nil means "use the default".
type PageRequest struct {
	Limit  *int
	Offset *int
}

// Page is a resolved pagination window.
type Page struct {
	Limit  int
	Offset int
}

// ListResult is one page of tasks plus the size of the whole filtered set.
type ListResult struct {
	Items []Task
	Total int64
	Page  Page
}
