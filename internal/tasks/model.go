package tasks

import "time"

// Status is the board column a task sits in.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists the board columns in display order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// Valid reports whether the status is one of the known columns.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority orders tasks within a column.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether the priority is one of the known levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work under a project, optionally assigned to an employee.
// DueDate is the zero time when no deadline is set.
type Task struct {
	ID           int64
	ProjectID    int64
	Title        string
	Description  string
	Status       Status
	Priority     Priority
	AssignedTo   *int64
	AssigneeName string
	DueDate      time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListFilters narrows the board.
type ListFilters struct {
	ProjectID  int64
	AssignedTo int64
	Status     Status
}
