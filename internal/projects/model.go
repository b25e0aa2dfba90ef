package projects

import "time"

// Status is the lifecycle state of a project.
type Status string

const (
	StatusActive Status = "active"
	StatusOnHold Status = "on_hold"
	StatusDone   Status = "done"
)

// Valid reports whether the status is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusOnHold, StatusDone:
		return true
	}
	return false
}

// Project groups tasks under a code and an optional managing employee.
type Project struct {
	ID          int64
	Code        string
	Name        string
	Description string
	Status      Status
	ManagerID   *int64
	ManagerName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListFilters narrows and pages the project listing.
type ListFilters struct {
	Status Status
	Page   int
	Limit  int
}
