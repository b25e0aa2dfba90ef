package employees

import "time"

// Employee represents an employee record. UserID links the record to the
// login account that owns it; employees without an account (not yet
// onboarded) have none.
type Employee struct {
	ID         int64
	UserID     *int64
	NIK        string
	Name       string
	Position   string
	Department string
	Phone      string
	HireDate   time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ListFilters narrows and pages the employee directory.
type ListFilters struct {
	Search  string
	SortBy  string
	SortDir string
	Page    int
	Limit   int
}
