package salaries

import "time"

// Salary is one row of an employee's compensation history. Records are
// append-style: a raise adds a new row with a later effective date rather
// than overwriting the old one.
type Salary struct {
	ID            int64
	EmployeeID    int64
	EmployeeName  string
	Amount        float64
	EffectiveDate time.Time
	Note          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ListFilters narrows and pages the salary listing. EmployeeID narrows to one
// employee; the service sets it for EMPLOYEE callers regardless of the
// request.
type ListFilters struct {
	EmployeeID int64
	Page       int
	Limit      int
}
