package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the record whose owner is being resolved does
// not exist.
var ErrNotFound = errors.New("rbac: not found")

// TaskOwnership is the resolved owner of a task. Assigned is false for tasks
// without an assignee.
type TaskOwnership struct {
	OwnerUserID int64
	Assigned    bool
}

// OwnerResolver resolves the owning user of individually-owned records. The
// resolution is deliberately separate from the guard functions so joins can
// be tested apart from policy.
type OwnerResolver interface {
	EmployeeOwner(ctx context.Context, employeeID int64) (int64, error)
	SalaryOwner(ctx context.Context, salaryID int64) (int64, error)
	TaskOwner(ctx context.Context, taskID int64) (TaskOwnership, error)
}

// PGOwnerResolver resolves ownership against PostgreSQL.
type PGOwnerResolver struct {
	pool *pgxpool.Pool
}

// NewOwnerResolver constructs a PGOwnerResolver.
func NewOwnerResolver(pool *pgxpool.Pool) *PGOwnerResolver {
	return &PGOwnerResolver{pool: pool}
}

// EmployeeOwner returns the user id behind an employee record. Employees
// without a login account resolve to 0, which no authenticated caller
// matches.
func (r *PGOwnerResolver) EmployeeOwner(ctx context.Context, employeeID int64) (int64, error) {
	var userID *int64
	err := r.pool.QueryRow(ctx, `SELECT user_id FROM employees WHERE id = $1`, employeeID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if userID == nil {
		return 0, nil
	}
	return *userID, nil
}

// SalaryOwner resolves salary → employee → user.
func (r *PGOwnerResolver) SalaryOwner(ctx context.Context, salaryID int64) (int64, error) {
	var userID *int64
	err := r.pool.QueryRow(ctx, `
		SELECT e.user_id
		FROM salaries s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.id = $1`, salaryID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if userID == nil {
		return 0, nil
	}
	return *userID, nil
}

// TaskOwner resolves task → assigned employee → user. A task with a NULL
// assignee resolves to an unowned TaskOwnership.
func (r *PGOwnerResolver) TaskOwner(ctx context.Context, taskID int64) (TaskOwnership, error) {
	var assignee *int64
	err := r.pool.QueryRow(ctx, `
		SELECT e.user_id
		FROM tasks t
		LEFT JOIN employees e ON e.id = t.assigned_to
		WHERE t.id = $1`, taskID).Scan(&assignee)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TaskOwnership{}, ErrNotFound
		}
		return TaskOwnership{}, err
	}
	if assignee == nil {
		return TaskOwnership{}, nil
	}
	return TaskOwnership{OwnerUserID: *assignee, Assigned: true}, nil
}

var _ OwnerResolver = (*PGOwnerResolver)(nil)
