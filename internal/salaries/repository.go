package salaries

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harmoni-hris/harmoni-hris/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Salary, int, error)
	ListForEmployee(ctx context.Context, employeeID int64) ([]Salary, error)
	Get(ctx context.Context, id int64) (Salary, error)
	Create(ctx context.Context, s Salary) (Salary, error)
	Update(ctx context.Context, id int64, s Salary) error
	Delete(ctx context.Context, id int64) error
	// EmployeeIDForUser maps a login account to its employee record.
	EmployeeIDForUser(ctx context.Context, userID int64) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const salarySelect = `
	SELECT s.id, s.employee_id, e.name, s.amount, s.effective_date, s.note, s.created_at, s.updated_at
	FROM salaries s
	JOIN employees e ON e.id = s.employee_id`

func scanSalary(row pgx.Row) (Salary, error) {
	var s Salary
	err := row.Scan(&s.ID, &s.EmployeeID, &s.EmployeeName, &s.Amount, &s.EffectiveDate, &s.Note, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Salary, int, error) {
	query := salarySelect + ` WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM salaries WHERE 1=1`
	args := []interface{}{}
	countArgs := []interface{}{}

	if filters.EmployeeID > 0 {
		args = append(args, filters.EmployeeID)
		countArgs = append(countArgs, filters.EmployeeID)
		query += ` AND s.employee_id = $1`
		countQuery += ` AND employee_id = $1`
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY e.name ASC, s.effective_date DESC`
	if filters.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1)
		args = append(args, filters.Limit)
		query += ` OFFSET $` + strconv.Itoa(len(args)+1)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Salary
	for rows.Next() {
		s, err := scanSalary(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, s)
	}
	return result, total, rows.Err()
}

func (r *repository) ListForEmployee(ctx context.Context, employeeID int64) ([]Salary, error) {
	rows, err := r.db.Query(ctx, salarySelect+` WHERE s.employee_id = $1 ORDER BY s.effective_date DESC`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Salary
	for rows.Next() {
		s, err := scanSalary(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Salary, error) {
	s, err := scanSalary(r.db.QueryRow(ctx, salarySelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Salary{}, shared.ErrNotFound
		}
		return Salary{}, err
	}
	return s, nil
}

func (r *repository) Create(ctx context.Context, s Salary) (Salary, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO salaries (employee_id, amount, effective_date, note)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		s.EmployeeID, s.Amount, s.EffectiveDate, s.Note).Scan(&s.ID)
	if err != nil {
		switch shared.ConstraintName(err) {
		case "fk_salaries_employee":
			return Salary{}, shared.ErrNotFound
		case "uq_salaries_employee_effective":
			return Salary{}, shared.ErrDuplicate
		}
		return Salary{}, err
	}
	return s, nil
}

func (r *repository) Update(ctx context.Context, id int64, s Salary) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE salaries
		SET amount = $1, effective_date = $2, note = $3, updated_at = NOW()
		WHERE id = $4`,
		s.Amount, s.EffectiveDate, s.Note, id)
	if err != nil {
		if shared.ConstraintName(err) == "uq_salaries_employee_effective" {
			return shared.ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM salaries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) EmployeeIDForUser(ctx context.Context, userID int64) (int64, error) {
	var employeeID int64
	err := r.db.QueryRow(ctx, `SELECT id FROM employees WHERE user_id = $1`, userID).Scan(&employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return employeeID, nil
}
