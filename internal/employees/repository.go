package employees

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harmoni-hris/harmoni-hris/internal/platform/db"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Employee, int, error)
	Get(ctx context.Context, id int64) (Employee, error)
	Create(ctx context.Context, emp Employee) (Employee, error)
	Update(ctx context.Context, id int64, emp Employee) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const employeeColumns = `id, user_id, nik, name, position, department, phone, hire_date, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Employee, int, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		p := `$` + strconv.Itoa(argCount)
		query += ` AND (name ILIKE ` + p + ` OR nik ILIKE ` + p + ` OR department ILIKE ` + p + ` OR position ILIKE ` + p + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM employees WHERE 1=1`
	countArgs := []interface{}{}
	if filters.Search != "" {
		countQuery += ` AND (name ILIKE $1 OR nik ILIKE $1 OR department ILIKE $1 OR position ILIKE $1)`
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY " + sortOrder(filters.SortBy, filters.SortDir)

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
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

	var result []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.UserID, &e.NIK, &e.Name, &e.Position, &e.Department, &e.Phone, &e.HireDate, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, e)
	}
	return result, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Employee, error) {
	var e Employee
	err := r.db.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id).
		Scan(&e.ID, &e.UserID, &e.NIK, &e.Name, &e.Position, &e.Department, &e.Phone, &e.HireDate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, shared.ErrNotFound
		}
		return Employee{}, err
	}
	return e, nil
}

func (r *repository) Create(ctx context.Context, emp Employee) (Employee, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO employees (user_id, nik, name, position, department, phone, hire_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		emp.UserID, emp.NIK, emp.Name, emp.Position, emp.Department, emp.Phone, emp.HireDate).Scan(&emp.ID)
	if err != nil {
		if shared.ConstraintName(err) == "uq_employees_nik" {
			return Employee{}, shared.ErrDuplicate
		}
		return Employee{}, err
	}
	return emp, nil
}

func (r *repository) Update(ctx context.Context, id int64, emp Employee) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE employees
		SET user_id = $1, nik = $2, name = $3, position = $4, department = $5, phone = $6, hire_date = $7, updated_at = NOW()
		WHERE id = $8`,
		emp.UserID, emp.NIK, emp.Name, emp.Position, emp.Department, emp.Phone, emp.HireDate, id)
	if err != nil {
		if shared.ConstraintName(err) == "uq_employees_nik" {
			return shared.ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the employee together with dependent rows. Salary history
// goes with the record; assigned tasks fall back to unassigned.
func (r *repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE tasks SET assigned_to = NULL WHERE assigned_to = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM salaries WHERE employee_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "nik":
		return "nik " + dir
	case "department":
		return "department " + dir + ", name ASC"
	case "hire_date":
		return "hire_date " + dir
	default:
		return "name " + dir
	}
}
