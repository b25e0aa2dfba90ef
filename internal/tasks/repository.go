package tasks

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harmoni-hris/harmoni-hris/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Task, error)
	Get(ctx context.Context, id int64) (Task, error)
	Create(ctx context.Context, t Task) (Task, error)
	Update(ctx context.Context, id int64, t Task) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const taskSelect = `
	SELECT t.id, t.project_id, t.title, t.description, t.status, t.priority,
		t.assigned_to, COALESCE(e.name, ''), t.due_date, t.created_at, t.updated_at
	FROM tasks t
	LEFT JOIN employees e ON e.id = t.assigned_to`

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	var due *time.Time
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.AssignedTo, &t.AssigneeName, &due, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return Task{}, err
	}
	if due != nil {
		t.DueDate = *due
	}
	return t, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Task, error) {
	query := taskSelect + ` WHERE 1=1`
	args := []interface{}{}

	if filters.ProjectID > 0 {
		args = append(args, filters.ProjectID)
		query += ` AND t.project_id = $` + strconv.Itoa(len(args))
	}
	if filters.AssignedTo > 0 {
		args = append(args, filters.AssignedTo)
		query += ` AND t.assigned_to = $` + strconv.Itoa(len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		query += ` AND t.status = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY
		CASE t.priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END,
		t.due_date NULLS LAST, t.id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, shared.ErrNotFound
		}
		return Task{}, err
	}
	return t, nil
}

func (r *repository) Create(ctx context.Context, t Task) (Task, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO tasks (project_id, title, description, status, priority, assigned_to, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		t.ProjectID, t.Title, t.Description, t.Status, t.Priority, t.AssignedTo, nullableTime(t.DueDate)).Scan(&t.ID)
	if err != nil {
		if shared.ConstraintName(err) == "fk_tasks_project" {
			return Task{}, shared.ErrNotFound
		}
		return Task{}, err
	}
	return t, nil
}

// Update writes the full row in one statement so a rejected update never
// leaves the task half-changed.
func (r *repository) Update(ctx context.Context, id int64, t Task) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE tasks
		SET project_id = $1, title = $2, description = $3, status = $4, priority = $5,
			assigned_to = $6, due_date = $7, updated_at = NOW()
		WHERE id = $8`,
		t.ProjectID, t.Title, t.Description, t.Status, t.Priority, t.AssignedTo, nullableTime(t.DueDate), id)
	if err != nil {
		if shared.ConstraintName(err) == "fk_tasks_project" {
			return shared.ErrNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
