package projects

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harmoni-hris/harmoni-hris/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Project, int, error)
	Get(ctx context.Context, id int64) (Project, error)
	Create(ctx context.Context, p Project) (Project, error)
	Update(ctx context.Context, id int64, p Project) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const projectSelect = `
	SELECT p.id, p.code, p.name, p.description, p.status, p.manager_id,
		COALESCE(e.name, ''), p.created_at, p.updated_at
	FROM projects p
	LEFT JOIN employees e ON e.id = p.manager_id`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Project, int, error) {
	query := projectSelect + ` WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM projects WHERE 1=1`
	args := []interface{}{}
	countArgs := []interface{}{}

	if filters.Status != "" {
		args = append(args, filters.Status)
		countArgs = append(countArgs, filters.Status)
		query += ` AND p.status = $1`
		countQuery += ` AND status = $1`
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY p.code ASC`
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

	var result []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.Status, &p.ManagerID, &p.ManagerName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	return result, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Project, error) {
	var p Project
	err := r.db.QueryRow(ctx, projectSelect+` WHERE p.id = $1`, id).
		Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.Status, &p.ManagerID, &p.ManagerName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, shared.ErrNotFound
		}
		return Project{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, p Project) (Project, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO projects (code, name, description, status, manager_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		p.Code, p.Name, p.Description, p.Status, p.ManagerID).Scan(&p.ID)
	if err != nil {
		if shared.ConstraintName(err) == "uq_projects_code" {
			return Project{}, shared.ErrDuplicate
		}
		return Project{}, err
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, id int64, p Project) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE projects
		SET code = $1, name = $2, description = $3, status = $4, manager_id = $5, updated_at = NOW()
		WHERE id = $6`,
		p.Code, p.Name, p.Description, p.Status, p.ManagerID, id)
	if err != nil {
		if shared.ConstraintName(err) == "uq_projects_code" {
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
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
