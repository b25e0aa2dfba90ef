package dashboard

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
)

// Summary holds the dashboard cards.
type Summary struct {
	Headcount      int
	ActiveProjects int
	OpenTasks      int
	MyTasks        int
}

// Service aggregates counts for the landing dashboard. Every role sees the
// same cards; MyTasks is scoped to the caller's assigned tasks.
type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Summarize fans the four counts out concurrently; the page renders from a
// single round trip's worth of latency.
func (s *Service) Summarize(ctx context.Context, caller rbac.Identity) (Summary, error) {
	var summary Summary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&summary.Headcount)
	})
	g.Go(func() error {
		return s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects WHERE status = 'active'`).Scan(&summary.ActiveProjects)
	})
	g.Go(func() error {
		return s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE status <> 'done'`).Scan(&summary.OpenTasks)
	})
	g.Go(func() error {
		err := s.pool.QueryRow(ctx, `
			SELECT COUNT(*)
			FROM tasks t
			JOIN employees e ON e.id = t.assigned_to
			WHERE e.user_id = $1 AND t.status <> 'done'`, caller.UserID).Scan(&summary.MyTasks)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return summary, nil
}
