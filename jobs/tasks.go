package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeSessionPrune removes expired session rows.
	TaskTypeSessionPrune = "session:prune"
	// TaskTypeSalaryReviewScan flags employees whose last salary change is
	// older than a year and mails the reminder.
	TaskTypeSalaryReviewScan = "salary:review_scan"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewSessionPruneTask constructs the periodic session cleanup task.
func NewSessionPruneTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSessionPrune, nil)
}

// NewSalaryReviewScanTask constructs the periodic salary review task.
func NewSalaryReviewScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSalaryReviewScan, nil)
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with SMTP/Mailpit.
	fmt.Printf("[jobs] send email to %s subject=%s\n", payload.To, payload.Subject)
	return nil
}

// SessionPruner removes expired session rows.
type SessionPruner interface {
	PruneExpiredSessions(ctx context.Context) (int64, error)
}

// NewSessionPruneHandler builds the handler for TaskTypeSessionPrune.
func NewSessionPruneHandler(pruner SessionPruner, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		removed, err := pruner.PruneExpiredSessions(ctx)
		if err != nil {
			return err
		}
		if removed > 0 && logger != nil {
			logger.Info("pruned expired sessions", slog.Int64("count", removed))
		}
		return nil
	}
}

// Enqueuer submits follow-up jobs from inside a handler.
type Enqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error)
}

// NewSalaryReviewScanHandler builds the handler for TaskTypeSalaryReviewScan.
// It looks for employees whose latest salary row is older than a year and
// mails the salary admins one reminder per employee.
func NewSalaryReviewScanHandler(pool *pgxpool.Pool, enqueuer Enqueuer, reminderTo string, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		rows, err := pool.Query(ctx, `
			SELECT e.id, e.name, MAX(s.effective_date)
			FROM employees e
			JOIN salaries s ON s.employee_id = e.id
			GROUP BY e.id, e.name
			HAVING MAX(s.effective_date) < NOW() - INTERVAL '1 year'
			ORDER BY e.name`)
		if err != nil {
			return err
		}
		defer rows.Close()

		type stale struct {
			name string
			last time.Time
		}
		var entries []stale
		for rows.Next() {
			var id int64
			var e stale
			if err := rows.Scan(&id, &e.name, &e.last); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if len(entries) == 0 || enqueuer == nil || reminderTo == "" {
			return nil
		}

		for _, e := range entries {
			payload := SendEmailPayload{
				To:      reminderTo,
				Subject: "Pengingat tinjauan gaji: " + e.name,
				Body: fmt.Sprintf("Gaji %s terakhir disesuaikan pada %s dan sudah lewat satu tahun.",
					e.name, e.last.Format("2 January 2006")),
			}
			if _, err := enqueuer.EnqueueSendEmail(ctx, payload); err != nil {
				if logger != nil {
					logger.Error("enqueue salary reminder", slog.String("employee", e.name), slog.Any("error", err))
				}
				return err
			}
		}
		if logger != nil {
			logger.Info("salary review reminders enqueued", slog.Int("count", len(entries)))
		}
		return nil
	}
}
