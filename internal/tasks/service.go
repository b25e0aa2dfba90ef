package tasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
)

var errValidation = errors.New("task validation failed")

// AuditRecorder persists audit trail entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// UpdateInput is the full set of fields an update may carry. Which of them
// actually land depends on the caller's role: ADMIN and MANAGER apply all of
// them, EMPLOYEE only the status. Dropped fields are ignored silently, they
// never cause a partial write.
type UpdateInput struct {
	Title       string
	Description string
	ProjectID   int64
	Status      Status
	Priority    Priority
	AssignedTo  *int64
	DueDate     time.Time
}

// Service wraps task board rules. The matrix grants ADMIN and MANAGER full
// CRUD; EMPLOYEE holds read and update, with updates narrowed twice: to tasks
// assigned to the caller, and to the status field.
type Service struct {
	repo     Repository
	resolver rbac.OwnerResolver
	audit    AuditRecorder
}

func NewService(repo Repository, resolver rbac.OwnerResolver, audit AuditRecorder) *Service {
	return &Service{repo: repo, resolver: resolver, audit: audit}
}

func authorize(caller rbac.Identity, action rbac.Action) error {
	ok, err := rbac.HasPermission(caller.Role, rbac.ResourceTasks, action)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}
	return nil
}

func validate(t Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: judul wajib diisi", errValidation)
	}
	if t.ProjectID <= 0 {
		return fmt.Errorf("%w: proyek wajib diisi", errValidation)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: status %q tidak dikenal", errValidation, t.Status)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: prioritas %q tidak dikenal", errValidation, t.Priority)
	}
	return nil
}

// List returns the board. Reads are not scoped to the caller: every role with
// read sees the whole board, EMPLOYEE included.
func (s *Service) List(ctx context.Context, caller rbac.Identity, filters ListFilters) ([]Task, error) {
	if err := authorize(caller, rbac.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, caller rbac.Identity, id int64) (Task, error) {
	if err := authorize(caller, rbac.ActionRead); err != nil {
		return Task{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, caller rbac.Identity, t Task) (Task, error) {
	if err := authorize(caller, rbac.ActionCreate); err != nil {
		return Task{}, err
	}
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if err := validate(t); err != nil {
		return Task{}, err
	}
	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return Task{}, err
	}
	s.recordAudit(ctx, caller, "task.create", created.ID, map[string]any{"project_id": created.ProjectID})
	return created, nil
}

// Update applies the input under the caller's field narrowing. The matrix
// check runs first, then assignment scope, and only then is anything written.
func (s *Service) Update(ctx context.Context, caller rbac.Identity, id int64, input UpdateInput) error {
	if err := authorize(caller, rbac.ActionUpdate); err != nil {
		return err
	}
	if err := s.checkScope(ctx, caller, id); err != nil {
		return err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	merged := applyNarrowed(existing, input, rbac.UpdatableTaskFields(caller.Role))
	if err := validate(merged); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, merged); err != nil {
		return err
	}
	s.recordAudit(ctx, caller, "task.update", id, nil)
	return nil
}

// UpdateStatus moves a task between board columns. This is the path the
// drag-and-drop board posts to and the only mutation the EMPLOYEE role can
// reach in full.
func (s *Service) UpdateStatus(ctx context.Context, caller rbac.Identity, id int64, status Status) error {
	if err := authorize(caller, rbac.ActionUpdate); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: status %q tidak dikenal", errValidation, status)
	}
	if err := s.checkScope(ctx, caller, id); err != nil {
		return err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == status {
		return nil
	}
	from := existing.Status
	existing.Status = status
	if err := s.repo.Update(ctx, id, existing); err != nil {
		return err
	}
	s.recordAudit(ctx, caller, "task.status_change", id, map[string]any{
		"from": string(from),
		"to":   string(status),
	})
	return nil
}

func (s *Service) Delete(ctx context.Context, caller rbac.Identity, id int64) error {
	if err := authorize(caller, rbac.ActionDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, caller, "task.delete", id, nil)
	return nil
}

// checkScope enforces the assignment guard. Unassigned tasks and tasks
// assigned to someone else are Forbidden for EMPLOYEE, never NotFound: the
// caller already passed the matrix read check, so existence is not a secret.
func (s *Service) checkScope(ctx context.Context, caller rbac.Identity, id int64) error {
	if caller.Role != rbac.RoleEmployee {
		return nil
	}
	ownership, err := s.resolver.TaskOwner(ctx, id)
	if err != nil {
		if errors.Is(err, rbac.ErrNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if !rbac.CanUpdateTask(caller, ownership.OwnerUserID, ownership.Assigned) {
		return shared.ErrForbidden
	}
	return nil
}

func applyNarrowed(existing Task, input UpdateInput, fields map[string]bool) Task {
	merged := existing
	if fields[rbac.TaskFieldTitle] {
		merged.Title = input.Title
	}
	if fields[rbac.TaskFieldDescription] {
		merged.Description = input.Description
	}
	if fields[rbac.TaskFieldProject] {
		merged.ProjectID = input.ProjectID
	}
	if fields[rbac.TaskFieldStatus] {
		merged.Status = input.Status
	}
	if fields[rbac.TaskFieldPriority] {
		merged.Priority = input.Priority
	}
	if fields[rbac.TaskFieldAssignee] {
		merged.AssignedTo = input.AssignedTo
	}
	if fields[rbac.TaskFieldDueDate] {
		merged.DueDate = input.DueDate
	}
	return merged
}

func (s *Service) recordAudit(ctx context.Context, caller rbac.Identity, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  caller.UserID,
		Action:   action,
		Entity:   "tasks",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
}
