package employees

import (
	"context"
	"strconv"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
)

// Service wraps employee directory rules. Every operation checks the
// permission matrix before any storage access; the directory read is
// deliberately unscoped (all roles with read may list the roster).
type Service struct {
	repo  Repository
	audit AuditRecorder
}

// AuditRecorder persists audit trail entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

func NewService(repo Repository, audit AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

func authorize(caller rbac.Identity, action rbac.Action) error {
	ok, err := rbac.HasPermission(caller.Role, rbac.ResourceEmployees, action)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}
	return nil
}

func (s *Service) List(ctx context.Context, caller rbac.Identity, filters ListFilters) ([]Employee, int, error) {
	if err := authorize(caller, rbac.ActionRead); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, caller rbac.Identity, id int64) (Employee, error) {
	if err := authorize(caller, rbac.ActionRead); err != nil {
		return Employee{}, err
	}
	if id <= 0 {
		return Employee{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, caller rbac.Identity, emp Employee) (Employee, error) {
	if err := authorize(caller, rbac.ActionCreate); err != nil {
		return Employee{}, err
	}
	if err := s.validate(emp); err != nil {
		return Employee{}, err
	}
	created, err := s.repo.Create(ctx, emp)
	if err != nil {
		return Employee{}, err
	}
	s.recordAudit(ctx, caller, "employee.create", created.ID, nil)
	return created, nil
}

func (s *Service) Update(ctx context.Context, caller rbac.Identity, id int64, emp Employee) error {
	if err := authorize(caller, rbac.ActionUpdate); err != nil {
		return err
	}
	if id <= 0 {
		return shared.ErrNotFound
	}
	if err := s.validate(emp); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, emp); err != nil {
		return err
	}
	s.recordAudit(ctx, caller, "employee.update", id, nil)
	return nil
}

func (s *Service) Delete(ctx context.Context, caller rbac.Identity, id int64) error {
	if err := authorize(caller, rbac.ActionDelete); err != nil {
		return err
	}
	if id <= 0 {
		return shared.ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, caller, "employee.delete", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, caller rbac.Identity, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  caller.UserID,
		Action:   action,
		Entity:   "employees",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
}
