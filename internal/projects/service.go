package projects

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
)

var errValidation = errors.New("project validation failed")

// AuditRecorder persists audit trail entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service wraps project rules. ADMIN and MANAGER hold full CRUD through the
// permission matrix; EMPLOYEE is read-only.
type Service struct {
	repo  Repository
	audit AuditRecorder
}

func NewService(repo Repository, audit AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

func authorize(caller rbac.Identity, action rbac.Action) error {
	ok, err := rbac.HasPermission(caller.Role, rbac.ResourceProjects, action)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}
	return nil
}

func validate(p Project) error {
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("%w: kode wajib diisi", errValidation)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: nama wajib diisi", errValidation)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: status %q tidak dikenal", errValidation, p.Status)
	}
	return nil
}

func (s *Service) List(ctx context.Context, caller rbac.Identity, filters ListFilters) ([]Project, int, error) {
	if err := authorize(caller, rbac.ActionRead); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, caller rbac.Identity, id int64) (Project, error) {
	if err := authorize(caller, rbac.ActionRead); err != nil {
		return Project{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, caller rbac.Identity, p Project) (Project, error) {
	if err := authorize(caller, rbac.ActionCreate); err != nil {
		return Project{}, err
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if err := validate(p); err != nil {
		return Project{}, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Project{}, err
	}
	s.recordAudit(ctx, caller, "project.create", created.ID, map[string]any{"code": created.Code})
	return created, nil
}

func (s *Service) Update(ctx context.Context, caller rbac.Identity, id int64, p Project) error {
	if err := authorize(caller, rbac.ActionUpdate); err != nil {
		return err
	}
	if err := validate(p); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, p); err != nil {
		return err
	}
	s.recordAudit(ctx, caller, "project.update", id, nil)
	return nil
}

func (s *Service) Delete(ctx context.Context, caller rbac.Identity, id int64) error {
	if err := authorize(caller, rbac.ActionDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, caller, "project.delete", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, caller rbac.Identity, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  caller.UserID,
		Action:   action,
		Entity:   "projects",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
}
