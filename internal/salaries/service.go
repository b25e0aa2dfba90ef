package salaries

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
)

var errValidation = errors.New("salary validation failed")

// AuditRecorder persists audit trail entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service wraps salary rules. The matrix grants ADMIN full CRUD and MANAGER
// read/update; EMPLOYEE reads are narrowed to the caller's own history by the
// self-scope guard.
type Service struct {
	repo     Repository
	resolver rbac.OwnerResolver
	audit    AuditRecorder
}

func NewService(repo Repository, resolver rbac.OwnerResolver, audit AuditRecorder) *Service {
	return &Service{repo: repo, resolver: resolver, audit: audit}
}

func authorize(caller rbac.Identity, action rbac.Action) error {
	ok, err := rbac.HasPermission(caller.Role, rbac.ResourceSalaries, action)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}
	return nil
}

func validate(s Salary) error {
	if s.EmployeeID <= 0 {
		return fmt.Errorf("%w: karyawan wajib diisi", errValidation)
	}
	if s.Amount <= 0 {
		return fmt.Errorf("%w: jumlah harus lebih dari nol", errValidation)
	}
	if s.EffectiveDate.IsZero() {
		return fmt.Errorf("%w: tanggal berlaku wajib diisi", errValidation)
	}
	return nil
}

// List returns salary rows. An EMPLOYEE caller is forced down to their own
// employee record; a caller without one sees an empty history, not an error.
func (s *Service) List(ctx context.Context, caller rbac.Identity, filters ListFilters) ([]Salary, int, error) {
	if err := authorize(caller, rbac.ActionRead); err != nil {
		return nil, 0, err
	}
	if caller.Role == rbac.RoleEmployee {
		own, err := s.repo.EmployeeIDForUser(ctx, caller.UserID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, 0, nil
			}
			return nil, 0, err
		}
		filters.EmployeeID = own
	}
	return s.repo.List(ctx, filters)
}

// ListForEmployee returns one employee's history after the scope guard. The
// employees module uses it for the detail page salary panel.
func (s *Service) ListForEmployee(ctx context.Context, caller rbac.Identity, employeeID int64) ([]Salary, error) {
	if err := authorize(caller, rbac.ActionRead); err != nil {
		return nil, err
	}
	if caller.Role == rbac.RoleEmployee {
		owner, err := s.resolver.EmployeeOwner(ctx, employeeID)
		if err != nil {
			if errors.Is(err, rbac.ErrNotFound) {
				return nil, shared.ErrNotFound
			}
			return nil, err
		}
		if !rbac.CanAccessSalaryRecord(caller, owner) {
			return nil, shared.ErrForbidden
		}
	}
	return s.repo.ListForEmployee(ctx, employeeID)
}

func (s *Service) Get(ctx context.Context, caller rbac.Identity, id int64) (Salary, error) {
	if err := authorize(caller, rbac.ActionRead); err != nil {
		return Salary{}, err
	}
	if caller.Role == rbac.RoleEmployee {
		owner, err := s.resolver.SalaryOwner(ctx, id)
		if err != nil {
			if errors.Is(err, rbac.ErrNotFound) {
				return Salary{}, shared.ErrNotFound
			}
			return Salary{}, err
		}
		if !rbac.CanAccessSalaryRecord(caller, owner) {
			return Salary{}, shared.ErrForbidden
		}
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, caller rbac.Identity, salary Salary) (Salary, error) {
	if err := authorize(caller, rbac.ActionCreate); err != nil {
		return Salary{}, err
	}
	if err := validate(salary); err != nil {
		return Salary{}, err
	}
	created, err := s.repo.Create(ctx, salary)
	if err != nil {
		return Salary{}, err
	}
	s.recordAudit(ctx, caller, "salary.create", created.ID, map[string]any{"employee_id": created.EmployeeID})
	return created, nil
}

func (s *Service) Update(ctx context.Context, caller rbac.Identity, id int64, salary Salary) error {
	if err := authorize(caller, rbac.ActionUpdate); err != nil {
		return err
	}
	if err := validate(salary); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, salary); err != nil {
		return err
	}
	s.recordAudit(ctx, caller, "salary.update", id, nil)
	return nil
}

// Delete removes a salary row. Only ADMIN passes the matrix here; MANAGER
// holds read/update but never delete.
func (s *Service) Delete(ctx context.Context, caller rbac.Identity, id int64) error {
	if err := authorize(caller, rbac.ActionDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, caller, "salary.delete", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, caller rbac.Identity, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  caller.UserID,
		Action:   action,
		Entity:   "salaries",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
}
