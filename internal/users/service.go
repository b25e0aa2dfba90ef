package users

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
)

// Store defines persistence operations for the users module.
type Store interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, email, name, passwordHash string, role rbac.Role) (User, error)
	UpdateUserRole(ctx context.Context, id int64, role rbac.Role) error
}

// AuditRecorder persists audit trail entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service wraps user administration rules. Every operation checks the
// permission matrix before touching the store.
type Service struct {
	store Store
	audit AuditRecorder
}

// NewService constructs a Service.
func NewService(store Store, audit AuditRecorder) *Service {
	return &Service{store: store, audit: audit}
}

func authorize(caller rbac.Identity, action rbac.Action) error {
	ok, err := rbac.HasPermission(caller.Role, rbac.ResourceUsers, action)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}
	return nil
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context, caller rbac.Identity) ([]User, error) {
	if err := authorize(caller, rbac.ActionRead); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

// CreateUser registers a new account with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, caller rbac.Identity, email, name, password string, role rbac.Role) (User, error) {
	if err := authorize(caller, rbac.ActionCreate); err != nil {
		return User{}, err
	}
	if !role.Valid() {
		return User{}, shared.ErrForbidden
	}
	email = strings.TrimSpace(strings.ToLower(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	user, err := s.store.CreateUser(ctx, email, strings.TrimSpace(name), string(hash), role)
	if err != nil {
		return User{}, err
	}
	s.recordAudit(ctx, caller, "user.create", user.ID, map[string]any{"role": string(role)})
	return user, nil
}

// ChangeRole updates a user's role. This is the sole mutation path for the
// role consulted by every subsequent permission check; the new role takes
// effect on the target's next request.
func (s *Service) ChangeRole(ctx context.Context, caller rbac.Identity, userID int64, role rbac.Role) error {
	if err := authorize(caller, rbac.ActionUpdate); err != nil {
		return err
	}
	if !role.Valid() {
		return shared.ErrForbidden
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == role {
		return nil
	}
	if err := s.store.UpdateUserRole(ctx, userID, role); err != nil {
		return err
	}
	s.recordAudit(ctx, caller, "user.role_change", userID, map[string]any{
		"from": string(user.Role),
		"to":   string(role),
	})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, caller rbac.Identity, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  caller.UserID,
		Action:   action,
		Entity:   "users",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
}
