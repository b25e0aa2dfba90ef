package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
)

type stubStore struct {
	users    map[int64]User
	nextID   int64
	calls    int
	lastHash string
}

func newStubStore() *stubStore {
	return &stubStore{users: map[int64]User{}, nextID: 1}
}

func (s *stubStore) ListUsers(_ context.Context) ([]User, error) {
	s.calls++
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubStore) GetUser(_ context.Context, id int64) (User, error) {
	s.calls++
	u, ok := s.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (s *stubStore) CreateUser(_ context.Context, email, name, passwordHash string, role rbac.Role) (User, error) {
	s.calls++
	for _, u := range s.users {
		if u.Email == email {
			return User{}, shared.ErrDuplicate
		}
	}
	s.lastHash = passwordHash
	u := User{ID: s.nextID, Email: email, Name: name, Role: role, IsActive: true}
	s.nextID++
	s.users[u.ID] = u
	return u, nil
}

func (s *stubStore) UpdateUserRole(_ context.Context, id int64, role rbac.Role) error {
	s.calls++
	u, ok := s.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Role = role
	s.users[id] = u
	return nil
}

// RoleOf mirrors the production lookup: fetched fresh, never cached.
func (s *stubStore) RoleOf(_ context.Context, id int64) (rbac.Role, error) {
	u, ok := s.users[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	return u.Role, nil
}

type stubAudit struct {
	logs []shared.AuditLog
}

func (s *stubAudit) Record(_ context.Context, log shared.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

var adminCaller = rbac.Identity{UserID: 1, Role: rbac.RoleAdmin}

func TestOnlyAdminManagesUsers(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, &stubAudit{})

	for _, role := range []rbac.Role{rbac.RoleManager, rbac.RoleEmployee} {
		caller := rbac.Identity{UserID: 9, Role: role}
		_, err := svc.CreateUser(context.Background(), caller, "a@harmoni.local", "A", "rahasia-123", rbac.RoleEmployee)
		assert.ErrorIs(t, err, shared.ErrForbidden, "%s create", role)
		assert.ErrorIs(t, svc.ChangeRole(context.Background(), caller, 1, rbac.RoleAdmin), shared.ErrForbidden, "%s change role", role)
	}
	assert.Zero(t, store.calls, "denied calls must not reach the store")

	// MANAGER may still list accounts.
	_, err := svc.ListUsers(context.Background(), rbac.Identity{UserID: 9, Role: rbac.RoleManager})
	assert.NoError(t, err)
}

func TestCreateUserHashesPassword(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, &stubAudit{})

	created, err := svc.CreateUser(context.Background(), adminCaller, "Budi@Harmoni.Local", "Budi", "rahasia-123", rbac.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, "budi@harmoni.local", created.Email, "email is normalised")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.lastHash), []byte("rahasia-123")))
}

// TestRoleChangeRoundTrip verifies that a role change takes effect on the next
// role lookup: demote an admin to EMPLOYEE, watch the permission flip, then
// promote them back.
func TestRoleChangeRoundTrip(t *testing.T) {
	store := newStubStore()
	audit := &stubAudit{}
	svc := NewService(store, audit)

	target, err := svc.CreateUser(context.Background(), adminCaller, "sari@harmoni.local", "Sari", "rahasia-123", rbac.RoleManager)
	require.NoError(t, err)

	// As MANAGER, Sari can delete projects.
	role, err := store.RoleOf(context.Background(), target.ID)
	require.NoError(t, err)
	ok, err := rbac.HasPermission(role, rbac.ResourceProjects, rbac.ActionDelete)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.ChangeRole(context.Background(), adminCaller, target.ID, rbac.RoleEmployee))

	role, err = store.RoleOf(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleEmployee, role)
	ok, err = rbac.HasPermission(role, rbac.ResourceProjects, rbac.ActionDelete)
	require.NoError(t, err)
	assert.False(t, ok, "demoted role loses the grant immediately")

	require.NoError(t, svc.ChangeRole(context.Background(), adminCaller, target.ID, rbac.RoleManager))
	role, err = store.RoleOf(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleManager, role)
}

func TestChangeRoleRejectsUnknownRole(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, &stubAudit{})

	target, err := svc.CreateUser(context.Background(), adminCaller, "x@harmoni.local", "X", "rahasia-123", rbac.RoleEmployee)
	require.NoError(t, err)

	err = svc.ChangeRole(context.Background(), adminCaller, target.ID, rbac.Role("SUPERVISOR"))
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestChangeRoleWritesAuditTrail(t *testing.T) {
	store := newStubStore()
	audit := &stubAudit{}
	svc := NewService(store, audit)

	target, err := svc.CreateUser(context.Background(), adminCaller, "y@harmoni.local", "Y", "rahasia-123", rbac.RoleEmployee)
	require.NoError(t, err)
	require.NoError(t, svc.ChangeRole(context.Background(), adminCaller, target.ID, rbac.RoleManager))

	require.Len(t, audit.logs, 2)
	entry := audit.logs[1]
	assert.Equal(t, "user.role_change", entry.Action)
	assert.Equal(t, "EMPLOYEE", entry.Meta["from"])
	assert.Equal(t, "MANAGER", entry.Meta["to"])

	// A no-op change writes nothing.
	require.NoError(t, svc.ChangeRole(context.Background(), adminCaller, target.ID, rbac.RoleManager))
	assert.Len(t, audit.logs, 2)
}
