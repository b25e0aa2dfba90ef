package employees

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
)

type stubRepo struct {
	employees map[int64]Employee
	nextID    int64
	calls     []string
}

func newStubRepo() *stubRepo {
	return &stubRepo{employees: map[int64]Employee{}, nextID: 1}
}

func (s *stubRepo) List(_ context.Context, _ ListFilters) ([]Employee, int, error) {
	s.calls = append(s.calls, "list")
	out := make([]Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (s *stubRepo) Get(_ context.Context, id int64) (Employee, error) {
	s.calls = append(s.calls, "get")
	e, ok := s.employees[id]
	if !ok {
		return Employee{}, shared.ErrNotFound
	}
	return e, nil
}

func (s *stubRepo) Create(_ context.Context, emp Employee) (Employee, error) {
	s.calls = append(s.calls, "create")
	emp.ID = s.nextID
	s.nextID++
	s.employees[emp.ID] = emp
	return emp, nil
}

func (s *stubRepo) Update(_ context.Context, id int64, emp Employee) error {
	s.calls = append(s.calls, "update")
	if _, ok := s.employees[id]; !ok {
		return shared.ErrNotFound
	}
	emp.ID = id
	s.employees[id] = emp
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id int64) error {
	s.calls = append(s.calls, "delete")
	if _, ok := s.employees[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.employees, id)
	return nil
}

type stubAudit struct {
	actions []string
}

func (s *stubAudit) Record(_ context.Context, log shared.AuditLog) error {
	s.actions = append(s.actions, log.Action)
	return nil
}

func validEmployee() Employee {
	return Employee{
		NIK:      "EMP-0001",
		Name:     "Dewi Lestari",
		Position: "HR Generalist",
		HireDate: time.Date(2023, 4, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateRequiresAdmin(t *testing.T) {
	for _, tc := range []struct {
		role    rbac.Role
		allowed bool
	}{
		{rbac.RoleAdmin, true},
		{rbac.RoleManager, false},
		{rbac.RoleEmployee, false},
	} {
		t.Run(string(tc.role), func(t *testing.T) {
			repo := newStubRepo()
			svc := NewService(repo, &stubAudit{})
			_, err := svc.Create(context.Background(), rbac.Identity{UserID: 1, Role: tc.role}, validEmployee())
			if tc.allowed {
				assert.NoError(t, err)
				assert.Contains(t, repo.calls, "create")
			} else {
				assert.ErrorIs(t, err, shared.ErrForbidden)
				assert.Empty(t, repo.calls, "storage must not be touched on deny")
			}
		})
	}
}

func TestAllRolesCanReadDirectory(t *testing.T) {
	repo := newStubRepo()
	repo.employees[7] = validEmployee()
	svc := NewService(repo, &stubAudit{})
	for _, role := range rbac.Roles() {
		list, total, err := svc.List(context.Background(), rbac.Identity{UserID: 2, Role: role}, ListFilters{})
		require.NoError(t, err, "role %s", role)
		assert.Equal(t, 1, total)
		assert.Len(t, list, 1)
	}
}

func TestDeleteDeniedForManagerAndEmployee(t *testing.T) {
	repo := newStubRepo()
	repo.employees[3] = validEmployee()
	svc := NewService(repo, &stubAudit{})

	err := svc.Delete(context.Background(), rbac.Identity{UserID: 5, Role: rbac.RoleManager}, 3)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	err = svc.Delete(context.Background(), rbac.Identity{UserID: 6, Role: rbac.RoleEmployee}, 3)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Empty(t, repo.calls)

	err = svc.Delete(context.Background(), rbac.Identity{UserID: 1, Role: rbac.RoleAdmin}, 3)
	assert.NoError(t, err)
	assert.Empty(t, repo.employees)
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	svc := NewService(newStubRepo(), &stubAudit{})
	admin := rbac.Identity{UserID: 1, Role: rbac.RoleAdmin}

	_, err := svc.Create(context.Background(), admin, Employee{Name: "Tanpa NIK", HireDate: time.Now()})
	assert.ErrorIs(t, err, errValidation)

	_, err = svc.Create(context.Background(), admin, Employee{NIK: "EMP-0002", HireDate: time.Now()})
	assert.ErrorIs(t, err, errValidation)

	_, err = svc.Create(context.Background(), admin, Employee{NIK: "EMP-0002", Name: "Tanpa Tanggal"})
	assert.ErrorIs(t, err, errValidation)
}

func TestMutationsWriteAuditTrail(t *testing.T) {
	repo := newStubRepo()
	audit := &stubAudit{}
	svc := NewService(repo, audit)
	admin := rbac.Identity{UserID: 1, Role: rbac.RoleAdmin}

	created, err := svc.Create(context.Background(), admin, validEmployee())
	require.NoError(t, err)
	require.NoError(t, svc.Update(context.Background(), admin, created.ID, validEmployee()))
	require.NoError(t, svc.Delete(context.Background(), admin, created.ID))

	assert.Equal(t, []string{"employee.create", "employee.update", "employee.delete"}, audit.actions)
}

func TestParseForm(t *testing.T) {
	emp, errs := ParseForm(EmployeeForm{
		NIK:      " EMP-0009 ",
		Name:     "Budi Santoso",
		HireDate: "2024-01-15",
		UserID:   "42",
	})
	require.Empty(t, errs)
	assert.Equal(t, "EMP-0009", emp.NIK)
	require.NotNil(t, emp.UserID)
	assert.EqualValues(t, 42, *emp.UserID)

	_, errs = ParseForm(EmployeeForm{Name: "Tanpa NIK", HireDate: "bukan-tanggal", UserID: "-1"})
	assert.Contains(t, errs, "NIK")
	assert.Contains(t, errs, "HireDate")
	assert.Contains(t, errs, "UserID")
}
