package salaries

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
	salaries map[int64]Salary
	// userEmployees maps user id → employee id
	userEmployees map[int64]int64
	nextID        int64
	mutations     int
}

func newStubRepo() *stubRepo {
	return &stubRepo{salaries: map[int64]Salary{}, userEmployees: map[int64]int64{}, nextID: 1}
}

func (s *stubRepo) List(_ context.Context, filters ListFilters) ([]Salary, int, error) {
	var out []Salary
	for _, sal := range s.salaries {
		if filters.EmployeeID > 0 && sal.EmployeeID != filters.EmployeeID {
			continue
		}
		out = append(out, sal)
	}
	return out, len(out), nil
}

func (s *stubRepo) ListForEmployee(_ context.Context, employeeID int64) ([]Salary, error) {
	var out []Salary
	for _, sal := range s.salaries {
		if sal.EmployeeID == employeeID {
			out = append(out, sal)
		}
	}
	return out, nil
}

func (s *stubRepo) Get(_ context.Context, id int64) (Salary, error) {
	sal, ok := s.salaries[id]
	if !ok {
		return Salary{}, shared.ErrNotFound
	}
	return sal, nil
}

func (s *stubRepo) Create(_ context.Context, sal Salary) (Salary, error) {
	s.mutations++
	sal.ID = s.nextID
	s.nextID++
	s.salaries[sal.ID] = sal
	return sal, nil
}

func (s *stubRepo) Update(_ context.Context, id int64, sal Salary) error {
	if _, ok := s.salaries[id]; !ok {
		return shared.ErrNotFound
	}
	s.mutations++
	sal.ID = id
	s.salaries[id] = sal
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id int64) error {
	if _, ok := s.salaries[id]; !ok {
		return shared.ErrNotFound
	}
	s.mutations++
	delete(s.salaries, id)
	return nil
}

func (s *stubRepo) EmployeeIDForUser(_ context.Context, userID int64) (int64, error) {
	employeeID, ok := s.userEmployees[userID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return employeeID, nil
}

// stubResolver maps salary/employee ids to owning users via the repo state.
type stubResolver struct {
	repo *stubRepo
}

func (s stubResolver) EmployeeOwner(_ context.Context, employeeID int64) (int64, error) {
	for userID, empID := range s.repo.userEmployees {
		if empID == employeeID {
			return userID, nil
		}
	}
	return 0, nil
}

func (s stubResolver) SalaryOwner(ctx context.Context, salaryID int64) (int64, error) {
	sal, ok := s.repo.salaries[salaryID]
	if !ok {
		return 0, rbac.ErrNotFound
	}
	return s.EmployeeOwner(ctx, sal.EmployeeID)
}

func (s stubResolver) TaskOwner(context.Context, int64) (rbac.TaskOwnership, error) {
	return rbac.TaskOwnership{}, nil
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, shared.AuditLog) error { return nil }

func newTestService() (*Service, *stubRepo) {
	repo := newStubRepo()
	return NewService(repo, stubResolver{repo: repo}, noopAudit{}), repo
}

func seedSalary(repo *stubRepo, employeeID int64, amount float64) Salary {
	sal, _ := repo.Create(context.Background(), Salary{
		EmployeeID:    employeeID,
		Amount:        amount,
		EffectiveDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	repo.mutations--
	return sal
}

func TestManagerCannotDeleteSalary(t *testing.T) {
	svc, repo := newTestService()
	sal := seedSalary(repo, 1, 9_000_000)

	err := svc.Delete(context.Background(), rbac.Identity{UserID: 2, Role: rbac.RoleManager}, sal.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Zero(t, repo.mutations, "denied delete must not reach storage")

	err = svc.Delete(context.Background(), rbac.Identity{UserID: 1, Role: rbac.RoleAdmin}, sal.ID)
	assert.NoError(t, err)
}

func TestManagerCanUpdateButNotCreate(t *testing.T) {
	svc, repo := newTestService()
	sal := seedSalary(repo, 1, 9_000_000)
	manager := rbac.Identity{UserID: 2, Role: rbac.RoleManager}

	sal.Amount = 9_500_000
	require.NoError(t, svc.Update(context.Background(), manager, sal.ID, sal))

	_, err := svc.Create(context.Background(), manager, Salary{
		EmployeeID:    1,
		Amount:        10_000_000,
		EffectiveDate: time.Now(),
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestEmployeeListIsScopedToOwnHistory(t *testing.T) {
	svc, repo := newTestService()
	repo.userEmployees[77] = 1
	seedSalary(repo, 1, 8_000_000)
	seedSalary(repo, 2, 12_000_000)

	list, total, err := svc.List(context.Background(), rbac.Identity{UserID: 77, Role: rbac.RoleEmployee}, ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.EqualValues(t, 1, list[0].EmployeeID)
}

func TestEmployeeWithoutRecordSeesEmptyHistory(t *testing.T) {
	svc, repo := newTestService()
	seedSalary(repo, 1, 8_000_000)

	list, total, err := svc.List(context.Background(), rbac.Identity{UserID: 99, Role: rbac.RoleEmployee}, ListFilters{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestEmployeeForbiddenOnOthersSalary(t *testing.T) {
	svc, repo := newTestService()
	repo.userEmployees[77] = 1
	repo.userEmployees[88] = 2
	own := seedSalary(repo, 1, 8_000_000)
	other := seedSalary(repo, 2, 12_000_000)
	caller := rbac.Identity{UserID: 77, Role: rbac.RoleEmployee}

	got, err := svc.Get(context.Background(), caller, own.ID)
	require.NoError(t, err)
	assert.Equal(t, own.ID, got.ID)

	_, err = svc.Get(context.Background(), caller, other.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.ListForEmployee(context.Background(), caller, 2)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestManagerReadsAreUnscoped(t *testing.T) {
	svc, repo := newTestService()
	seedSalary(repo, 1, 8_000_000)
	seedSalary(repo, 2, 12_000_000)

	list, total, err := svc.List(context.Background(), rbac.Identity{UserID: 2, Role: rbac.RoleManager}, ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 2)
}

func TestCreateValidatesAmount(t *testing.T) {
	svc, _ := newTestService()
	admin := rbac.Identity{UserID: 1, Role: rbac.RoleAdmin}

	_, err := svc.Create(context.Background(), admin, Salary{
		EmployeeID:    1,
		Amount:        0,
		EffectiveDate: time.Now(),
	})
	assert.ErrorIs(t, err, errValidation)
}
