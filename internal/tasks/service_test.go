package tasks

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
	tasks   map[int64]Task
	nextID  int64
	updates int
}

func newStubRepo() *stubRepo {
	return &stubRepo{tasks: map[int64]Task{}, nextID: 1}
}

func (s *stubRepo) List(_ context.Context, filters ListFilters) ([]Task, error) {
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filters.ProjectID > 0 && t.ProjectID != filters.ProjectID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *stubRepo) Get(_ context.Context, id int64) (Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, shared.ErrNotFound
	}
	return t, nil
}

func (s *stubRepo) Create(_ context.Context, t Task) (Task, error) {
	t.ID = s.nextID
	s.nextID++
	s.tasks[t.ID] = t
	return t, nil
}

func (s *stubRepo) Update(_ context.Context, id int64, t Task) error {
	if _, ok := s.tasks[id]; !ok {
		return shared.ErrNotFound
	}
	s.updates++
	t.ID = id
	s.tasks[id] = t
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id int64) error {
	if _, ok := s.tasks[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// stubResolver maps task id → owning user. Missing entries mean the task is
// unassigned.
type stubResolver struct {
	owners map[int64]int64
}

func (s stubResolver) EmployeeOwner(context.Context, int64) (int64, error) { return 0, nil }
func (s stubResolver) SalaryOwner(context.Context, int64) (int64, error)  { return 0, nil }
func (s stubResolver) TaskOwner(_ context.Context, taskID int64) (rbac.TaskOwnership, error) {
	owner, ok := s.owners[taskID]
	if !ok {
		return rbac.TaskOwnership{}, nil
	}
	return rbac.TaskOwnership{OwnerUserID: owner, Assigned: true}, nil
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, shared.AuditLog) error { return nil }

func seedTask(repo *stubRepo, assignee *int64) Task {
	t, _ := repo.Create(context.Background(), Task{
		ProjectID:   1,
		Title:       "Siapkan laporan bulanan",
		Description: "Rekap absensi dan lembur",
		Status:      StatusTodo,
		Priority:    PriorityHigh,
		AssignedTo:  assignee,
		DueDate:     time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	})
	return t
}

func TestEmployeeCanMoveOwnTask(t *testing.T) {
	repo := newStubRepo()
	employeeID := int64(10)
	task := seedTask(repo, &employeeID)
	svc := NewService(repo, stubResolver{owners: map[int64]int64{task.ID: 77}}, noopAudit{})
	caller := rbac.Identity{UserID: 77, Role: rbac.RoleEmployee}

	require.NoError(t, svc.UpdateStatus(context.Background(), caller, task.ID, StatusInProgress))
	got, err := repo.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got.Status)
}

func TestEmployeeForbiddenOnOthersTask(t *testing.T) {
	repo := newStubRepo()
	otherEmployee := int64(11)
	task := seedTask(repo, &otherEmployee)
	svc := NewService(repo, stubResolver{owners: map[int64]int64{task.ID: 88}}, noopAudit{})
	caller := rbac.Identity{UserID: 77, Role: rbac.RoleEmployee}

	err := svc.UpdateStatus(context.Background(), caller, task.ID, StatusDone)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Zero(t, repo.updates, "rejected update must not write")
}

func TestEmployeeForbiddenOnUnassignedTask(t *testing.T) {
	repo := newStubRepo()
	task := seedTask(repo, nil)
	svc := NewService(repo, stubResolver{owners: map[int64]int64{}}, noopAudit{})
	caller := rbac.Identity{UserID: 77, Role: rbac.RoleEmployee}

	err := svc.UpdateStatus(context.Background(), caller, task.ID, StatusDone)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestEmployeeUpdateIsNarrowedToStatus(t *testing.T) {
	repo := newStubRepo()
	employeeID := int64(10)
	task := seedTask(repo, &employeeID)
	svc := NewService(repo, stubResolver{owners: map[int64]int64{task.ID: 77}}, noopAudit{})
	caller := rbac.Identity{UserID: 77, Role: rbac.RoleEmployee}

	hijack := int64(99)
	err := svc.Update(context.Background(), caller, task.ID, UpdateInput{
		Title:      "Judul baru",
		ProjectID:  42,
		Status:     StatusDone,
		Priority:   PriorityLow,
		AssignedTo: &hijack,
	})
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status, "status is the one field EMPLOYEE may change")
	assert.Equal(t, task.Title, got.Title)
	assert.Equal(t, task.ProjectID, got.ProjectID)
	assert.Equal(t, task.Priority, got.Priority)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, employeeID, *got.AssignedTo)
}

func TestManagerUpdatesAllFields(t *testing.T) {
	repo := newStubRepo()
	task := seedTask(repo, nil)
	svc := NewService(repo, stubResolver{}, noopAudit{})
	caller := rbac.Identity{UserID: 1, Role: rbac.RoleManager}

	assignee := int64(5)
	err := svc.Update(context.Background(), caller, task.ID, UpdateInput{
		Title:      "Revisi laporan",
		ProjectID:  2,
		Status:     StatusInProgress,
		Priority:   PriorityLow,
		AssignedTo: &assignee,
	})
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Revisi laporan", got.Title)
	assert.EqualValues(t, 2, got.ProjectID)
	assert.Equal(t, PriorityLow, got.Priority)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, assignee, *got.AssignedTo)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	repo := newStubRepo()
	task := seedTask(repo, nil)
	svc := NewService(repo, stubResolver{}, noopAudit{})
	caller := rbac.Identity{UserID: 1, Role: rbac.RoleAdmin}

	err := svc.UpdateStatus(context.Background(), caller, task.ID, Status("archived"))
	assert.ErrorIs(t, err, errValidation)
	assert.Zero(t, repo.updates)
}

func TestEmployeeCannotCreateOrDelete(t *testing.T) {
	repo := newStubRepo()
	task := seedTask(repo, nil)
	svc := NewService(repo, stubResolver{}, noopAudit{})
	caller := rbac.Identity{UserID: 77, Role: rbac.RoleEmployee}

	_, err := svc.Create(context.Background(), caller, Task{ProjectID: 1, Title: "x"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(context.Background(), caller, task.ID), shared.ErrForbidden)
}

func TestBoardReadsAreUnscoped(t *testing.T) {
	repo := newStubRepo()
	otherEmployee := int64(11)
	seedTask(repo, &otherEmployee)
	svc := NewService(repo, stubResolver{}, noopAudit{})

	list, err := svc.List(context.Background(), rbac.Identity{UserID: 77, Role: rbac.RoleEmployee}, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, list, 1, "EMPLOYEE sees the whole board")
}
