package projects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
)

type stubRepo struct {
	projects map[int64]Project
	nextID   int64
	calls    int
}

func newStubRepo() *stubRepo {
	return &stubRepo{projects: map[int64]Project{}, nextID: 1}
}

func (s *stubRepo) List(_ context.Context, _ ListFilters) ([]Project, int, error) {
	s.calls++
	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (s *stubRepo) Get(_ context.Context, id int64) (Project, error) {
	s.calls++
	p, ok := s.projects[id]
	if !ok {
		return Project{}, shared.ErrNotFound
	}
	return p, nil
}

func (s *stubRepo) Create(_ context.Context, p Project) (Project, error) {
	s.calls++
	p.ID = s.nextID
	s.nextID++
	s.projects[p.ID] = p
	return p, nil
}

func (s *stubRepo) Update(_ context.Context, id int64, p Project) error {
	s.calls++
	if _, ok := s.projects[id]; !ok {
		return shared.ErrNotFound
	}
	p.ID = id
	s.projects[id] = p
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id int64) error {
	s.calls++
	if _, ok := s.projects[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, shared.AuditLog) error { return nil }

func sampleProject() Project {
	return Project{Code: "PRJ-01", Name: "Implementasi HRIS", Status: StatusActive}
}

func TestManagerAndAdminCanManageProjects(t *testing.T) {
	for _, role := range []rbac.Role{rbac.RoleAdmin, rbac.RoleManager} {
		t.Run(string(role), func(t *testing.T) {
			repo := newStubRepo()
			svc := NewService(repo, noopAudit{})
			caller := rbac.Identity{UserID: 1, Role: role}

			created, err := svc.Create(context.Background(), caller, sampleProject())
			require.NoError(t, err)

			created.Status = StatusDone
			require.NoError(t, svc.Update(context.Background(), caller, created.ID, created))
			require.NoError(t, svc.Delete(context.Background(), caller, created.ID))
		})
	}
}

func TestEmployeeIsReadOnly(t *testing.T) {
	repo := newStubRepo()
	repo.projects[1] = sampleProject()
	svc := NewService(repo, noopAudit{})
	employee := rbac.Identity{UserID: 9, Role: rbac.RoleEmployee}

	list, _, err := svc.List(context.Background(), employee, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	mutations := repo.calls
	_, err = svc.Create(context.Background(), employee, sampleProject())
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.ErrorIs(t, svc.Update(context.Background(), employee, 1, sampleProject()), shared.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(context.Background(), employee, 1), shared.ErrForbidden)
	assert.Equal(t, mutations, repo.calls, "denied mutations must not reach storage")
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newStubRepo(), noopAudit{})
	caller := rbac.Identity{UserID: 1, Role: rbac.RoleManager}

	p := sampleProject()
	p.Status = Status("archived")
	_, err := svc.Create(context.Background(), caller, p)
	assert.ErrorIs(t, err, errValidation)
}

func TestCreateDefaultsToActive(t *testing.T) {
	svc := NewService(newStubRepo(), noopAudit{})
	caller := rbac.Identity{UserID: 1, Role: rbac.RoleManager}

	p := sampleProject()
	p.Status = ""
	created, err := svc.Create(context.Background(), caller, p)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, created.Status)
}
