package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmoni-hris/harmoni-hris/internal/shared"
)

type stubRoles struct {
	roles map[int64]Role
}

func (s *stubRoles) RoleOf(ctx context.Context, userID int64) (Role, error) {
	role, ok := s.roles[userID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return role, nil
}

func requestWithUser(t *testing.T, userID string) *http.Request {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sm := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/employees", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	if userID != "" {
		sess.SetUser(userID)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestAuthenticateRedirectsAnonymous(t *testing.T) {
	mw := Middleware{Roles: &stubRoles{}}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run without a user")
	})

	res := httptest.NewRecorder()
	mw.Authenticate(next).ServeHTTP(res, requestWithUser(t, ""))

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/auth/login", res.Header().Get("Location"))
}

func TestAuthenticateResolvesIdentity(t *testing.T) {
	mw := Middleware{Roles: &stubRoles{roles: map[int64]Role{7: RoleManager}}}

	var got Identity
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = IdentityFromContext(r.Context())
	})

	res := httptest.NewRecorder()
	mw.Authenticate(next).ServeHTTP(res, requestWithUser(t, "7"))

	require.True(t, found)
	assert.Equal(t, Identity{UserID: 7, Role: RoleManager}, got)
}

func TestAuthenticateRedirectsWhenRoleLookupFails(t *testing.T) {
	mw := Middleware{Roles: &stubRoles{}}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run when the role cannot be resolved")
	})

	res := httptest.NewRecorder()
	mw.Authenticate(next).ServeHTTP(res, requestWithUser(t, "99"))

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/auth/login", res.Header().Get("Location"))
}

func TestRequireEnforcesMatrix(t *testing.T) {
	cases := []struct {
		name     string
		role     Role
		resource Resource
		action   Action
		want     int
	}{
		{"admin creates employee", RoleAdmin, ResourceEmployees, ActionCreate, http.StatusOK},
		{"manager creates project", RoleManager, ResourceProjects, ActionCreate, http.StatusOK},
		{"employee reads salaries", RoleEmployee, ResourceSalaries, ActionRead, http.StatusOK},
		{"employee creates employee", RoleEmployee, ResourceEmployees, ActionCreate, http.StatusForbidden},
		{"manager deletes salary", RoleManager, ResourceSalaries, ActionDelete, http.StatusForbidden},
		{"manager creates user", RoleManager, ResourceUsers, ActionCreate, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mw := Middleware{}
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/x", nil)
			req = req.WithContext(ContextWithIdentity(req.Context(), Identity{UserID: 1, Role: tc.role}))
			res := httptest.NewRecorder()
			mw.Require(tc.resource, tc.action)(next).ServeHTTP(res, req)

			assert.Equal(t, tc.want, res.Code)
		})
	}
}

func TestRequireRedirectsWithoutIdentity(t *testing.T) {
	mw := Middleware{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run without identity")
	})

	req := httptest.NewRequest(http.MethodGet, "/employees", nil)
	res := httptest.NewRecorder()
	mw.Require(ResourceEmployees, ActionRead)(next).ServeHTTP(res, req)

	assert.Equal(t, http.StatusSeeOther, res.Code)
}

func TestRequireFailsClosedOnUnknownRole(t *testing.T) {
	mw := Middleware{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run for an unknown role")
	})

	req := httptest.NewRequest(http.MethodGet, "/employees", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(), Identity{UserID: 1, Role: Role("SUPERVISOR")}))
	res := httptest.NewRecorder()
	mw.Require(ResourceEmployees, ActionRead)(next).ServeHTTP(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
}
