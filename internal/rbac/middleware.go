package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/harmoni-hris/harmoni-hris/internal/shared"
)

// RoleSource looks up the current role of a user. Implemented by the users
// repository; the role is fetched fresh on every request so an admin role
// change takes effect on the next request, never mid-session via stale state.
type RoleSource interface {
	RoleOf(ctx context.Context, userID int64) (Role, error)
}

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Roles  RoleSource
	Logger *slog.Logger
}

// Authenticate resolves the caller identity from the session and stores it in
// the request context. Requests without a logged-in user are redirected to the
// login page.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.currentUserID(r)
		if !ok {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		role, err := m.Roles.RoleOf(r.Context(), userID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("rbac resolve role", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		ctx := ContextWithIdentity(r.Context(), Identity{UserID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require enforces the permission matrix for a resource/action pair. It
// expects Authenticate to have run earlier in the chain.
func (m Middleware) Require(resource Resource, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := IdentityFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}
			granted, err := HasPermission(caller.Role, resource, action)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac require", slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if !granted {
				if m.Logger != nil {
					m.Logger.Warn("rbac denied",
						slog.Int64("user_id", caller.UserID),
						slog.String("role", string(caller.Role)),
						slog.String("resource", string(resource)),
						slog.String("action", string(action)),
						slog.String("path", r.URL.Path))
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("rbac parse user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}
