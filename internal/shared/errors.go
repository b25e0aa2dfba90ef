package shared

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indicates the target record does not exist. Distinct from
	// ErrForbidden: it is only ever surfaced to callers that already passed
	// the permission matrix, so it leaks no existence information to
	// unauthorized roles.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated indicates no valid caller identity is present.
	// Handlers turn it into a redirect to the login page, never into an
	// empty result.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates the caller is known but the permission matrix or
	// the self-scope guard denies the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// ConstraintName returns the name of the violated constraint when err is a
// Postgres error, or an empty string. Repositories use it to map unique and
// foreign-key violations to ErrDuplicate/ErrNotFound.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// UserSafeMessage maps an error to a message that can be shown in the UI
// without leaking record data or internals.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "Data tidak ditemukan"
	case errors.Is(err, ErrForbidden):
		return "Anda tidak memiliki akses untuk operasi ini"
	case errors.Is(err, ErrUnauthenticated):
		return "Silakan masuk terlebih dahulu"
	case errors.Is(err, ErrDuplicate):
		return "Data dengan identitas yang sama sudah ada"
	default:
		return "Terjadi kesalahan, silakan coba lagi"
	}
}
