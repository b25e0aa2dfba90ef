package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintName(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_employees_nik"}

	assert.Equal(t, "uq_employees_nik", ConstraintName(pgErr))
	assert.Equal(t, "uq_employees_nik", ConstraintName(fmt.Errorf("insert employee: %w", pgErr)),
		"wrapped driver errors should still resolve")
	assert.Empty(t, ConstraintName(errors.New("connection reset")))
	assert.Empty(t, ConstraintName(nil))
}

func TestUserSafeMessage(t *testing.T) {
	assert.Equal(t, "Data tidak ditemukan", UserSafeMessage(ErrNotFound))
	assert.Equal(t, "Anda tidak memiliki akses untuk operasi ini", UserSafeMessage(fmt.Errorf("update task: %w", ErrForbidden)))
	assert.Equal(t, "Data dengan identitas yang sama sudah ada", UserSafeMessage(ErrDuplicate))
	assert.Equal(t, "Terjadi kesalahan, silakan coba lagi", UserSafeMessage(errors.New("boom")))
}
