package users

import (
	"time"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
)

// User represents a user account for management.
type User struct {
	ID        int64
	Email     string
	Name      string
	Role      rbac.Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
