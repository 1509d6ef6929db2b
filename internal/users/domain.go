// Package users manages operator accounts. Authentication itself happens
// upstream; this registry only stores the accounts and their roles.
package users

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/shared"
)

// Role orders the permission levels.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleViewer, RoleOperator, RoleAdmin:
		return true
	}
	return false
}

// User is one account. PasswordHash is a bcrypt hash and never leaves the
// service layer.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	FirstName    string
	LastName     string
	Role         Role
	Phone        string
	Department   string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName falls back to the username when no name is set.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// IsOperator reports whether the account can edit records.
func (u *User) IsOperator() bool {
	return u.Role == RoleOperator || u.Role == RoleAdmin
}

// ErrUserNotFound occurs when the account id or username is unknown.
var ErrUserNotFound = fmt.Errorf("users: user %w", shared.ErrNotFound)
