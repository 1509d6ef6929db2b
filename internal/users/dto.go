package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/termene/termene/internal/shared"
)

type CreateUserRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=150"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	FirstName       string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName        string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Role            Role   `json:"role" validate:"required"`
	Phone           string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Department      string `json:"department,omitempty" validate:"omitempty,max=100"`
}

func (r CreateUserRequest) Validate() error {
	if !ValidRole(r.Role) {
		return shared.Validationf("role", "rol necunoscut")
	}
	if r.Password != r.PasswordConfirm {
		return shared.Validationf("password_confirm", "parolele nu coincid")
	}
	return nil
}

type UpdateUserRequest struct {
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Role       *Role   `json:"role,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Department *string `json:"department,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

type ChangePasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

func (r ChangePasswordRequest) Validate() error {
	if r.Password != r.PasswordConfirm {
		return shared.Validationf("password_confirm", "parolele nu coincid")
	}
	return nil
}

type UserView struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	FullName   string    `json:"full_name"`
	Role       Role      `json:"role"`
	Phone      string    `json:"phone,omitempty"`
	Department string    `json:"department,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewUserView(u *User) UserView {
	return UserView{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		FullName:   u.FullName(),
		Role:       u.Role,
		Phone:      u.Phone,
		Department: u.Department,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
