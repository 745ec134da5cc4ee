package user

import (
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleUser            Role = "user"
	RoleAdmin           Role = "admin"
	RoleSuperAdmin      Role = "super_admin"
	RoleEventManager    Role = "event_manager"
	RoleMealCoordinator Role = "meal_coordinator"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin, RoleEventManager, RoleMealCoordinator:
		return true
	default:
		return false
	}
}

// StaffRoles are every role the admin side of the app can carry.
var StaffRoles = []Role{RoleAdmin, RoleSuperAdmin, RoleEventManager, RoleMealCoordinator}

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never expose hash in JSON
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"isActive"`
	ResetToken   *string    `json:"-"` // reset material is as secret as the hash
	ResetExpires *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

var (
	ErrNotFound     = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")
	ErrResetInvalid = errors.New("reset token invalid or expired")
)

// NormalizeEmail is applied before every store lookup and write so the
// uniqueness guarantee is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=80"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// UpdateProfileRequest is a partial update; nil fields are left untouched.
type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2,max=80"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// UpdateProfileParams is the store-level shape of a partial update. The
// password travels only as a recomputed hash.
type UpdateProfileParams struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

type CreateAdminRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=80"`
	Email string `json:"email" binding:"required,email"`
	Role  Role   `json:"role" binding:"required,oneof=admin super_admin event_manager meal_coordinator"`
}
