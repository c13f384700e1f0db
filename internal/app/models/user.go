package models

import (
	"time"
)

// Role is the fixed role tag of an identity
type Role string

const (
	RoleStudent          Role = "STUDENT"
	RoleParent           Role = "PARENT"
	RoleSchool           Role = "SCHOOL"
	RoleCorporatePartner Role = "CORPORATE_PARTNER"
	RoleAdmin            Role = "ADMIN"
)

// Roles lists every role in declaration order
var Roles = []Role{RoleStudent, RoleParent, RoleSchool, RoleCorporatePartner, RoleAdmin}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User is an identity record. Role never changes after creation.
type User struct {
	ID          int64     `json:"id" example:"1"`
	Email       string    `json:"email" validate:"required,email" example:"student@test.com"`
	Username    *string   `json:"username,omitempty" example:"student1"`
	Password    string    `json:"-"`
	FirstName   string    `json:"first_name" validate:"max=150" example:"Ada"`
	LastName    string    `json:"last_name" validate:"max=150" example:"Lovelace"`
	Role        Role      `json:"role" validate:"required,oneof=STUDENT PARENT SCHOOL CORPORATE_PARTNER ADMIN" example:"STUDENT"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	IsActive    bool      `json:"is_active"`
	IsVerified  bool      `json:"is_verified"`
	DateJoined  time.Time `json:"date_joined"`

	// ProfileID is the id of the role profile, resolved on read
	ProfileID *int64 `json:"profile_id"`
}

// IsAdmin reports whether the identity carries the universal override
func (u *User) IsAdmin() bool {
	return u.IsStaff || u.Role == RoleAdmin
}

// RefreshToken is an opaque refresh credential issued at login
type RefreshToken struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}
