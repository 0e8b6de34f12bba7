package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cambria/academy/core"
)

type Role string

// Roles
const (
	RoleStudent        Role = "STUDENT"
	RoleInstructor     Role = "INSTRUCTOR"
	RoleHeadInstructor Role = "HEAD_INSTRUCTOR"
	RoleAdmin          Role = "ADMIN"
)

var (
	AllRoles   = []Role{RoleStudent, RoleInstructor, RoleHeadInstructor, RoleAdmin}
	StaffRoles = []Role{RoleInstructor, RoleHeadInstructor, RoleAdmin}
)

func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) IsStaff() bool {
	for _, role := range StaffRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	ClassGroup string    `json:"class_group"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// DisplayName is the name shown to other users: the name, or the email when unnamed.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func (u User) IsStudent() bool { return u.Role == RoleStudent }
func (u User) IsStaff() bool   { return u.Role.IsStaff() }
func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }

// UpsertUser contains the information needed to create or update a User by email.
type UpsertUser struct {
	Name       string `json:"name"`
	Email      string `json:"email" validate:"required,email"`
	Role       Role   `json:"role" validate:"required,role"`
	ClassGroup string `json:"class_group"`
	IsActive   *bool  `json:"is_active"`
}

func (uu *UpsertUser) Validate(validate *validator.Validate) error {
	uu.Name = core.CleanString(uu.Name)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.ClassGroup = core.CleanString(uu.ClassGroup)
	return validate.Struct(uu)
}

// QueryFilter applies AND between its set fields; a nil/empty field does not filter.
type QueryFilter struct {
	IDs         []string
	Roles       []Role
	ClassGroups []string
	ActiveOnly  bool
}

type GetFilter struct {
	ID    string
	Email string
}
