package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuthProvider represents an OAuth provider.
type AuthProvider string

const (
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderGitHub AuthProvider = "github"
)

// Gender of a user profile.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Genders lists accepted genders in declaration order.
var Genders = []Gender{GenderMale, GenderFemale}

// UserRole grants access to management endpoints.
type UserRole string

const (
	UserRoleUser    UserRole = "USER"
	UserRoleManager UserRole = "MANAGER"
	UserRoleRoot    UserRole = "ROOT"
)

// UserRoles lists accepted roles in declaration order.
var UserRoles = []UserRole{UserRoleUser, UserRoleManager, UserRoleRoot}

// CanManageUsers reports whether the role may create and edit other accounts.
func (r UserRole) CanManageUsers() bool {
	return r == UserRoleManager || r == UserRoleRoot
}

// User represents an account. Soft-deleted users have DeletedAt set.
type User struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Email           string     `json:"email" db:"email"`
	Bio             *string    `json:"bio" db:"bio"`
	Username        string     `json:"username" db:"username"`
	PasswordHash    string     `json:"-" db:"password"`
	Telephone       *string    `json:"telephone" db:"telephone"`
	Verified        bool       `json:"verified" db:"verified"`
	VerifiedBy      *uuid.UUID `json:"-" db:"verified_by"`
	Activated       bool       `json:"activated" db:"activated"`
	Gender          Gender     `json:"gender" db:"gender"`
	Role            UserRole   `json:"userRole" db:"role"`
	ProfileImageURL *string    `json:"profileImageUrl" db:"profile_image_url"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt       *time.Time `json:"-" db:"deleted_at"`
}

// CanEdit reports whether u may modify the account identified by target.
func (u *User) CanEdit(target uuid.UUID) bool {
	return u.ID == target || u.Role.CanManageUsers()
}

// ProfileImage is an uploaded avatar.
type ProfileImage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	URL       string    `json:"imageUrl" db:"image_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Token is a single-use confirmation or password reset token.
type Token struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Used      bool      `db:"used"`
	CreatedAt time.Time `db:"created_at"`
	ExpireAt  time.Time `db:"expire_at"`
}

// Expired reports whether the token can no longer be consumed at now.
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpireAt)
}
