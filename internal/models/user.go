package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. SystemAdmin is reserved for operational tooling; group-level
// permissions live on GroupMember, not here.
const (
	RoleMember      = "member"
	RoleAdmin       = "admin"
	RoleSystemAdmin = "system_admin"
)

// User represents a registered account.
//
// Users are soft-deleted: deactivation stamps DeletedAt and clears IsActive,
// the row stays so that historic assignments keep resolving. Hard deletion is
// a separate, irreversible store operation.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the display handle shown in balances and group listings.
	Username string

	// Email is the login identifier, unique across live users.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// DefaultGroupID optionally points at the group the UI opens first.
	// Empty when the user has not picked one.
	DefaultGroupID string

	// Role is one of RoleMember, RoleAdmin, RoleSystemAdmin.
	Role string

	// IsActive is cleared on deactivation; inactive users cannot log in.
	IsActive bool

	// DeletedAt is the soft-delete stamp, zero while the user is live.
	DeletedAt int64

	CreatedAt int64
	UpdatedAt int64
}

// NewUser builds a live member-role user with a fresh ID and timestamps.
func NewUser(username, email, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleMember,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
