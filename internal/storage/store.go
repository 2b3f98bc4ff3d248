// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/tabsplit/tabsplit/internal/models"
)

// UserUpdate carries the optional fields of a user update; nil pointers leave
// the corresponding column untouched.
type UserUpdate struct {
	Username       *string
	Email          *string
	PasswordHash   *string
	DefaultGroupID *string
	Role           *string
	IsActive       *bool
}

// Store defines the interface for entity persistence. The abstraction keeps
// the service layer independent of the backing database so tests can run
// against a throwaway store.
//
// Mutating bill operations are atomic: either every row of a bill (header,
// items, assignments) lands, or none do.
type Store interface {
	// CreateUser persists a new user. The email must be unique among live users.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a live (non-soft-deleted) user.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail retrieves a live user by email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// ListUsers returns all live users.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// UpdateUser applies the non-nil fields of update to the user.
	UpdateUser(ctx context.Context, id string, update UserUpdate) error

	// SoftDeleteUser stamps the user deleted and clears the active flag.
	// The row remains so historic assignments keep resolving.
	SoftDeleteUser(ctx context.Context, id string) error

	// HardDeleteUser irreversibly removes the user row.
	HardDeleteUser(ctx context.Context, id string) error

	// CreateGroup persists a new group, assigning its ID.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its memberships.
	GetGroup(ctx context.Context, id string) (*models.Group, error)

	// ListGroups returns all groups with their memberships.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// UpdateGroup renames and/or re-parents a group; nil leaves a field as is.
	UpdateGroup(ctx context.Context, id string, name, parentGroupID *string) error

	// DeleteGroup removes a group, cascading memberships and bills.
	DeleteGroup(ctx context.Context, id string) error

	// AddGroupMember inserts a membership; at most one exists per (group, user).
	AddGroupMember(ctx context.Context, member *models.GroupMember) error

	// RemoveGroupMember deletes the (group, user) membership if present.
	RemoveGroupMember(ctx context.Context, groupID, userID string) error

	// ListUserMemberships returns the user's memberships in join order.
	ListUserMemberships(ctx context.Context, userID string) ([]models.GroupMember, error)

	// CountMemberships returns how many of userIDs hold a membership in the
	// group, in a single set query rather than per-user round trips. A result short
	// of len(userIDs) means at least one non-member.
	CountMemberships(ctx context.Context, groupID string, userIDs []string) (int, error)

	// CreateBill persists a bill with its items and assignments in one
	// transaction, assigning all IDs.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// ReplaceBill updates the bill header and replaces the full item list
	// (old items and their assignments deleted, new ones inserted) in one
	// transaction. Returns NotFoundError if the bill does not exist.
	ReplaceBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill with items and assignments.
	GetBill(ctx context.Context, id string) (*models.Bill, error)

	// ListBillsByGroup returns the group's bills, newest first, each with
	// items and assignments.
	ListBillsByGroup(ctx context.Context, groupID string) ([]*models.Bill, error)

	// DeleteBill removes a bill, cascading items and assignments.
	DeleteBill(ctx context.Context, id string) error

	// ListAssignmentRows returns every assignment joined to its item, bill
	// and group, for ledger aggregation.
	ListAssignmentRows(ctx context.Context) ([]models.AssignmentRow, error)

	// SettleAssignments stamps settledAt on every listed assignment that is
	// still unsettled and returns the number of rows transitioned. Unknown
	// and already-settled ids are skipped.
	SettleAssignments(ctx context.Context, ids []string, settledAt int64) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
