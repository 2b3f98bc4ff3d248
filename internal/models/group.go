package models

// Group membership roles.
const (
	GroupRoleMember = "member"
	GroupRoleAdmin  = "admin"
)

// Group is a set of users who split bills together. Groups may nest via
// ParentGroupID. Deleting a group cascades to its memberships and bills: a
// group's financial history is meaningless without the group.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name, e.g. "Roommates".
	Name string

	// ParentGroupID is the optional enclosing group, empty for top-level groups.
	ParentGroupID string

	CreatedAt int64

	// Members is populated on reads that join the membership table.
	Members []GroupMember
}

// GroupMember pairs a user with a group. At most one membership exists per
// (group, user) pair.
type GroupMember struct {
	GroupID  string
	UserID   string
	Role     string
	JoinedAt int64
}
