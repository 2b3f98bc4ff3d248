package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/tabsplit/tabsplit/internal/errs"
	"github.com/tabsplit/tabsplit/internal/models"
)

// CreateGroup persists a new group, assigning an ID when absent.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO groups (id, name, parent_group_id, created_at) VALUES (?, ?, ?, ?)`,
		group.ID, group.Name, nullableString(group.ParentGroupID), group.CreatedAt,
	)
	if err != nil {
		return errs.Storage("create group", err)
	}
	return nil
}

// GetGroup retrieves a group with its memberships.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	var parentGroupID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, parent_group_id, created_at FROM groups WHERE id = ?`, id,
	).Scan(&group.ID, &group.Name, &parentGroupID, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("group", id)
	}
	if err != nil {
		return nil, errs.Storage("get group", err)
	}
	group.ParentGroupID = parentGroupID.String

	members, err := s.listMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return &group, nil
}

// ListGroups returns all groups with their memberships, ordered by name.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, parent_group_id, created_at FROM groups ORDER BY name, id`)
	if err != nil {
		return nil, errs.Storage("list groups", err)
	}
	defer rows.Close()

	var groups []*models.Group
	index := make(map[string]*models.Group)
	for rows.Next() {
		var group models.Group
		var parentGroupID sql.NullString
		if err := rows.Scan(&group.ID, &group.Name, &parentGroupID, &group.CreatedAt); err != nil {
			return nil, errs.Storage("list groups", err)
		}
		group.ParentGroupID = parentGroupID.String
		groups = append(groups, &group)
		index[group.ID] = &group
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("list groups", err)
	}

	// One membership query for all groups instead of one per group.
	memberRows, err := s.db.QueryContext(ctx,
		`SELECT group_id, user_id, role, joined_at FROM group_members ORDER BY joined_at, user_id`)
	if err != nil {
		return nil, errs.Storage("list groups", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var m models.GroupMember
		if err := memberRows.Scan(&m.GroupID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, errs.Storage("list groups", err)
		}
		if group, ok := index[m.GroupID]; ok {
			group.Members = append(group.Members, m)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, errs.Storage("list groups", err)
	}
	return groups, nil
}

// UpdateGroup renames and/or re-parents a group; nil leaves a field as is.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, id string, name, parentGroupID *string) error {
	if name == nil && parentGroupID == nil {
		return nil
	}

	set := ""
	var args []any
	if name != nil {
		set = "name = ?"
		args = append(args, *name)
	}
	if parentGroupID != nil {
		if set != "" {
			set += ", "
		}
		set += "parent_group_id = ?"
		args = append(args, nullableString(*parentGroupID))
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, `UPDATE groups SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return errs.Storage("update group", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errs.Storage("update group", err)
	}
	if affected == 0 {
		return errs.NotFound("group", id)
	}
	return nil
}

// DeleteGroup removes a group, cascading memberships and bills.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return errs.Storage("delete group", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errs.Storage("delete group", err)
	}
	if affected == 0 {
		return errs.NotFound("group", id)
	}
	return nil
}

// AddGroupMember inserts a membership; the (group, user) primary key rejects
// duplicates.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, member *models.GroupMember) error {
	if member.Role == "" {
		member.Role = models.GroupRoleMember
	}
	if member.JoinedAt == 0 {
		member.JoinedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
		member.GroupID, member.UserID, member.Role, member.JoinedAt,
	)
	if err != nil {
		return errs.Storage("add group member", err)
	}
	return nil
}

// RemoveGroupMember deletes the (group, user) membership if present.
func (s *SQLiteStore) RemoveGroupMember(ctx context.Context, groupID, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`, groupID, userID)
	if err != nil {
		return errs.Storage("remove group member", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errs.Storage("remove group member", err)
	}
	if affected == 0 {
		return errs.NotFound("group member", userID)
	}
	return nil
}

// ListUserMemberships returns the user's memberships in join order.
func (s *SQLiteStore) ListUserMemberships(ctx context.Context, userID string) ([]models.GroupMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, user_id, role, joined_at FROM group_members WHERE user_id = ? ORDER BY joined_at, group_id`,
		userID)
	if err != nil {
		return nil, errs.Storage("list memberships", err)
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, errs.Storage("list memberships", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("list memberships", err)
	}
	return members, nil
}

// CountMemberships returns how many of userIDs hold a membership in the group.
func (s *SQLiteStore) CountMemberships(ctx context.Context, groupID string, userIDs []string) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	query := `SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id IN (` + placeholders(len(userIDs)) + `)`
	args := make([]any, 0, len(userIDs)+1)
	args = append(args, groupID)
	for _, id := range userIDs {
		args = append(args, id)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, errs.Storage("count memberships", err)
	}
	return count, nil
}

func (s *SQLiteStore) listMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, user_id, role, joined_at FROM group_members WHERE group_id = ? ORDER BY joined_at, user_id`,
		groupID)
	if err != nil {
		return nil, errs.Storage("list group members", err)
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, errs.Storage("list group members", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("list group members", err)
	}
	return members, nil
}
