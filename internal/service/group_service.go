package service

import (
	"context"
	"log/slog"

	"github.com/tabsplit/tabsplit/internal/errs"
	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/storage"
)

// GroupService handles group lifecycle and memberships.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a group and, when creatorID is set, enrolls the creator
// as a group admin.
func (s *GroupService) CreateGroup(ctx context.Context, name, parentGroupID, creatorID string) (*models.Group, error) {
	if name == "" {
		return nil, errs.Validationf("group name is required")
	}
	if parentGroupID != "" {
		if _, err := s.store.GetGroup(ctx, parentGroupID); err != nil {
			return nil, err
		}
	}

	group := &models.Group{Name: name, ParentGroupID: parentGroupID}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	if creatorID != "" {
		member := &models.GroupMember{
			GroupID: group.ID,
			UserID:  creatorID,
			Role:    models.GroupRoleAdmin,
		}
		if err := s.store.AddGroupMember(ctx, member); err != nil {
			return nil, err
		}
		group.Members = append(group.Members, *member)
	}

	slog.Info("group created", "group_id", group.ID, "name", name)
	return group, nil
}

// GetGroup returns a group with its members.
func (s *GroupService) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	return s.store.GetGroup(ctx, id)
}

// ListGroups returns all groups with their members.
func (s *GroupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.store.ListGroups(ctx)
}

// UpdateGroup renames and/or re-parents a group. A nil pointer leaves the
// field unchanged; an empty parent id clears the parent.
func (s *GroupService) UpdateGroup(ctx context.Context, id string, name, parentGroupID *string) error {
	if name != nil && *name == "" {
		return errs.Validationf("group name cannot be empty")
	}
	if parentGroupID != nil && *parentGroupID != "" {
		if *parentGroupID == id {
			return errs.Validationf("group cannot be its own parent")
		}
		if _, err := s.store.GetGroup(ctx, *parentGroupID); err != nil {
			return err
		}
	}
	return s.store.UpdateGroup(ctx, id, name, parentGroupID)
}

// DeleteGroup removes a group with its memberships and bills.
func (s *GroupService) DeleteGroup(ctx context.Context, id string) error {
	if err := s.store.DeleteGroup(ctx, id); err != nil {
		return err
	}
	slog.Info("group deleted", "group_id", id)
	return nil
}

// AddMember enrolls a user in a group. Both must exist; duplicates are
// rejected by the store.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID, role string) error {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return err
	}
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return err
	}
	if role == "" {
		role = models.GroupRoleMember
	}
	if role != models.GroupRoleMember && role != models.GroupRoleAdmin {
		return errs.Validationf("unknown group role %q", role)
	}

	member := &models.GroupMember{GroupID: groupID, UserID: userID, Role: role}
	return s.store.AddGroupMember(ctx, member)
}

// RemoveMember drops a user's membership in a group.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID string) error {
	return s.store.RemoveGroupMember(ctx, groupID, userID)
}
