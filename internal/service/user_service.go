package service

import (
	"context"
	"log/slog"

	"github.com/tabsplit/tabsplit/internal/auth"
	"github.com/tabsplit/tabsplit/internal/errs"
	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/storage"
)

// UserService handles account registration, login and user management.
type UserService struct {
	store         storage.Store
	authenticator auth.Authenticator
	tokens        *auth.JWTManager
}

// NewUserService creates a new UserService.
func NewUserService(store storage.Store, authenticator auth.Authenticator, tokens *auth.JWTManager) *UserService {
	return &UserService{store: store, authenticator: authenticator, tokens: tokens}
}

// Register creates an account and returns the user with a fresh session token.
func (s *UserService) Register(ctx context.Context, email, username, password string) (*models.User, string, error) {
	if email == "" || username == "" {
		return nil, "", errs.Validationf("email and username are required")
	}

	user, err := s.authenticator.Register(ctx, email, username, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("user registered", "user_id", user.ID, "email", email)
	return user, token, nil
}

// Login authenticates the credentials and returns the user with a session
// token.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// GetUser returns a live user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// ListUsers returns all live users.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx)
}

// UpdateUser applies the given partial update.
func (s *UserService) UpdateUser(ctx context.Context, id string, update storage.UserUpdate) error {
	if update.Email != nil && *update.Email == "" {
		return errs.Validationf("email cannot be empty")
	}
	if update.Username != nil && *update.Username == "" {
		return errs.Validationf("username cannot be empty")
	}
	if update.Role != nil {
		switch *update.Role {
		case models.RoleMember, models.RoleAdmin, models.RoleSystemAdmin:
		default:
			return errs.Validationf("unknown role %q", *update.Role)
		}
	}
	if update.DefaultGroupID != nil && *update.DefaultGroupID != "" {
		if _, err := s.store.GetGroup(ctx, *update.DefaultGroupID); err != nil {
			return err
		}
	}
	return s.store.UpdateUser(ctx, id, update)
}

// DeactivateUser soft-deletes the account. Historic assignments keep
// resolving; the user just disappears from listings and cannot log in.
func (s *UserService) DeactivateUser(ctx context.Context, id string) error {
	if err := s.store.SoftDeleteUser(ctx, id); err != nil {
		return err
	}
	slog.Info("user deactivated", "user_id", id)
	return nil
}

// HardDeleteUser irreversibly removes the account and its memberships and
// assignments.
func (s *UserService) HardDeleteUser(ctx context.Context, id string) error {
	if err := s.store.HardDeleteUser(ctx, id); err != nil {
		return err
	}
	slog.Warn("user hard-deleted", "user_id", id)
	return nil
}

// ActiveGroup resolves the group a client should open for the user: the
// default group when set and still joined, else the earliest membership.
func (s *UserService) ActiveGroup(ctx context.Context, userID string) (string, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}

	memberships, err := s.store.ListUserMemberships(ctx, userID)
	if err != nil {
		return "", err
	}

	if user.DefaultGroupID != "" {
		for _, m := range memberships {
			if m.GroupID == user.DefaultGroupID {
				return m.GroupID, nil
			}
		}
	}
	if len(memberships) > 0 {
		return memberships[0].GroupID, nil
	}
	return "", nil
}
