package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tabsplit/tabsplit/internal/errs"
	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/storage"
)

const userColumns = `id, username, email, password_hash, default_group_id, role, is_active, deleted_at, created_at, updated_at`

// CreateUser persists a new user, assigning an ID when absent.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}
	if user.UpdatedAt == 0 {
		user.UpdatedAt = now
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		nullableString(user.DefaultGroupID), user.Role, user.IsActive,
		nullableTime(user.DeletedAt), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return errs.Storage("create user", fmt.Errorf("failed to insert user: %w", err))
	}
	return nil
}

// GetUserByID retrieves a live user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? AND deleted_at IS NULL`
	return s.getUser(ctx, query, id, id)
}

// GetUserByEmail retrieves a live user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? AND deleted_at IS NULL`
	return s.getUser(ctx, query, email, email)
}

func (s *SQLiteStore) getUser(ctx context.Context, query, arg, ident string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("user", ident)
	}
	if err != nil {
		return nil, errs.Storage("get user", err)
	}
	return user, nil
}

// ListUsers returns all live users ordered by username.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NULL ORDER BY username, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errs.Storage("list users", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, errs.Storage("list users", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("list users", err)
	}
	return users, nil
}

// UpdateUser applies the non-nil fields of update and bumps updated_at.
func (s *SQLiteStore) UpdateUser(ctx context.Context, id string, update storage.UserUpdate) error {
	set := "updated_at = ?"
	args := []any{time.Now().Unix()}

	if update.Username != nil {
		set += ", username = ?"
		args = append(args, *update.Username)
	}
	if update.Email != nil {
		set += ", email = ?"
		args = append(args, *update.Email)
	}
	if update.PasswordHash != nil {
		set += ", password_hash = ?"
		args = append(args, *update.PasswordHash)
	}
	if update.DefaultGroupID != nil {
		set += ", default_group_id = ?"
		args = append(args, nullableString(*update.DefaultGroupID))
	}
	if update.Role != nil {
		set += ", role = ?"
		args = append(args, *update.Role)
	}
	if update.IsActive != nil {
		set += ", is_active = ?"
		args = append(args, *update.IsActive)
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, `UPDATE users SET `+set+` WHERE id = ? AND deleted_at IS NULL`, args...)
	if err != nil {
		return errs.Storage("update user", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errs.Storage("update user", err)
	}
	if affected == 0 {
		return errs.NotFound("user", id)
	}
	return nil
}

// SoftDeleteUser stamps deleted_at and clears is_active. The row stays so
// historic assignments keep resolving.
func (s *SQLiteStore) SoftDeleteUser(ctx context.Context, id string) error {
	now := time.Now().Unix()
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET deleted_at = ?, is_active = 0, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id,
	)
	if err != nil {
		return errs.Storage("soft delete user", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errs.Storage("soft delete user", err)
	}
	if affected == 0 {
		return errs.NotFound("user", id)
	}
	return nil
}

// HardDeleteUser irreversibly removes the user row, cascading memberships and
// assignments.
func (s *SQLiteStore) HardDeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return errs.Storage("hard delete user", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errs.Storage("hard delete user", err)
	}
	if affected == 0 {
		return errs.NotFound("user", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var defaultGroupID sql.NullString
	var deletedAt sql.NullInt64
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&defaultGroupID, &user.Role, &user.IsActive,
		&deletedAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.DefaultGroupID = defaultGroupID.String
	user.DeletedAt = deletedAt.Int64
	return &user, nil
}
