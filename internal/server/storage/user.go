package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resultboard/internal/server/core"
)

// ErrUserExists is returned when a username or email is already taken
var ErrUserExists = errors.New("username or email already exists")

func scanUser(row rowScanner) (*UserRecord, error) {
	var user UserRecord
	err := row.Scan(
		&user.UserID, &user.Username, &user.Email,
		&user.PasswordHash, &user.Role, &user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a user with transaction isolation. An empty Role
// becomes admin for the first account and viewer afterwards.
func (s *Store) CreateUser(ctx context.Context, record UserRecord) (*UserRecord, error) {
	err := s.WithinTx(ctx, func(tx *Store) error {
		exists, err := tx.userExists(ctx, record.Username, record.Email)
		if err != nil {
			return err
		}
		if exists {
			return ErrUserExists
		}

		if record.Role == "" {
			var count int
			if err := tx.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
				return tx.unavailable("count users", err)
			}
			record.Role = core.RoleViewer
			if count == 0 {
				record.Role = core.RoleAdmin
			}
		}

		query := `INSERT INTO users (user_id, username, email, password_hash, role, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`
		_, err = tx.q.ExecContext(ctx, query,
			record.UserID, record.Username, record.Email,
			record.PasswordHash, record.Role, record.CreatedAt,
		)
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		if err != nil {
			return tx.unavailable("insert user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// userExists verifies username/email uniqueness
func (s *Store) userExists(ctx context.Context, username, email string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE username = ? COLLATE NOCASE`
	args := []any{username}

	if email != "" {
		query = `SELECT COUNT(*) FROM users WHERE username = ? COLLATE NOCASE OR email = ? COLLATE NOCASE`
		args = append(args, email)
	}

	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, s.unavailable("check user", err)
	}
	return count > 0, nil
}

// DeleteUserByID removes a user; its session cascades
func (s *Store) DeleteUserByID(ctx context.Context, userID string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return s.unavailable("delete user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", userID, core.ErrNotFound)
	}
	return nil
}

// UpdateUserPassword updates user password hash
func (s *Store) UpdateUserPassword(ctx context.Context, userID string, passwordHash string) error {
	_, err := s.q.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE user_id = ?`, passwordHash, userID)
	if err != nil {
		return s.unavailable("update password", err)
	}
	return nil
}

// UpdateUserRole changes the role of a user and revokes its session
func (s *Store) UpdateUserRole(ctx context.Context, userID string, role string) error {
	return s.WithinTx(ctx, func(tx *Store) error {
		res, err := tx.q.ExecContext(ctx, `UPDATE users SET role = ? WHERE user_id = ?`, role, userID)
		if err != nil {
			return tx.unavailable("update role", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("user %s: %w", userID, core.ErrNotFound)
		}
		return tx.DeleteUserSessions(ctx, userID)
	})
}

// GetAllUsers retrieves all users, newest first
func (s *Store) GetAllUsers(ctx context.Context) ([]UserRecord, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, s.unavailable("list users", err)
	}
	defer rows.Close()

	var users []UserRecord
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, s.unavailable("scan user", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// UpdateUserLastLogin updates user last login time
func (s *Store) UpdateUserLastLogin(ctx context.Context, userID string, loginTime time.Time) error {
	_, err := s.q.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE user_id = ?`, loginTime, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login for user %s: %w", userID, err)
	}
	return nil
}

// GetUserByUsername retrieves user by username with case-insensitive matching
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*UserRecord, error) {
	return s.getUser(ctx, `WHERE username = ? COLLATE NOCASE`, username)
}

// GetUserByEmail retrieves user by email with case-insensitive matching
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return s.getUser(ctx, `WHERE email = ? COLLATE NOCASE AND email != ''`, email)
}

// GetUserByID retrieves user by unique user ID
func (s *Store) GetUserByID(ctx context.Context, userID string) (*UserRecord, error) {
	return s.getUser(ctx, `WHERE user_id = ?`, userID)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*UserRecord, error) {
	user, err := scanUser(s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, s.unavailable("get user", err)
	}
	return user, nil
}
