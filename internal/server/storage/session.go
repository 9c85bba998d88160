package storage

import (
	"context"
	"time"
)

// CreateSession creates or replaces the session for a user (single session per user)
func (s *Store) CreateSession(ctx context.Context, record SessionRecord) error {
	return s.WithinTx(ctx, func(tx *Store) error {
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, record.UserID); err != nil {
			return tx.unavailable("delete existing session", err)
		}

		insertQuery := `INSERT INTO sessions (session_id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`
		if _, err := tx.q.ExecContext(ctx, insertQuery,
			record.SessionID, record.UserID, record.CreatedAt, record.ExpiresAt,
		); err != nil {
			return tx.unavailable("create session", err)
		}
		return nil
	})
}

// DeleteSession removes a session
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return s.unavailable("delete session", err)
	}
	return nil
}

// DeleteUserSessions revokes every session of a user
func (s *Store) DeleteUserSessions(ctx context.Context, userID string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return s.unavailable("delete user sessions", err)
	}
	return nil
}

// DeleteExpiredSessions removes expired sessions
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := s.q.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, s.unavailable("delete expired sessions", err)
	}
	return result.RowsAffected()
}

// IsSessionValid checks if a session exists and is not expired
func (s *Store) IsSessionValid(ctx context.Context, sessionID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM sessions WHERE session_id = ? AND expires_at > ?`
	if err := s.q.QueryRowContext(ctx, query, sessionID, time.Now().UTC()).Scan(&count); err != nil {
		return false, s.unavailable("check session", err)
	}
	return count > 0, nil
}
