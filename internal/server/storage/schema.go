package storage

import "time"

// UserRecord represents a user account in the database
type UserRecord struct {
	UserID       string     `db:"user_id"`
	Username     string     `db:"username"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Role         string     `db:"role"` // "admin" or "viewer"
	CreatedAt    time.Time  `db:"created_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
}

// SessionRecord represents an active user session
type SessionRecord struct {
	SessionID string    `db:"session_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

const gameColumns = `game_id, code, name, default_time, order_index, is_active, created_at, updated_at`

const resultColumns = `result_id, game_id, date_str, slot_min, value, note, source, created_at, updated_at`

const userColumns = `user_id, username, email, password_hash, role, created_at, last_login_at`
