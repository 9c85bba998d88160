package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resultboard/internal/server/core"
	"resultboard/internal/server/logging"
	"resultboard/internal/server/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
)

// ErrInvalidCredentials hides which half of a login was wrong
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrSessionRevoked is returned for a well-formed token whose session is gone
var ErrSessionRevoked = errors.New("session revoked")

// User represents a registered user account
type User struct {
	UserID    string
	Username  string
	Email     string
	Role      string
	CreatedAt time.Time
}

func userFromRecord(r *storage.UserRecord) *User {
	return &User{
		UserID:    r.UserID,
		Username:  r.Username,
		Email:     r.Email,
		Role:      r.Role,
		CreatedAt: r.CreatedAt,
	}
}

// CreateUser hashes the password and stores a new account. The first
// account becomes admin.
func (s *Service) CreateUser(ctx context.Context, username, email, password string) (*User, error) {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	record, err := s.store.CreateUser(ctx, storage.UserRecord{
		UserID:       uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	logging.Info(s.logger, "user registered", logging.FieldUserID, record.UserID, logging.FieldRole, record.Role)
	return userFromRecord(record), nil
}

// AuthenticateUser verifies credentials; identifier is a username or an email
func (s *Service) AuthenticateUser(ctx context.Context, identifier, password string) (*User, error) {
	var record *storage.UserRecord
	var err error

	if strings.Contains(identifier, "@") {
		record, err = s.store.GetUserByEmail(ctx, identifier)
	} else {
		record, err = s.store.GetUserByUsername(ctx, identifier)
	}

	if err != nil {
		if errors.Is(err, core.ErrStoreUnavailable) {
			return nil, err
		}
		// Hash anyway so unknown users cost the same time
		auth.HashPassword(password)
		return nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(password, record.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return userFromRecord(record), nil
}

// UpdateLastLogin updates the last login timestamp for a user
func (s *Service) UpdateLastLogin(ctx context.Context, userID string) error {
	return s.store.UpdateUserLastLogin(ctx, userID, s.now().UTC())
}

// GetUserByID retrieves user information by user ID
func (s *Service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	record, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return userFromRecord(record), nil
}

// GenerateUserToken opens a session for the user, replacing any previous
// one, and returns a token bound to it
func (s *Service) GenerateUserToken(ctx context.Context, userID string) (string, time.Time, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.now().UTC()
	session := storage.SessionRecord{
		SessionID: uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return "", time.Time{}, err
	}

	claims := map[string]any{
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
		"sid":      session.SessionID,
	}

	token, err := auth.GenerateHS256Token(s.jwtSecret, userID, claims, SessionTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, session.ExpiresAt, nil
}

// ValidateToken verifies the token signature and that its session is live
func (s *Service) ValidateToken(token string) (string, map[string]any, error) {
	userID, claims, err := auth.ValidateHS256Token(s.jwtSecret, token)
	if err != nil {
		return "", nil, err
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", nil, ErrSessionRevoked
	}
	ok, err := s.store.IsSessionValid(context.Background(), sid)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, ErrSessionRevoked
	}
	return userID, claims, nil
}

// Logout ends the session carried in claims
func (s *Service) Logout(ctx context.Context, claims map[string]any) error {
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, sid)
}
