package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"resultboard/internal/server/aggregate"
	"resultboard/internal/server/catalog"
	"resultboard/internal/server/core"
	"resultboard/internal/server/storage"
)

var testSecret = []byte("test-secret-minimum-32-characters-long")

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "svc.db"), false)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.InitDB(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	cat := catalog.New(store)
	return New(store, cat, aggregate.New(store, cat), testSecret, opts...)
}

func addGame(t *testing.T, s *Service, code string, active bool) {
	t.Helper()
	if _, err := s.Catalog().Create(context.Background(), catalog.NewGame{
		Name: code, Code: code, Active: &active,
	}); err != nil {
		t.Fatalf("create %s: %v", code, err)
	}
}

func TestRecordResultOverwritesSlot(t *testing.T) {
	var sources []string
	s := newTestService(t, WithUpsertHook(func(source string) { sources = append(sources, source) }))
	ctx := context.Background()
	addGame(t, s, "A", true)

	first, err := s.RecordResult(ctx, core.ResultRequest{GameCode: "a", DateStr: "2025-08-01", Time: "3:40 PM", Value: " 23 "})
	if err != nil {
		t.Fatal(err)
	}
	if first.SlotMin != 940 || first.Value != "23" {
		t.Errorf("first = %+v", first)
	}

	second, err := s.RecordResult(ctx, core.ResultRequest{GameCode: "A", DateStr: "2025-08-01", Time: "15:40", Value: "45"})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID || second.Value != "45" {
		t.Errorf("second = %+v, want overwrite of %s", second, first.ID)
	}
	if len(sources) != 2 || sources[0] != core.SourceManual {
		t.Errorf("hook sources = %v", sources)
	}
}

func TestUpsertResultRejects(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	addGame(t, s, "A", true)
	addGame(t, s, "OFF", false)

	tests := []struct {
		name string
		in   ResultInput
		want error
	}{
		{"bad date", ResultInput{GameCode: "A", DateStr: "2025-13-01", SlotMin: 600, Value: "1"}, nil},
		{"slot too large", ResultInput{GameCode: "A", DateStr: "2025-08-01", SlotMin: 1440, Value: "1"}, nil},
		{"empty value", ResultInput{GameCode: "A", DateStr: "2025-08-01", SlotMin: 600, Value: "  "}, nil},
		{"long value", ResultInput{GameCode: "A", DateStr: "2025-08-01", SlotMin: 600, Value: "12345"}, nil},
		{"inactive game", ResultInput{GameCode: "OFF", DateStr: "2025-08-01", SlotMin: 600, Value: "1"}, nil},
		{"unknown game", ResultInput{GameCode: "NOPE", DateStr: "2025-08-01", SlotMin: 600, Value: "1"}, core.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpsertResult(ctx, tt.in)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Errorf("err = %v, want %v", err, tt.want)
				}
				return
			}
			if !core.IsValidation(err) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestRecordResultBadTime(t *testing.T) {
	s := newTestService(t)
	addGame(t, s, "A", true)

	_, err := s.RecordResult(context.Background(), core.ResultRequest{GameCode: "A", DateStr: "2025-08-01", Time: "0:30 AM", Value: "1"})
	if !errors.Is(err, core.ErrInvalidTimeFormat) {
		t.Errorf("err = %v", err)
	}
}

func TestDeleteResult(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	addGame(t, s, "A", true)

	r, err := s.UpsertResult(ctx, ResultInput{GameCode: "A", DateStr: "2025-08-01", SlotMin: 0, Value: "9"})
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.DeleteResult(ctx, r.ID)
	if err != nil || id != r.ID {
		t.Fatalf("delete = %q, %v", id, err)
	}
	if _, err := s.GetResult(ctx, r.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get after delete err = %v", err)
	}
}

func TestTokenLifecycle(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	admin, err := s.CreateUser(ctx, "alice", "", "secret123")
	if err != nil {
		t.Fatal(err)
	}
	viewer, err := s.CreateUser(ctx, "bob", "bob@example.com", "secret123")
	if err != nil {
		t.Fatal(err)
	}
	if admin.Role != core.RoleAdmin || viewer.Role != core.RoleViewer {
		t.Fatalf("roles = %s, %s", admin.Role, viewer.Role)
	}

	if _, err := s.AuthenticateUser(ctx, "bob@example.com", "wrong1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := s.AuthenticateUser(ctx, "nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user err = %v", err)
	}
	if u, err := s.AuthenticateUser(ctx, "bob@example.com", "secret123"); err != nil || u.UserID != viewer.UserID {
		t.Fatalf("login = %+v, %v", u, err)
	}

	token, expiresAt, err := s.GenerateUserToken(ctx, admin.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(expiresAt) < SessionTTL-time.Minute {
		t.Errorf("expiresAt = %v", expiresAt)
	}

	userID, claims, err := s.ValidateToken(token)
	if err != nil || userID != admin.UserID || claims["role"] != core.RoleAdmin {
		t.Fatalf("validate = %q %v %v", userID, claims, err)
	}

	if err := s.Logout(ctx, claims); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.ValidateToken(token); err == nil {
		t.Error("token still valid after logout")
	}
}

func TestStorageHealth(t *testing.T) {
	s := newTestService(t)
	if got := s.GetStorageHealth(context.Background()); got != "ok" {
		t.Errorf("health = %q", got)
	}
	s.Shutdown()
	if got := s.GetStorageHealth(context.Background()); got != "degraded" {
		t.Errorf("health after shutdown = %q", got)
	}
}
