package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"resultboard/internal/server/core"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"), false)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.InitDB(); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertGame(t *testing.T, s *Store, code string, idx int) core.Game {
	t.Helper()
	now := time.Now().UTC()
	g := core.Game{
		ID: uuid.NewString(), Code: code, Name: code + " name",
		OrderIndex: idx, Active: true, CreatedAt: now, UpdatedAt: now,
	}
	if err := s.InsertGame(context.Background(), g); err != nil {
		t.Fatalf("InsertGame %s: %v", code, err)
	}
	return g
}

func upsert(t *testing.T, s *Store, gameID, date string, slot int, value string) core.Result {
	t.Helper()
	now := time.Now().UTC()
	r, err := s.UpsertResult(context.Background(), core.Result{
		ID: uuid.NewString(), GameID: gameID, DateStr: date, SlotMin: slot,
		Value: value, Source: core.SourceManual, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("UpsertResult: %v", err)
	}
	return r
}

func TestInitDBIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.InitDB(); err != nil {
		t.Fatalf("second InitDB: %v", err)
	}
	v, err := s.SchemaVersion()
	if err != nil {
		t.Fatal(err)
	}
	if v != 1 {
		t.Errorf("schema version = %d, want 1", v)
	}
}

func TestGameCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := insertGame(t, s, "DSWR", 1)
	insertGame(t, s, "FRBD", 2)

	dup := g
	dup.ID = uuid.NewString()
	if err := s.InsertGame(ctx, dup); !errors.Is(err, core.ErrDuplicateCode) {
		t.Fatalf("duplicate insert err = %v", err)
	}

	got, err := s.GetGameByCode(ctx, "DSWR")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != g.ID || !got.Active {
		t.Errorf("unexpected game %+v", got)
	}

	got.Name = "Desawar"
	got.UpdatedAt = time.Now().UTC()
	if err := s.UpdateGame(ctx, got); err != nil {
		t.Fatal(err)
	}

	id, err := s.DeleteGameByCode(ctx, "DSWR")
	if err != nil || id != g.ID {
		t.Fatalf("delete = %q, %v", id, err)
	}
	if _, err := s.GetGameByCode(ctx, "DSWR"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get after delete err = %v", err)
	}
	if _, err := s.DeleteGameByCode(ctx, "DSWR"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestShiftOrderIndexes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := insertGame(t, s, "A", 1)
	insertGame(t, s, "B", 2)
	insertGame(t, s, "C", 3)

	n, err := s.ShiftOrderIndexes(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("shifted %d rows, want 2", n)
	}

	games, _ := s.ListGames(ctx)
	want := map[string]int{"A": 1, "B": 3, "C": 4}
	for _, g := range games {
		if g.OrderIndex != want[g.Code] {
			t.Errorf("%s at %d, want %d", g.Code, g.OrderIndex, want[g.Code])
		}
	}

	taken, _ := s.OrderIndexTaken(ctx, 1, a.ID)
	if taken {
		t.Error("index 1 should not count the excluded game")
	}
	taken, _ = s.OrderIndexTaken(ctx, 1, "")
	if !taken {
		t.Error("index 1 should be taken")
	}
	if max, _ := s.MaxOrderIndex(ctx); max != 4 {
		t.Errorf("max = %d", max)
	}
}

func TestUpsertResultOverwritesTriple(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	g := insertGame(t, s, "A", 1)

	first := upsert(t, s, g.ID, "2025-08-01", 940, "23")
	second := upsert(t, s, g.ID, "2025-08-01", 940, "45")

	if second.ID != first.ID {
		t.Errorf("upsert changed id %s -> %s", first.ID, second.ID)
	}
	if second.Value != "45" {
		t.Errorf("value = %q", second.Value)
	}

	rows, err := s.FindResultsByDate(ctx, "2025-08-01", []string{g.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
}

func TestUpsertResultKeepsInsertSource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	g := insertGame(t, s, "A", 1)

	now := time.Now().UTC()
	bulk, err := s.UpsertResult(ctx, core.Result{
		ID: uuid.NewString(), GameID: g.ID, DateStr: "2025-08-01", SlotMin: 940,
		Value: "12", Source: core.SourceBulkMatrix, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatal(err)
	}

	corrected := upsert(t, s, g.ID, "2025-08-01", 940, "21")
	if corrected.ID != bulk.ID || corrected.Value != "21" {
		t.Errorf("corrected = %+v", corrected)
	}
	if corrected.Source != core.SourceBulkMatrix {
		t.Errorf("source = %q, want %q", corrected.Source, core.SourceBulkMatrix)
	}
}

func TestLatestQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := insertGame(t, s, "A", 1)
	b := insertGame(t, s, "B", 2)

	upsert(t, s, a.ID, "2025-08-01", 600, "11")
	upsert(t, s, a.ID, "2025-08-01", 940, "22")
	upsert(t, s, b.ID, "2025-08-01", 1000, "33")
	upsert(t, s, a.ID, "2025-08-02", 100, "44")

	at, err := s.FindLatestAtOrBefore(ctx, "2025-08-01", []string{a.ID, b.ID}, 950)
	if err != nil {
		t.Fatal(err)
	}
	if len(at) != 1 || at[0].Value != "22" {
		t.Errorf("latest at 950 = %+v", at)
	}

	perDay, err := s.FindLatestPerDay(ctx, []string{"2025-08-01", "2025-08-02"}, []string{a.ID, b.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(perDay) != 3 {
		t.Fatalf("got %d per-day rows, want 3", len(perDay))
	}

	empty, err := s.FindLatestPerDay(ctx, []string{"2025-08-01"}, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty game list = %v, %v", empty, err)
	}
}

func TestDeleteGameKeepsResults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	g := insertGame(t, s, "A", 1)
	r := upsert(t, s, g.ID, "2025-08-01", 940, "23")

	if _, err := s.DeleteGameByCode(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetResult(ctx, r.ID)
	if err != nil {
		t.Fatalf("orphaned result lost: %v", err)
	}
	if got.Value != "23" {
		t.Errorf("value = %q", got.Value)
	}

	removed, err := s.DeleteResult(ctx, r.ID)
	if err != nil || removed.ID != r.ID {
		t.Fatalf("DeleteResult = %+v, %v", removed, err)
	}
	if _, err := s.DeleteResult(ctx, r.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestUserAndSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first, err := s.CreateUser(ctx, UserRecord{UserID: uuid.NewString(), Username: "alice", PasswordHash: "x", CreatedAt: now})
	if err != nil {
		t.Fatal(err)
	}
	if first.Role != core.RoleAdmin {
		t.Errorf("first user role = %s", first.Role)
	}
	second, err := s.CreateUser(ctx, UserRecord{UserID: uuid.NewString(), Username: "bob", PasswordHash: "x", CreatedAt: now})
	if err != nil {
		t.Fatal(err)
	}
	if second.Role != core.RoleViewer {
		t.Errorf("second user role = %s", second.Role)
	}
	if _, err := s.CreateUser(ctx, UserRecord{UserID: uuid.NewString(), Username: "ALICE", PasswordHash: "x", CreatedAt: now}); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate username err = %v", err)
	}

	sid := uuid.NewString()
	if err := s.CreateSession(ctx, SessionRecord{SessionID: sid, UserID: first.UserID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.IsSessionValid(ctx, sid); !ok {
		t.Error("session should be valid")
	}
	if err := s.DeleteSession(ctx, sid); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.IsSessionValid(ctx, sid); ok {
		t.Error("session should be gone")
	}
}

func TestRoleChangeRevokesSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	u, err := s.CreateUser(ctx, UserRecord{UserID: uuid.NewString(), Username: "alice", PasswordHash: "x", CreatedAt: now})
	if err != nil {
		t.Fatal(err)
	}
	sid := uuid.NewString()
	if err := s.CreateSession(ctx, SessionRecord{SessionID: sid, UserID: u.UserID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateUserRole(ctx, u.UserID, core.RoleViewer); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.IsSessionValid(ctx, sid); ok {
		t.Error("session survived role change")
	}
	got, err := s.GetUserByID(ctx, u.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Role != core.RoleViewer {
		t.Errorf("role = %s", got.Role)
	}

	if err := s.UpdateUserRole(ctx, uuid.NewString(), core.RoleAdmin); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown user err = %v", err)
	}
}

func TestPingMarksHealth(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !s.IsHealthy() {
		t.Error("expected healthy store")
	}
	s.Close()
	if err := s.Ping(context.Background()); !errors.Is(err, core.ErrStoreUnavailable) {
		t.Errorf("ping after close err = %v", err)
	}
	if s.IsHealthy() {
		t.Error("expected degraded store")
	}
}
