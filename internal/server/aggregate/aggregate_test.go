package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"resultboard/internal/server/catalog"
	"resultboard/internal/server/core"
	"resultboard/internal/server/storage"

	"github.com/google/uuid"
)

type fixture struct {
	store   *storage.Store
	catalog *catalog.Catalog
	engine  *Engine
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "agg.db"), false)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.InitDB(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	cat := catalog.New(store)
	return &fixture{store: store, catalog: cat, engine: New(store, cat, opts...)}
}

func (f *fixture) game(t *testing.T, code string, idx int) core.Game {
	t.Helper()
	g, err := f.catalog.Create(context.Background(), catalog.NewGame{Name: code, Code: code, OrderIndex: idx, DefaultTime: "3:40 PM"})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func (f *fixture) result(t *testing.T, g core.Game, date string, slot int, value string) {
	t.Helper()
	now := time.Now().UTC()
	_, err := f.store.UpsertResult(context.Background(), core.Result{
		ID: uuid.NewString(), GameID: g.ID, DateStr: date, SlotMin: slot,
		Value: value, Source: core.SourceManual, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestDayMatrixRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.game(t, "A", 1)
	b := f.game(t, "B", 2)

	f.result(t, a, "2025-08-01", 940, "23")
	f.result(t, b, "2025-08-01", 940, "11")
	f.result(t, b, "2025-08-01", 600, "07")
	f.result(t, a, "2025-08-02", 600, "99")

	m, err := f.engine.DayMatrix(ctx, "2025-08-01", []core.Game{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Rows) != 2 {
		t.Fatalf("rows = %d, want 2 distinct slots", len(m.Rows))
	}
	if m.Rows[0].SlotMin != 600 || m.Rows[0].Time != "10:00 AM" {
		t.Errorf("first row = %+v", m.Rows[0])
	}
	if m.Rows[0].Values["A"] != core.Placeholder || m.Rows[0].Values["B"] != "07" {
		t.Errorf("first row values = %v", m.Rows[0].Values)
	}
	for _, row := range m.Rows {
		if len(row.Values) != 2 {
			t.Errorf("row %d missing codes: %v", row.SlotMin, row.Values)
		}
	}

	if len(m.Items) != 2 || m.Items[0].ID == nil || m.Items[0].Value != "23" || m.Items[0].Time != "3:40 PM" {
		t.Errorf("items = %+v", m.Items)
	}
	if m.Items[1].Value != "11" {
		t.Errorf("B latest = %+v", m.Items[1])
	}
}

func TestDayMatrixItemsDefault(t *testing.T) {
	f := newFixture(t)
	a := f.game(t, "A", 1)

	m, err := f.engine.DayMatrix(context.Background(), "2025-08-01", []core.Game{a})
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Rows) != 0 {
		t.Errorf("rows = %+v", m.Rows)
	}
	item := m.Items[0]
	if item.ID != nil || item.Value != "" || item.Time != "3:40 PM" {
		t.Errorf("default item = %+v", item)
	}
}

func TestSnapshotScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.game(t, "A", 1)
	f.result(t, a, "2025-08-01", 940, "23")

	late, err := f.engine.Snapshot(ctx, "2025-08-01", "23:59", []core.Game{a})
	if err != nil {
		t.Fatal(err)
	}
	if late["A"] != "23" {
		t.Errorf("23:59 snapshot = %v", late)
	}

	early, err := f.engine.Snapshot(ctx, "2025-08-01", "10:00 AM", []core.Game{a})
	if err != nil {
		t.Fatal(err)
	}
	if early["A"] != core.Placeholder {
		t.Errorf("10:00 snapshot = %v", early)
	}

	if _, err := f.engine.Snapshot(ctx, "2025-08-01", "13:00 PM", []core.Game{a}); !errors.Is(err, core.ErrInvalidTimeFormat) {
		t.Errorf("bad time err = %v", err)
	}
}

func TestEndOfDaySnapshotMatchesMonthly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.game(t, "A", 1)
	b := f.game(t, "B", 2)
	games := []core.Game{a, b}

	f.result(t, a, "2024-02-10", 100, "01")
	f.result(t, a, "2024-02-10", 1300, "02")
	f.result(t, b, "2024-02-10", 50, "03")

	snap, err := f.engine.Snapshot(ctx, "2024-02-10", "23:59", games)
	if err != nil {
		t.Fatal(err)
	}
	chart, err := f.engine.MonthlyChart(ctx, 2024, 2, games)
	if err != nil {
		t.Fatal(err)
	}
	row := chart.Rows[9]
	if row.DateStr != "2024-02-10" {
		t.Fatalf("row 9 is %s", row.DateStr)
	}
	for code, v := range snap {
		if row.Values[code] != v {
			t.Errorf("%s: snapshot %q, monthly %q", code, v, row.Values[code])
		}
	}
}

func TestMonthlyChartLength(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.game(t, "A", 1)

	leap, err := f.engine.MonthlyChart(ctx, 2024, 2, []core.Game{a})
	if err != nil {
		t.Fatal(err)
	}
	if len(leap.Rows) != 29 {
		t.Errorf("2024-02 rows = %d", len(leap.Rows))
	}
	common, err := f.engine.MonthlyChart(ctx, 2023, 2, []core.Game{a})
	if err != nil {
		t.Fatal(err)
	}
	if len(common.Rows) != 28 {
		t.Errorf("2023-02 rows = %d", len(common.Rows))
	}
}

func TestMonthlyRowJSONIsFlat(t *testing.T) {
	row := core.MonthlyRow{DateStr: "2024-02-01", Values: map[string]string{"A": "12", "B": core.Placeholder}}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatal(err)
	}
	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatal(err)
	}
	if flat["dateStr"] != "2024-02-01" || flat["A"] != "12" || flat["B"] != "XX" {
		t.Errorf("flat row = %v", flat)
	}
}

func TestHomeViewCrossesYear(t *testing.T) {
	// 2025-01-01 02:00 at +05:30 is still 2024-12-31 in UTC
	clock := func() time.Time { return time.Date(2024, 12, 31, 20, 30, 0, 0, time.UTC) }
	f := newFixture(t, WithClock(clock))
	ctx := context.Background()
	a := f.game(t, "A", 1)
	f.result(t, a, "2024-12-31", 940, "55")
	f.result(t, a, "2025-01-01", 60, "XX")

	view, err := f.engine.Home(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if view.DateStr != "2025-01-01" {
		t.Errorf("home date = %s", view.DateStr)
	}
	if view.Snapshot.Yesterday["A"] != "55" {
		t.Errorf("yesterday snapshot = %v", view.Snapshot.Yesterday)
	}
	if got := view.LatestTime.Yesterday["A"]; got == nil || *got != 940 {
		t.Errorf("yesterday latest time = %v", got)
	}
	if got := view.LatestTime.Today["A"]; got != nil {
		t.Errorf("placeholder counted as observation: %v", *got)
	}
	if len(view.Timewise.Today) != 1 {
		t.Errorf("today rows = %+v", view.Timewise.Today)
	}
	if view.Monthly.Year != 2025 || view.Monthly.Month != 1 || len(view.Monthly.Rows) != 31 {
		t.Errorf("monthly = %d-%d with %d rows", view.Monthly.Year, view.Monthly.Month, len(view.Monthly.Rows))
	}
}

func TestHomeViewEmptyCatalog(t *testing.T) {
	f := newFixture(t)

	view, err := f.engine.Home(context.Background(), "2025-08-01")
	if err != nil {
		t.Fatal(err)
	}
	if view.Games == nil || len(view.Games) != 0 {
		t.Errorf("games = %v", view.Games)
	}
	if view.Timewise.Today == nil || len(view.Snapshot.Today) != 0 || len(view.LatestTime.Today) != 0 {
		t.Errorf("unexpected view %+v", view)
	}

	data, err := json.Marshal(view)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if games, ok := decoded["games"].([]any); !ok || len(games) != 0 {
		t.Errorf("games encoded as %v", decoded["games"])
	}
}

func TestHomeViewRejectsBadDate(t *testing.T) {
	f := newFixture(t)
	if _, err := f.engine.Home(context.Background(), "2025-02-30"); !core.IsValidation(err) {
		t.Errorf("err = %v", err)
	}
}
