// Package aggregate derives the read views (day matrix, snapshot, monthly
// chart and home view) from stored results. Views are computed on read.
package aggregate

import (
	"context"
	"sort"
	"time"

	"resultboard/internal/server/catalog"
	"resultboard/internal/server/core"
	"resultboard/internal/server/storage"
	"resultboard/internal/server/timeslot"
)

// EndOfDay is the slot used for whole-day snapshots (23:59)
const EndOfDay = timeslot.MinutesPerDay - 1

// Engine builds result views
type Engine struct {
	store         *storage.Store
	catalog       *catalog.Catalog
	now           func() time.Time
	offsetMinutes int
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the clock used to pick the home view date
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithHomeOffset sets the UTC offset, in minutes, of the home view's "today"
func WithHomeOffset(minutes int) Option {
	return func(e *Engine) { e.offsetMinutes = minutes }
}

// New creates an engine reading results from store and games from cat
func New(store *storage.Store, cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		catalog:       cat,
		now:           time.Now,
		offsetMinutes: timeslot.DefaultHomeOffsetMinutes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func gameIndex(games []core.Game) ([]string, []string, map[string]string) {
	ids := make([]string, len(games))
	codes := make([]string, len(games))
	codeByID := make(map[string]string, len(games))
	for i, g := range games {
		ids[i] = g.ID
		codes[i] = g.Code
		codeByID[g.ID] = g.Code
	}
	return ids, codes, codeByID
}

func placeholderValues(codes []string) map[string]string {
	values := make(map[string]string, len(codes))
	for _, code := range codes {
		values[code] = core.Placeholder
	}
	return values
}

// DayMatrix groups the date's results by slot. Every row carries every
// requested game, with the placeholder where a game has no observation.
func (e *Engine) DayMatrix(ctx context.Context, dateStr string, games []core.Game) (core.DayMatrix, error) {
	if _, err := timeslot.ParseDate(dateStr); err != nil {
		return core.DayMatrix{}, err
	}

	ids, codes, codeByID := gameIndex(games)
	results, err := e.store.FindResultsByDate(ctx, dateStr, ids)
	if err != nil {
		return core.DayMatrix{}, err
	}

	return core.DayMatrix{
		DateStr: dateStr,
		Games:   codes,
		Rows:    buildRows(results, codes, codeByID),
		Items:   buildItems(results, games),
	}, nil
}

func buildRows(results []core.Result, codes []string, codeByID map[string]string) []core.MatrixRow {
	bySlot := map[int]map[string]string{}
	for _, r := range results {
		code, ok := codeByID[r.GameID]
		if !ok {
			continue
		}
		values, ok := bySlot[r.SlotMin]
		if !ok {
			values = placeholderValues(codes)
			bySlot[r.SlotMin] = values
		}
		values[code] = r.Value
	}

	slots := make([]int, 0, len(bySlot))
	for slot := range bySlot {
		slots = append(slots, slot)
	}
	sort.Ints(slots)

	rows := make([]core.MatrixRow, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, core.MatrixRow{
			Time:    timeslot.ToDisplay(slot),
			SlotMin: slot,
			Values:  bySlot[slot],
		})
	}
	return rows
}

// buildItems picks each game's latest result of the day; results are slot ordered
func buildItems(results []core.Result, games []core.Game) []core.DayItem {
	latest := make(map[string]core.Result, len(games))
	for _, r := range results {
		latest[r.GameID] = r
	}

	items := make([]core.DayItem, 0, len(games))
	for _, g := range games {
		r, ok := latest[g.ID]
		if !ok {
			items = append(items, core.DayItem{GameCode: g.Code, Time: g.DefaultTime})
			continue
		}
		id := r.ID
		items = append(items, core.DayItem{
			ID:       &id,
			GameCode: g.Code,
			Time:     timeslot.ToDisplay(r.SlotMin),
			Value:    r.Value,
		})
	}
	return items
}

// Snapshot returns, per game, the value of the latest result at or before
// timeText on the date
func (e *Engine) Snapshot(ctx context.Context, dateStr, timeText string, games []core.Game) (map[string]string, error) {
	if _, err := timeslot.ParseDate(dateStr); err != nil {
		return nil, err
	}
	slot, err := timeslot.ToMinutes(timeText)
	if err != nil {
		return nil, err
	}
	return e.snapshotAt(ctx, dateStr, slot, games)
}

func (e *Engine) snapshotAt(ctx context.Context, dateStr string, slot int, games []core.Game) (map[string]string, error) {
	ids, codes, codeByID := gameIndex(games)
	results, err := e.store.FindLatestAtOrBefore(ctx, dateStr, ids, slot)
	if err != nil {
		return nil, err
	}

	values := placeholderValues(codes)
	for _, r := range results {
		if code, ok := codeByID[r.GameID]; ok {
			values[code] = r.Value
		}
	}
	return values, nil
}

// MonthlyChart returns one row per day of the month with each game's
// latest value of that day
func (e *Engine) MonthlyChart(ctx context.Context, year, month int, games []core.Game) (core.MonthlyChart, error) {
	if month < 1 || month > 12 {
		return core.MonthlyChart{}, core.NewValidationError("month", "must be between 1 and 12")
	}

	dates := timeslot.MonthDates(year, month)
	ids, codes, codeByID := gameIndex(games)
	results, err := e.store.FindLatestPerDay(ctx, dates, ids)
	if err != nil {
		return core.MonthlyChart{}, err
	}

	byDate := make(map[string]map[string]string, len(dates))
	for _, d := range dates {
		byDate[d] = placeholderValues(codes)
	}
	for _, r := range results {
		code, ok := codeByID[r.GameID]
		if !ok {
			continue
		}
		if values, ok := byDate[r.DateStr]; ok {
			values[code] = r.Value
		}
	}

	rows := make([]core.MonthlyRow, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, core.MonthlyRow{DateStr: d, Values: byDate[d]})
	}

	return core.MonthlyChart{Year: year, Month: month, Games: codes, Rows: rows}, nil
}
