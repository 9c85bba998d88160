package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"resultboard/internal/server/catalog"
	"resultboard/internal/server/core"
	"resultboard/internal/server/timeslot"

	"github.com/google/uuid"
)

const maxValueLength = 4

// ResultInput is a result write with its slot already resolved
type ResultInput struct {
	GameCode string
	DateStr  string
	SlotMin  int
	Value    string
	Note     string
	Source   string
}

// RecordResult parses the human time of req and upserts a manual result
func (s *Service) RecordResult(ctx context.Context, req core.ResultRequest) (core.Result, error) {
	slot, err := timeslot.ToMinutes(req.Time)
	if err != nil {
		return core.Result{}, err
	}
	return s.UpsertResult(ctx, ResultInput{
		GameCode: req.GameCode,
		DateStr:  req.DateStr,
		SlotMin:  slot,
		Value:    req.Value,
		Note:     req.Note,
		Source:   core.SourceManual,
	})
}

// UpsertResult stores a result for an active game, overwriting any result
// already on the same (game, date, slot)
func (s *Service) UpsertResult(ctx context.Context, in ResultInput) (core.Result, error) {
	if _, err := timeslot.ParseDate(in.DateStr); err != nil {
		return core.Result{}, err
	}
	if !timeslot.ValidSlot(in.SlotMin) {
		return core.Result{}, core.NewValidationError("time", "slot %d outside the day", in.SlotMin)
	}
	value := strings.TrimSpace(in.Value)
	if value == "" || utf8.RuneCountInString(value) > maxValueLength {
		return core.Result{}, core.NewValidationError("value", "must be 1 to %d characters", maxValueLength)
	}

	g, err := s.catalog.Get(ctx, catalog.NormalizeCode(in.GameCode))
	if err != nil {
		return core.Result{}, err
	}
	if !g.Active {
		return core.Result{}, core.NewValidationError("gameCode", "game %s is inactive", g.Code)
	}

	source := in.Source
	if source == "" {
		source = core.SourceManual
	}

	now := s.now().UTC()
	stored, err := s.store.UpsertResult(ctx, core.Result{
		ID:        uuid.NewString(),
		GameID:    g.ID,
		DateStr:   in.DateStr,
		SlotMin:   in.SlotMin,
		Value:     value,
		Note:      strings.TrimSpace(in.Note),
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return core.Result{}, err
	}

	if s.onUpsert != nil {
		s.onUpsert(source)
	}
	return stored, nil
}

// DeleteResult removes a result by id and returns the removed id
func (s *Service) DeleteResult(ctx context.Context, id string) (string, error) {
	removed, err := s.store.DeleteResult(ctx, id)
	if err != nil {
		return "", err
	}
	return removed.ID, nil
}

// GetResult returns a stored result
func (s *Service) GetResult(ctx context.Context, id string) (core.Result, error) {
	return s.store.GetResult(ctx, id)
}
