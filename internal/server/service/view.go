package service

import (
	"context"

	"resultboard/internal/server/catalog"
	"resultboard/internal/server/core"
)

// Catalog exposes the game catalog
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Timewise returns the day matrix of the active games
func (s *Service) Timewise(ctx context.Context, dateStr string) (core.DayMatrix, error) {
	games, err := s.catalog.Active(ctx, nil)
	if err != nil {
		return core.DayMatrix{}, err
	}
	return s.engine.DayMatrix(ctx, dateStr, games)
}

// Snapshot returns the point-in-time values of the active games
func (s *Service) Snapshot(ctx context.Context, dateStr, timeText string) (core.SnapshotView, error) {
	games, err := s.catalog.Active(ctx, nil)
	if err != nil {
		return core.SnapshotView{}, err
	}
	values, err := s.engine.Snapshot(ctx, dateStr, timeText, games)
	if err != nil {
		return core.SnapshotView{}, err
	}
	return core.SnapshotView{DateStr: dateStr, Time: timeText, Values: values}, nil
}

// Monthly returns the monthly chart, limited to codes when given
func (s *Service) Monthly(ctx context.Context, year, month int, codes []string) (core.MonthlyChart, error) {
	games, err := s.catalog.Active(ctx, codes)
	if err != nil {
		return core.MonthlyChart{}, err
	}
	return s.engine.MonthlyChart(ctx, year, month, games)
}

// Home returns the composite landing view
func (s *Service) Home(ctx context.Context, dateStr string) (core.HomeView, error) {
	return s.engine.Home(ctx, dateStr)
}
