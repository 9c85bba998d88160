package aggregate

import (
	"context"

	"resultboard/internal/server/core"
	"resultboard/internal/server/timeslot"
)

// isPlaceholder reports values that do not count as an observation
func isPlaceholder(v string) bool {
	return v == core.Placeholder || v == "--"
}

// Home assembles the landing view for dateStr, or for today in the home
// offset when dateStr is empty
func (e *Engine) Home(ctx context.Context, dateStr string) (core.HomeView, error) {
	if dateStr == "" {
		dateStr = timeslot.Today(e.now(), e.offsetMinutes)
	}
	day, err := timeslot.ParseDate(dateStr)
	if err != nil {
		return core.HomeView{}, err
	}
	yesterday, err := timeslot.PreviousDay(dateStr)
	if err != nil {
		return core.HomeView{}, err
	}

	games, err := e.catalog.Active(ctx, nil)
	if err != nil {
		return core.HomeView{}, err
	}

	view := core.HomeView{DateStr: dateStr, Games: games}

	todayMatrix, err := e.DayMatrix(ctx, dateStr, games)
	if err != nil {
		return core.HomeView{}, err
	}
	yesterdayMatrix, err := e.DayMatrix(ctx, yesterday, games)
	if err != nil {
		return core.HomeView{}, err
	}
	view.Timewise.Today = todayMatrix.Rows
	view.Timewise.Yesterday = yesterdayMatrix.Rows
	view.LatestTime.Today = latestTimes(todayMatrix.Rows, games)
	view.LatestTime.Yesterday = latestTimes(yesterdayMatrix.Rows, games)

	if view.Snapshot.Today, err = e.snapshotAt(ctx, dateStr, EndOfDay, games); err != nil {
		return core.HomeView{}, err
	}
	if view.Snapshot.Yesterday, err = e.snapshotAt(ctx, yesterday, EndOfDay, games); err != nil {
		return core.HomeView{}, err
	}

	if view.Monthly, err = e.MonthlyChart(ctx, day.Year(), int(day.Month()), games); err != nil {
		return core.HomeView{}, err
	}

	return view, nil
}

// latestTimes maps each game to the slot of its last real observation, nil if none
func latestTimes(rows []core.MatrixRow, games []core.Game) map[string]*int {
	latest := make(map[string]*int, len(games))
	for _, g := range games {
		latest[g.Code] = nil
	}
	for _, row := range rows {
		for code, v := range row.Values {
			if isPlaceholder(v) {
				continue
			}
			slot := row.SlotMin
			latest[code] = &slot
		}
	}
	return latest
}
