package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"resultboard/internal/server/core"
)

func scanResult(row rowScanner) (core.Result, error) {
	var r core.Result
	err := row.Scan(
		&r.ID, &r.GameID, &r.DateStr, &r.SlotMin,
		&r.Value, &r.Note, &r.Source, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func (s *Store) queryResults(ctx context.Context, op, query string, args ...any) ([]core.Result, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.unavailable(op, err)
	}
	defer rows.Close()

	results := []core.Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, s.unavailable(op, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.unavailable(op, err)
	}
	return results, nil
}

// UpsertResult inserts r or overwrites value and note of the row sharing
// its (game, date, slot) triple. The source recorded on insert is kept.
// The stored row is returned.
func (s *Store) UpsertResult(ctx context.Context, r core.Result) (core.Result, error) {
	var stored core.Result
	err := s.WithinTx(ctx, func(tx *Store) error {
		query := `INSERT INTO results (` + resultColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(game_id, date_str, slot_min) DO UPDATE SET
				value = excluded.value,
				note = excluded.note,
				updated_at = excluded.updated_at`

		if _, err := tx.q.ExecContext(ctx, query,
			r.ID, r.GameID, r.DateStr, r.SlotMin,
			r.Value, r.Note, r.Source, r.CreatedAt, r.UpdatedAt,
		); err != nil {
			return tx.unavailable("upsert result", err)
		}

		row := tx.q.QueryRowContext(ctx,
			`SELECT `+resultColumns+` FROM results WHERE game_id = ? AND date_str = ? AND slot_min = ?`,
			r.GameID, r.DateStr, r.SlotMin)
		var err error
		if stored, err = scanResult(row); err != nil {
			return tx.unavailable("read upserted result", err)
		}
		return nil
	})
	return stored, err
}

// GetResult looks up a result by id
func (s *Store) GetResult(ctx context.Context, id string) (core.Result, error) {
	r, err := scanResult(s.q.QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM results WHERE result_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Result{}, fmt.Errorf("result %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Result{}, s.unavailable("get result", err)
	}
	return r, nil
}

// DeleteResult removes a result by id and returns the removed row
func (s *Store) DeleteResult(ctx context.Context, id string) (core.Result, error) {
	var removed core.Result
	err := s.WithinTx(ctx, func(tx *Store) error {
		var err error
		if removed, err = tx.GetResult(ctx, id); err != nil {
			return err
		}
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM results WHERE result_id = ?`, id); err != nil {
			return tx.unavailable("delete result", err)
		}
		return nil
	})
	return removed, err
}

// FindResultsByDate returns every result of the date for the given games,
// ordered by slot. An empty game list yields no results.
func (s *Store) FindResultsByDate(ctx context.Context, dateStr string, gameIDs []string) ([]core.Result, error) {
	if len(gameIDs) == 0 {
		return []core.Result{}, nil
	}

	query := `SELECT ` + resultColumns + ` FROM results
		WHERE date_str = ? AND game_id IN (` + placeholders(len(gameIDs)) + `)
		ORDER BY slot_min ASC, game_id ASC`

	args := append([]any{dateStr}, stringArgs(gameIDs)...)
	return s.queryResults(ctx, "find results by date", query, args...)
}

// FindLatestAtOrBefore returns, per game, the result with the largest slot
// not after slotMin. Games without a qualifying result are omitted.
func (s *Store) FindLatestAtOrBefore(ctx context.Context, dateStr string, gameIDs []string, slotMin int) ([]core.Result, error) {
	if len(gameIDs) == 0 {
		return []core.Result{}, nil
	}

	query := `SELECT r.result_id, r.game_id, r.date_str, r.slot_min, r.value, r.note, r.source, r.created_at, r.updated_at
		FROM results r
		JOIN (
			SELECT game_id, MAX(slot_min) AS slot_min FROM results
			WHERE date_str = ? AND slot_min <= ? AND game_id IN (` + placeholders(len(gameIDs)) + `)
			GROUP BY game_id
		) latest ON r.game_id = latest.game_id AND r.slot_min = latest.slot_min
		WHERE r.date_str = ?
		ORDER BY r.slot_min ASC`

	args := []any{dateStr, slotMin}
	args = append(args, stringArgs(gameIDs)...)
	args = append(args, dateStr)
	return s.queryResults(ctx, "find latest at or before", query, args...)
}

// FindLatestPerDay returns, per (date, game), the result with the largest slot
func (s *Store) FindLatestPerDay(ctx context.Context, dateStrs []string, gameIDs []string) ([]core.Result, error) {
	if len(gameIDs) == 0 || len(dateStrs) == 0 {
		return []core.Result{}, nil
	}

	query := `SELECT r.result_id, r.game_id, r.date_str, r.slot_min, r.value, r.note, r.source, r.created_at, r.updated_at
		FROM results r
		JOIN (
			SELECT game_id, date_str, MAX(slot_min) AS slot_min FROM results
			WHERE date_str IN (` + placeholders(len(dateStrs)) + `)
				AND game_id IN (` + placeholders(len(gameIDs)) + `)
			GROUP BY game_id, date_str
		) latest ON r.game_id = latest.game_id AND r.date_str = latest.date_str AND r.slot_min = latest.slot_min
		ORDER BY r.date_str ASC, r.slot_min ASC`

	args := append(stringArgs(dateStrs), stringArgs(gameIDs)...)
	return s.queryResults(ctx, "find latest per day", query, args...)
}
