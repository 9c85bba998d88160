package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"resultboard/internal/server/core"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (core.Game, error) {
	var g core.Game
	err := row.Scan(
		&g.ID, &g.Code, &g.Name, &g.DefaultTime,
		&g.OrderIndex, &g.Active, &g.CreatedAt, &g.UpdatedAt,
	)
	return g, err
}

// ListGames returns every game ordered by rank, ties by name
func (s *Store) ListGames(ctx context.Context) ([]core.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games ORDER BY order_index ASC, name ASC`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, s.unavailable("list games", err)
	}
	defer rows.Close()

	games := []core.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, s.unavailable("scan game", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, s.unavailable("list games", err)
	}
	return games, nil
}

// GetGameByCode looks up a game by its normalised code
func (s *Store) GetGameByCode(ctx context.Context, code string) (core.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE code = ?`

	g, err := scanGame(s.q.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Game{}, fmt.Errorf("game %s: %w", code, core.ErrNotFound)
	}
	if err != nil {
		return core.Game{}, s.unavailable("get game", err)
	}
	return g, nil
}

// InsertGame writes a new game row
func (s *Store) InsertGame(ctx context.Context, g core.Game) error {
	query := `INSERT INTO games (` + gameColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.q.ExecContext(ctx, query,
		g.ID, g.Code, g.Name, g.DefaultTime,
		g.OrderIndex, g.Active, g.CreatedAt, g.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("game %s: %w", g.Code, core.ErrDuplicateCode)
	}
	if err != nil {
		return s.unavailable("insert game", err)
	}
	return nil
}

// UpdateGame overwrites the mutable columns of the game with g.ID
func (s *Store) UpdateGame(ctx context.Context, g core.Game) error {
	query := `UPDATE games
		SET code = ?, name = ?, default_time = ?, order_index = ?, is_active = ?, updated_at = ?
		WHERE game_id = ?`

	res, err := s.q.ExecContext(ctx, query,
		g.Code, g.Name, g.DefaultTime, g.OrderIndex, g.Active, g.UpdatedAt, g.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("game %s: %w", g.Code, core.ErrDuplicateCode)
	}
	if err != nil {
		return s.unavailable("update game", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("game %s: %w", g.ID, core.ErrNotFound)
	}
	return nil
}

// DeleteGameByCode removes a game and returns its id. Results are kept.
func (s *Store) DeleteGameByCode(ctx context.Context, code string) (string, error) {
	var id string
	err := s.q.QueryRowContext(ctx, `DELETE FROM games WHERE code = ? RETURNING game_id`, code).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("game %s: %w", code, core.ErrNotFound)
	}
	if err != nil {
		return "", s.unavailable("delete game", err)
	}
	return id, nil
}

// ShiftOrderIndexes increments every rank >= from in one statement
func (s *Store) ShiftOrderIndexes(ctx context.Context, from int) (int64, error) {
	res, err := s.q.ExecContext(ctx,
		`UPDATE games SET order_index = order_index + 1 WHERE order_index >= ?`, from)
	if err != nil {
		return 0, s.unavailable("shift order indexes", err)
	}
	return res.RowsAffected()
}

// OrderIndexTaken reports whether a game other than excludeID holds idx
func (s *Store) OrderIndexTaken(ctx context.Context, idx int, excludeID string) (bool, error) {
	var count int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM games WHERE order_index = ? AND game_id != ?`, idx, excludeID,
	).Scan(&count)
	if err != nil {
		return false, s.unavailable("check order index", err)
	}
	return count > 0, nil
}

// MaxOrderIndex returns the highest rank, 0 for an empty catalog
func (s *Store) MaxOrderIndex(ctx context.Context) (int, error) {
	var max int
	err := s.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(order_index), 0) FROM games`).Scan(&max)
	if err != nil {
		return 0, s.unavailable("max order index", err)
	}
	return max, nil
}
