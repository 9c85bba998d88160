// Package catalog manages the ordered list of games. Ranks are kept free of
// collisions by shifting every game at or above a taken rank up by one.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"resultboard/internal/server/core"
	"resultboard/internal/server/storage"

	"github.com/google/uuid"
)

// Bulk outcome actions
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// Catalog owns game ordering and CRUD
type Catalog struct {
	store   *storage.Store
	now     func() time.Time
	onShift func(moved int64)
}

// Option configures a Catalog
type Option func(*Catalog)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// WithShiftHook is called with the number of games moved by each rank shift
func WithShiftHook(fn func(moved int64)) Option {
	return func(c *Catalog) { c.onShift = fn }
}

// New creates a catalog backed by store
func New(store *storage.Store, opts ...Option) *Catalog {
	c := &Catalog{store: store, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewGame holds the fields of a game to create
type NewGame struct {
	Name        string
	Code        string
	DefaultTime string
	OrderIndex  int   // <= 0 appends
	Active      *bool // nil means active
}

// Changes holds the optional fields of an update
type Changes struct {
	Name        *string
	NewCode     *string
	DefaultTime *string
	OrderIndex  *int
	Active      *bool
}

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,16}$`)

// NormalizeCode trims and uppercases a game code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code, once normalised, is 1-16 letters,
// digits, '_' or '-'
func ValidCode(code string) bool {
	return codePattern.MatchString(NormalizeCode(code))
}

func invalidCode(field string) error {
	return core.NewValidationError(field, "must be 1-16 letters, digits, '_' or '-'")
}

// List returns all games by rank, ties by name
func (c *Catalog) List(ctx context.Context) ([]core.Game, error) {
	return c.store.ListGames(ctx)
}

// Get returns the game with code
func (c *Catalog) Get(ctx context.Context, code string) (core.Game, error) {
	return c.store.GetGameByCode(ctx, NormalizeCode(code))
}

// Active returns active games in list order. A non-empty codes list keeps
// only those codes.
func (c *Catalog) Active(ctx context.Context, codes []string) ([]core.Game, error) {
	games, err := c.store.ListGames(ctx)
	if err != nil {
		return nil, err
	}

	var want map[string]bool
	if len(codes) > 0 {
		want = make(map[string]bool, len(codes))
		for _, code := range codes {
			want[NormalizeCode(code)] = true
		}
	}

	active := make([]core.Game, 0, len(games))
	for _, g := range games {
		if !g.Active {
			continue
		}
		if want != nil && !want[g.Code] {
			continue
		}
		active = append(active, g)
	}
	return active, nil
}

// Create adds a game, shifting ranks if its target rank is taken
func (c *Catalog) Create(ctx context.Context, in NewGame) (core.Game, error) {
	name := strings.TrimSpace(in.Name)
	code := NormalizeCode(in.Code)
	if name == "" {
		return core.Game{}, core.NewValidationError("name", "is required")
	}
	if code == "" {
		return core.Game{}, core.NewValidationError("code", "is required")
	}
	if !ValidCode(code) {
		return core.Game{}, invalidCode("code")
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	now := c.now().UTC()
	g := core.Game{
		ID:          uuid.NewString(),
		Code:        code,
		Name:        name,
		DefaultTime: strings.TrimSpace(in.DefaultTime),
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := c.store.WithinTx(ctx, func(tx *storage.Store) error {
		if _, err := tx.GetGameByCode(ctx, code); err == nil {
			return fmt.Errorf("game %s: %w", code, core.ErrDuplicateCode)
		} else if !errors.Is(err, core.ErrNotFound) {
			return err
		}

		idx, err := c.placeRank(ctx, tx, in.OrderIndex, "")
		if err != nil {
			return err
		}
		g.OrderIndex = idx
		return tx.InsertGame(ctx, g)
	})
	if err != nil {
		return core.Game{}, err
	}
	return g, nil
}

// Update applies changes to the game with code
func (c *Catalog) Update(ctx context.Context, code string, ch Changes) (core.Game, error) {
	var g core.Game
	err := c.store.WithinTx(ctx, func(tx *storage.Store) error {
		var err error
		g, err = tx.GetGameByCode(ctx, NormalizeCode(code))
		if err != nil {
			return err
		}

		if ch.NewCode != nil {
			newCode := NormalizeCode(*ch.NewCode)
			if newCode == "" {
				return core.NewValidationError("newCode", "must not be empty")
			}
			if !ValidCode(newCode) {
				return invalidCode("newCode")
			}
			if newCode != g.Code {
				if _, err := tx.GetGameByCode(ctx, newCode); err == nil {
					return fmt.Errorf("game %s: %w", newCode, core.ErrDuplicateCode)
				} else if !errors.Is(err, core.ErrNotFound) {
					return err
				}
				g.Code = newCode
			}
		}
		if ch.Name != nil {
			name := strings.TrimSpace(*ch.Name)
			if name == "" {
				return core.NewValidationError("name", "must not be empty")
			}
			g.Name = name
		}
		if ch.DefaultTime != nil {
			g.DefaultTime = strings.TrimSpace(*ch.DefaultTime)
		}
		if ch.Active != nil {
			g.Active = *ch.Active
		}
		if ch.OrderIndex != nil {
			if err := c.moveTo(ctx, tx, &g, *ch.OrderIndex); err != nil {
				return err
			}
		}

		g.UpdatedAt = c.now().UTC()
		return tx.UpdateGame(ctx, g)
	})
	if err != nil {
		return core.Game{}, err
	}
	return g, nil
}

// Delete removes the game with code and returns its id. Results are kept.
func (c *Catalog) Delete(ctx context.Context, code string) (string, error) {
	return c.store.DeleteGameByCode(ctx, NormalizeCode(code))
}

// BulkUpsert creates or updates each item in order, each in its own
// transaction, so later items see the ranks left by earlier ones.
// Invalid items are skipped; a store failure stops the batch.
func (c *Catalog) BulkUpsert(ctx context.Context, items []core.BulkGameItem) ([]core.BulkOutcome, error) {
	outcomes := []core.BulkOutcome{}
	for _, item := range items {
		outcome, err := c.upsertOne(ctx, item)
		if errors.Is(err, core.ErrStoreUnavailable) || ctx.Err() != nil {
			return outcomes, err
		}
		if err != nil {
			continue
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (c *Catalog) upsertOne(ctx context.Context, item core.BulkGameItem) (core.BulkOutcome, error) {
	code := NormalizeCode(item.Code)
	name := strings.TrimSpace(item.Name)
	if code == "" || name == "" {
		return core.BulkOutcome{}, core.NewValidationError("code", "code and name are required")
	}
	if !ValidCode(code) {
		return core.BulkOutcome{}, invalidCode("code")
	}

	existing, err := c.store.GetGameByCode(ctx, code)
	if errors.Is(err, core.ErrNotFound) {
		_, err := c.Create(ctx, NewGame{
			Name:        name,
			Code:        code,
			DefaultTime: item.DefaultTime,
			OrderIndex:  item.OrderIndex,
			Active:      item.IsActive,
		})
		if err != nil {
			return core.BulkOutcome{}, err
		}
		return core.BulkOutcome{Code: code, Action: ActionCreated}, nil
	}
	if err != nil {
		return core.BulkOutcome{}, err
	}

	ch := Changes{Name: &name, Active: item.IsActive}
	if strings.TrimSpace(item.DefaultTime) != "" {
		ch.DefaultTime = &item.DefaultTime
	}
	if item.OrderIndex > 0 && item.OrderIndex != existing.OrderIndex {
		ch.OrderIndex = &item.OrderIndex
	}
	if _, err := c.Update(ctx, code, ch); err != nil {
		return core.BulkOutcome{}, err
	}
	return core.BulkOutcome{Code: code, Action: ActionUpdated}, nil
}

// moveTo resolves target and, when it differs from the current rank,
// frees it before assigning it to g
func (c *Catalog) moveTo(ctx context.Context, tx *storage.Store, g *core.Game, target int) error {
	if target > 0 && target == g.OrderIndex {
		return nil
	}
	idx, err := c.placeRank(ctx, tx, target, g.ID)
	if err != nil {
		return err
	}
	g.OrderIndex = idx
	return nil
}

// placeRank returns the rank to write. A non-positive target appends after
// the current maximum. A target held by a game other than excludeID is
// freed by shifting every rank >= target up by one.
func (c *Catalog) placeRank(ctx context.Context, tx *storage.Store, target int, excludeID string) (int, error) {
	if target <= 0 {
		max, err := tx.MaxOrderIndex(ctx)
		if err != nil {
			return 0, err
		}
		return max + 1, nil
	}

	taken, err := tx.OrderIndexTaken(ctx, target, excludeID)
	if err != nil {
		return 0, err
	}
	if taken {
		moved, err := tx.ShiftOrderIndexes(ctx, target)
		if err != nil {
			return 0, err
		}
		if c.onShift != nil {
			c.onShift(moved)
		}
	}
	return target, nil
}
