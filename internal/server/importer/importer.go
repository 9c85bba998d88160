// Package importer loads month matrices of results from CSV.
//
// A matrix has a DATE column of day numbers followed by one column per
// game code:
//
//	DATE,DSWR,FRBD,GZBD,GALI
//	01,XX,23,88,13
//
// Every non-blank, non-XX cell becomes a result at the game's default time.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"resultboard/internal/server/catalog"
	"resultboard/internal/server/core"
	"resultboard/internal/server/logging"
	"resultboard/internal/server/service"
	"resultboard/internal/server/timeslot"
)

// FallbackTime is used for games without a default time
const FallbackTime = "03:40 PM"

// DefaultAliases maps legacy sheet headers to catalog codes
var DefaultAliases = map[string]string{
	"DSWR": "DISA",
	"FRBD": "FRDA",
	"GZBD": "GZB",
	"GALI": "GLI",
}

// GameLister lists the catalog
type GameLister interface {
	List(ctx context.Context) ([]core.Game, error)
}

// ResultWriter stores one result
type ResultWriter interface {
	UpsertResult(ctx context.Context, in service.ResultInput) (core.Result, error)
}

// Report summarizes an import run
type Report struct {
	Upserted int
	Skipped  int
	Unknown  []string // headers with no matching game
}

// Importer writes CSV matrices through the result service
type Importer struct {
	games   GameLister
	results ResultWriter
	aliases map[string]string
	logger  *slog.Logger
}

// Option configures an Importer
type Option func(*Importer)

// WithAliases replaces DefaultAliases
func WithAliases(aliases map[string]string) Option {
	return func(im *Importer) {
		im.aliases = make(map[string]string, len(aliases))
		for from, to := range aliases {
			im.aliases[catalog.NormalizeCode(from)] = catalog.NormalizeCode(to)
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) { im.logger = logger }
}

func New(games GameLister, results ResultWriter, opts ...Option) *Importer {
	im := &Importer{games: games, results: results, aliases: DefaultAliases}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// ParseAliases reads "FROM=TO,FROM=TO"
func ParseAliases(s string) (map[string]string, error) {
	aliases := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		from, to, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return nil, fmt.Errorf("invalid alias %q, want FROM=TO", pair)
		}
		aliases[strings.TrimSpace(from)] = strings.TrimSpace(to)
	}
	return aliases, nil
}

type column struct {
	game *core.Game
	slot int
}

// Import reads a matrix for year/month from r. Rows whose day does not
// exist in the month are skipped, as are cells for unknown games. A store
// failure aborts the run with the counts so far.
func (im *Importer) Import(ctx context.Context, year, month int, r io.Reader) (Report, error) {
	var report Report
	if month < 1 || month > 12 {
		return report, core.NewValidationError("month", "must be 1-12")
	}
	days := timeslot.DaysInMonth(year, month)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return report, fmt.Errorf("empty matrix")
		}
		return report, fmt.Errorf("read header: %w", err)
	}

	cols, dateCol, err := im.resolveColumns(ctx, header, &report)
	if err != nil {
		return report, err
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("read row: %w", err)
		}
		if dateCol >= len(record) {
			continue
		}

		day, err := strconv.Atoi(strings.TrimSpace(record[dateCol]))
		if err != nil || day < 1 || day > days {
			continue
		}
		dateStr := fmt.Sprintf("%04d-%02d-%02d", year, month, day)

		for i, col := range cols {
			if i == dateCol || i >= len(record) {
				continue
			}
			value := strings.TrimSpace(record[i])
			if value == "" || strings.EqualFold(value, core.Placeholder) {
				continue
			}
			if col.game == nil {
				report.Skipped++
				continue
			}

			_, err := im.results.UpsertResult(ctx, service.ResultInput{
				GameCode: col.game.Code,
				DateStr:  dateStr,
				SlotMin:  col.slot,
				Value:    value,
				Source:   core.SourceBulkMatrix,
			})
			if err != nil {
				if errors.Is(err, core.ErrStoreUnavailable) || ctx.Err() != nil {
					return report, err
				}
				logging.Warn(im.logger, "import: cell skipped", logging.FieldDate, dateStr,
					logging.FieldGameCode, col.game.Code, "error", err)
				report.Skipped++
				continue
			}
			report.Upserted++
		}
	}

	logging.Info(im.logger, "import finished", "upserted", report.Upserted, "skipped", report.Skipped)
	return report, nil
}

// resolveColumns maps each header to its game. An alias is used when its
// target exists in the catalog; otherwise the header is looked up as is.
func (im *Importer) resolveColumns(ctx context.Context, header []string, report *Report) ([]column, int, error) {
	games, err := im.games.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	byCode := make(map[string]*core.Game, len(games))
	for i := range games {
		byCode[games[i].Code] = &games[i]
	}

	cols := make([]column, len(header))
	dateCol := -1
	for i, h := range header {
		code := catalog.NormalizeCode(h)
		if code == "DATE" && dateCol < 0 {
			dateCol = i
			continue
		}

		g := byCode[code]
		if alias, ok := im.aliases[code]; ok && byCode[alias] != nil {
			g = byCode[alias]
		}
		if g == nil {
			logging.Warn(im.logger, "import: no game for header", "header", code)
			report.Unknown = append(report.Unknown, code)
			continue
		}

		timeText := strings.TrimSpace(g.DefaultTime)
		if timeText == "" {
			timeText = FallbackTime
		}
		slot, err := timeslot.ToMinutesLenient(timeText)
		if err != nil {
			return nil, 0, fmt.Errorf("game %s default time: %w", g.Code, err)
		}
		cols[i].game = g
		cols[i].slot = slot
	}

	if dateCol < 0 {
		return nil, 0, core.NewValidationError("header", "missing DATE column")
	}
	return cols, dateCol, nil
}
