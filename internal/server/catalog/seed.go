package catalog

import (
	"context"

	"resultboard/internal/server/core"
)

// DefaultGames is the starter catalog, ranked in list order
var DefaultGames = []core.BulkGameItem{
	{Name: "DESAWAR", Code: "DSWR"},
	{Name: "FARIDABAD", Code: "FRBD"},
	{Name: "GHAZIABAD", Code: "GZBD"},
	{Name: "GALI", Code: "GALI"},
	{Name: "NEW GANGA", Code: "NGNG"},
	{Name: "MAA BHAGWATI", Code: "MBGT"},
	{Name: "BADLAPUR", Code: "BDLP"},
	{Name: "MOHALI", Code: "MOHL"},
	{Name: "DELHI BAZAR", Code: "DLBZ"},
	{Name: "MEERUT CITY", Code: "MRTC"},
}

// Seed upserts DefaultGames with ranks 1..n. Existing games keep their
// results and are moved onto the seeded rank.
func (c *Catalog) Seed(ctx context.Context) ([]core.BulkOutcome, error) {
	items := make([]core.BulkGameItem, len(DefaultGames))
	for i, g := range DefaultGames {
		g.OrderIndex = i + 1
		items[i] = g
	}
	return c.BulkUpsert(ctx, items)
}
