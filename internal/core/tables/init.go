// Package tables registers all table definitions with the core registry.
// Import this package to ensure all tables are registered.
package tables

import (
	"context"
	"time"

	"github.com/JonMunkholm/tableview/internal/core"
)

// Each table file uses init() to register its tables.

// GroupDemo is the menu group of the bundled demo tables.
const GroupDemo = "Демо"

// staticRows serves a fixed in-memory row set. Each call returns a fresh
// slice so callers may reorder it freely.
func staticRows[R core.Row](rows []R) core.RowSource {
	return func(ctx context.Context) ([]core.Row, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := make([]core.Row, len(rows))
		for i, r := range rows {
			out[i] = r
		}
		return out, nil
	}
}

// mustDate parses a YYYY-MM-DD literal from the seed data.
func mustDate(s string) time.Time {
	t, err := time.Parse(core.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
