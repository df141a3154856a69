package core

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Session groups the table views of one browser session. All operations
// on a session's views run under mu, which makes the session the single
// owner of each TableViewState.
type Session struct {
	ID string

	mu       sync.Mutex
	tables   map[string]*TableSession
	notices  *NotificationQueue
	exports  map[string]Artifact
	lastSeen time.Time
}

func newSession(id string, noticeCapacity int) *Session {
	return &Session{
		ID:       id,
		tables:   make(map[string]*TableSession),
		notices:  NewNotificationQueue(noticeCapacity),
		exports:  make(map[string]Artifact),
		lastSeen: time.Now(),
	}
}

// TableSession is one table's view as seen by one session. Besides the
// TableViewState it remembers the filters in effect at the last search,
// since filters only take effect when a search is run.
type TableSession struct {
	Def  TableDefinition
	View *TableViewState

	applied FilterMap
}

// AppliedFilters returns the filters used by the last search.
func (ts *TableSession) AppliedFilters() FilterMap {
	out := make(FilterMap, len(ts.applied))
	for k, v := range ts.applied {
		out[k] = v
	}
	return out
}

// pruneApplied drops applied filters on columns that are no longer visible.
// It is subscribed to the view, so a hidden column stops filtering rows.
func (ts *TableSession) pruneApplied(vs ViewState) {
	for key := range ts.applied {
		if !vs.Visibility[key] {
			delete(ts.applied, key)
		}
	}
}

// ResetColumns restores the default columns and clears every filter,
// the ones of the last search included.
func (ts *TableSession) ResetColumns(ctx context.Context) {
	ts.View.ResetToDefaults(ctx)
	clear(ts.applied)
}

// AllRows fetches the table's full row set.
func (ts *TableSession) AllRows(ctx context.Context) ([]Row, error) {
	rows, err := ts.Def.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rows for %s: %w", ts.Def.Info.Key, err)
	}
	return rows, nil
}

// Search applies the current filters and remembers them for later reads.
func (ts *TableSession) Search(ctx context.Context) ([]Row, error) {
	rows, err := ts.AllRows(ctx)
	if err != nil {
		return nil, err
	}
	ts.applied = ts.View.Filters()
	return ts.View.ApplyFilters(rows), nil
}

// ResetSearch clears all filters and returns the full row set.
func (ts *TableSession) ResetSearch(ctx context.Context) ([]Row, error) {
	rows, err := ts.AllRows(ctx)
	if err != nil {
		return nil, err
	}
	ts.applied = make(FilterMap)
	return ts.View.ResetFilters(rows), nil
}

// CurrentRows returns the rows matching the last search.
func (ts *TableSession) CurrentRows(ctx context.Context) ([]Row, error) {
	rows, err := ts.AllRows(ctx)
	if err != nil {
		return nil, err
	}
	if len(ts.applied) == 0 {
		return slices.Clone(rows), nil
	}
	return FilterRows(ts.Def.Catalog, rows, ts.applied), nil
}
