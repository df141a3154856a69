package core

// viewstate.go implements TableViewState, the single source of truth for
// which columns of a table are shown, in what order, and which text
// filters are active.
//
// Mutations are guarded by two invariants:
//   - at least minVisible columns stay visible
//   - the order is always a permutation of the catalog keys
//
// A mutation that would break either is a silent no-op. Every accepted
// mutation of the ViewState is written back to the Store; a failed write is
// reported through the Notifier but never rolls back the in-memory change.
// Filters are session-only and are never persisted.

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// DefaultMinVisible is the minimum number of visible columns when none is configured.
const DefaultMinVisible = 1

// ViewOptions configures a TableViewState.
type ViewOptions struct {
	MinVisible int          // Lower bound on visible columns (default: 1)
	Notifier   Notifier     // Receives "settings load/save failed" messages
	Logger     *slog.Logger // Defaults to slog.Default()
}

// TableViewState owns column visibility, column order and active filters
// for one table. It is not safe for concurrent use; it has exactly one owner.
type TableViewState struct {
	catalog    Catalog
	store      Store
	notifier   Notifier
	logger     *slog.Logger
	minVisible int

	state   ViewState
	filters FilterMap

	listeners map[int]func(ViewState)
	nextID    int
}

// NewTableViewState initializes a view from the persisted settings in
// store, falling back to the catalog defaults on missing or corrupt data.
// Load failures are reported to opts.Notifier; the constructor never fails.
func NewTableViewState(ctx context.Context, catalog Catalog, store Store, opts ViewOptions) *TableViewState {
	minVisible := opts.MinVisible
	if minVisible <= 0 {
		minVisible = DefaultMinVisible
	}
	if minVisible > len(catalog.Columns) {
		minVisible = len(catalog.Columns)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	v := &TableViewState{
		catalog:    catalog,
		store:      store,
		notifier:   opts.Notifier,
		logger:     logger,
		minVisible: minVisible,
		filters:    make(FilterMap),
		listeners:  make(map[int]func(ViewState)),
	}

	state, err := LoadViewState(ctx, catalog, store, minVisible)
	if err != nil {
		err = fmt.Errorf("load settings: %w", err)
		v.logger.Warn("view settings load failed, using defaults", "error", err)
		notifyError(v.notifier, err)
	}
	v.state = state

	return v
}

// Catalog returns the catalog this view was built for.
func (v *TableViewState) Catalog() Catalog {
	return v.catalog
}

// MinVisible returns the enforced lower bound on visible columns.
func (v *TableViewState) MinVisible() int {
	return v.minVisible
}

// State returns a copy of the current ViewState.
func (v *TableViewState) State() ViewState {
	return v.state.Clone()
}

// Filters returns a copy of the active filters.
func (v *TableViewState) Filters() FilterMap {
	out := make(FilterMap, len(v.filters))
	for k, p := range v.filters {
		out[k] = p
	}
	return out
}

// IsVisible reports whether column key is currently shown.
func (v *TableViewState) IsVisible(key string) bool {
	return v.state.Visibility[key]
}

// CanHide reports whether hiding column key would be accepted.
func (v *TableViewState) CanHide(key string) bool {
	return v.catalog.Has(key) && v.state.Visibility[key] && v.state.VisibleCount() > v.minVisible
}

// ColumnOption is one entry of the column visibility menu.
type ColumnOption struct {
	Column
	Visible bool `json:"visible"`
	CanHide bool `json:"can_hide"` // False keeps the checkbox of a required column disabled
}

// ColumnOptions lists the catalog in declaration order with each column's
// visibility and whether hiding it would be accepted.
func (v *TableViewState) ColumnOptions() []ColumnOption {
	opts := make([]ColumnOption, len(v.catalog.Columns))
	for i, col := range v.catalog.Columns {
		opts[i] = ColumnOption{
			Column:  col,
			Visible: v.state.Visibility[col.Key],
			CanHide: v.CanHide(col.Key),
		}
	}
	return opts
}

// SetColumnVisible shows or hides a column. Hiding is refused while the
// visible count is at or below the minimum. Hiding a column drops its
// filter. Returns true if the state changed.
func (v *TableViewState) SetColumnVisible(ctx context.Context, key string, checked bool) bool {
	if !v.catalog.Has(key) {
		return false
	}
	if !checked && v.state.VisibleCount() <= v.minVisible {
		v.logger.Debug("hide rejected",
			"column", key,
			"visible", v.state.VisibleCount(),
			"min_visible", v.minVisible,
			"error", ErrInvariantViolation,
		)
		return false
	}
	if v.state.Visibility[key] == checked {
		return false
	}

	v.state.Visibility[key] = checked
	if !checked {
		delete(v.filters, key)
	}

	v.commit(ctx)
	return true
}

// ReorderColumns replaces the column order. newOrder must be a permutation
// of the current keys; anything else is ignored. Returns true if the state
// changed.
func (v *TableViewState) ReorderColumns(ctx context.Context, newOrder []string) bool {
	if !v.catalog.isPermutation(newOrder) {
		v.logger.Debug("reorder rejected", "order", newOrder, "error", ErrInvariantViolation)
		return false
	}
	if slices.Equal(v.state.Order, newOrder) {
		return false
	}

	v.state.Order = slices.Clone(ColumnOrder(newOrder))
	v.commit(ctx)
	return true
}

// MoveColumn moves fromKey to the position currently held by toKey, the
// way a drag-and-drop gesture drops it: a column dragged forward lands
// after toKey, a column dragged backward lands before it.
func (v *TableViewState) MoveColumn(ctx context.Context, fromKey, toKey string) bool {
	if fromKey == toKey {
		return false
	}
	from := slices.Index(v.state.Order, fromKey)
	to := slices.Index(v.state.Order, toKey)
	if from < 0 || to < 0 {
		return false
	}

	return v.ReorderColumns(ctx, arrayMove(v.state.Order, from, to))
}

// arrayMove returns a copy of order with the element at from moved to index to.
func arrayMove(order []string, from, to int) []string {
	out := slices.Clone(order)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	out = slices.Insert(out, to, item)
	return out
}

// ResetToDefaults restores the catalog's default visibility and order,
// clears all filters and persists. Calling it repeatedly is harmless.
func (v *TableViewState) ResetToDefaults(ctx context.Context) {
	v.state = v.catalog.Defaults()
	clear(v.filters)
	v.commit(ctx)
}

// SetFilter sets the text pattern for column key. An empty pattern clears
// the filter. Unknown or hidden columns are ignored. Returns true if the
// filters changed.
func (v *TableViewState) SetFilter(key, pattern string) bool {
	if !v.catalog.Has(key) || !v.state.Visibility[key] {
		return false
	}
	old, had := v.filters[key]
	if pattern == "" {
		if !had {
			return false
		}
		delete(v.filters, key)
		return true
	}
	if had && old == pattern {
		return false
	}
	v.filters[key] = pattern
	return true
}

// ClearFilters removes every active filter.
func (v *TableViewState) ClearFilters() {
	clear(v.filters)
}

// ApplyFilters returns the rows matching every active filter, in their
// original relative order. A row matches a filter when the lowercased text
// of its column value contains the lowercased pattern.
func (v *TableViewState) ApplyFilters(rows []Row) []Row {
	return FilterRows(v.catalog, rows, v.filters)
}

// ResetFilters clears all filters and returns the full row set.
func (v *TableViewState) ResetFilters(rows []Row) []Row {
	v.ClearFilters()
	return slices.Clone(rows)
}

// VisibleOrderedColumns projects the order through the visibility map.
func (v *TableViewState) VisibleOrderedColumns() []Column {
	cols := make([]Column, 0, len(v.state.Order))
	for _, key := range v.state.Order {
		if !v.state.Visibility[key] {
			continue
		}
		if col, ok := v.catalog.Lookup(key); ok {
			cols = append(cols, col)
		}
	}
	return cols
}

// Subscribe registers fn to be called with the new state after every
// accepted ViewState mutation. The returned func removes the subscription.
func (v *TableViewState) Subscribe(fn func(ViewState)) (cancel func()) {
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn
	return func() { delete(v.listeners, id) }
}

// commit persists the state and notifies subscribers.
func (v *TableViewState) commit(ctx context.Context) {
	if err := SaveViewState(ctx, v.store, v.state); err != nil {
		v.logger.Warn("view settings save failed", "error", err)
		notifyError(v.notifier, err)
	}

	if len(v.listeners) == 0 {
		return
	}
	ids := make([]int, 0, len(v.listeners))
	for id := range v.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := v.listeners[id]; ok {
			fn(v.state.Clone())
		}
	}
}

// FilterRows applies filters to rows using the catalog's accessors.
// Empty patterns and unknown columns are ignored.
func FilterRows(catalog Catalog, rows []Row, filters FilterMap) []Row {
	type active struct {
		key     string
		pattern string
	}
	var checks []active
	for key, pattern := range filters {
		if pattern == "" || !catalog.Has(key) {
			continue
		}
		checks = append(checks, active{key: key, pattern: strings.ToLower(pattern)})
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		keep := true
		for _, c := range checks {
			val, _ := catalog.Value(row, c.key)
			if !strings.Contains(strings.ToLower(CellText(val)), c.pattern) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}
