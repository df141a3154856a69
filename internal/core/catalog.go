package core

import "fmt"

// Catalog is the fixed declaration of a table's columns together with the
// accessors that read each column's field from a row.
type Catalog struct {
	Columns   []Column
	Accessors map[string]Accessor // Keyed by Column.Field
}

// Keys returns the column keys in declaration order.
func (c Catalog) Keys() []string {
	keys := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		keys[i] = col.Key
	}
	return keys
}

// Lookup returns the column with the given key.
func (c Catalog) Lookup(key string) (Column, bool) {
	for _, col := range c.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

// Has reports whether key names a catalog column.
func (c Catalog) Has(key string) bool {
	_, ok := c.Lookup(key)
	return ok
}

// Value reads the value of column key from row.
// Returns false if the column or its accessor is unknown.
func (c Catalog) Value(row Row, key string) (any, bool) {
	col, ok := c.Lookup(key)
	if !ok {
		return nil, false
	}
	get, ok := c.Accessors[col.Field]
	if !ok {
		return nil, false
	}
	return get(row), true
}

// Defaults returns the catalog's default view state: every column visible
// unless flagged DefaultHidden, in declaration order.
func (c Catalog) Defaults() ViewState {
	vs := ViewState{
		Visibility: make(VisibilityMap, len(c.Columns)),
		Order:      make(ColumnOrder, 0, len(c.Columns)),
	}
	for _, col := range c.Columns {
		vs.Visibility[col.Key] = !col.DefaultHidden
		vs.Order = append(vs.Order, col.Key)
	}
	return vs
}

// Validate checks column keys are unique, every field has an accessor and
// the defaults leave at least minVisible columns shown.
func (c Catalog) Validate(minVisible int) error {
	if len(c.Columns) == 0 {
		return fmt.Errorf("catalog has no columns")
	}
	seen := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		if col.Key == "" {
			return fmt.Errorf("column with empty key (title %q)", col.Title)
		}
		if seen[col.Key] {
			return fmt.Errorf("duplicate column key: %s", col.Key)
		}
		seen[col.Key] = true
		if _, ok := c.Accessors[col.Field]; !ok {
			return fmt.Errorf("column %s: no accessor for field %q", col.Key, col.Field)
		}
	}
	if minVisible > len(c.Columns) {
		return fmt.Errorf("min visible %d exceeds column count %d", minVisible, len(c.Columns))
	}
	if got := c.Defaults().VisibleCount(); got < minVisible {
		return fmt.Errorf("defaults show %d columns, need at least %d", got, minVisible)
	}
	return nil
}

// isPermutation reports whether order contains exactly the catalog keys,
// each once.
func (c Catalog) isPermutation(order []string) bool {
	if len(order) != len(c.Columns) {
		return false
	}
	seen := make(map[string]bool, len(order))
	for _, key := range order {
		if seen[key] || !c.Has(key) {
			return false
		}
		seen[key] = true
	}
	return true
}
