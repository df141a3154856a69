// Package core provides the business logic for configurable table views.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"time"
)

// FieldType represents the data type of a column's values.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInt
	FieldFloat
	FieldDate
	FieldEnum
)

// String returns the lowercase name used in JSON payloads.
func (ft FieldType) String() string {
	switch ft {
	case FieldInt:
		return "int"
	case FieldFloat:
		return "float"
	case FieldDate:
		return "date"
	case FieldEnum:
		return "enum"
	default:
		return "text"
	}
}

// MarshalText encodes the type by name.
func (ft FieldType) MarshalText() ([]byte, error) {
	return []byte(ft.String()), nil
}

// Column is one entry of a table's catalog. Immutable once registered.
type Column struct {
	Key           string    `json:"key"`      // Stable identifier: "name"
	Title         string    `json:"title"`    // Display label: "Имя"
	Field         string    `json:"field"`    // Row attribute read through the catalog accessors
	Sortable      bool      `json:"sortable"` // Column may be used in a SortSpec
	Type          FieldType `json:"type"`
	DefaultHidden bool      `json:"default_hidden,omitempty"` // Hidden after a reset
}

// Row is a read-only record with a stable identifier.
type Row interface {
	RowKey() string
}

// Accessor reads a single field from a row.
type Accessor func(Row) any

// Field builds an Accessor from a typed getter. Rows of a different
// concrete type read as nil.
func Field[R Row, V any](get func(R) V) Accessor {
	return func(row Row) any {
		r, ok := row.(R)
		if !ok {
			return nil
		}
		return get(r)
	}
}

// VisibilityMap maps column key to whether the column is shown.
type VisibilityMap map[string]bool

// ColumnOrder is a permutation of the catalog's column keys.
type ColumnOrder []string

// FilterMap maps column key to a text pattern. Absent means no filter.
type FilterMap map[string]string

// ViewState is the persisted part of a table view.
type ViewState struct {
	Visibility VisibilityMap `json:"visibility"`
	Order      ColumnOrder   `json:"order"`
}

// Clone returns a deep copy so callers cannot alias internal maps.
func (vs ViewState) Clone() ViewState {
	out := ViewState{
		Visibility: make(VisibilityMap, len(vs.Visibility)),
		Order:      make(ColumnOrder, len(vs.Order)),
	}
	for k, v := range vs.Visibility {
		out.Visibility[k] = v
	}
	copy(out.Order, vs.Order)
	return out
}

// Equal reports whether two view states hold the same visibility and order.
func (vs ViewState) Equal(other ViewState) bool {
	if len(vs.Visibility) != len(other.Visibility) || len(vs.Order) != len(other.Order) {
		return false
	}
	for k, v := range vs.Visibility {
		ov, ok := other.Visibility[k]
		if !ok || ov != v {
			return false
		}
	}
	for i := range vs.Order {
		if vs.Order[i] != other.Order[i] {
			return false
		}
	}
	return true
}

// VisibleCount returns how many columns are currently shown.
func (vs ViewState) VisibleCount() int {
	n := 0
	for _, v := range vs.Visibility {
		if v {
			n++
		}
	}
	return n
}

// TableInfo contains display information about a table.
type TableInfo struct {
	Key   string `json:"key"`   // Unique identifier: "products"
	Group string `json:"group"` // Menu group: "Demo"
	Label string `json:"label"` // Display name: "Таблица продуктов"
}

// RowSource returns the rows of a table.
type RowSource func(ctx context.Context) ([]Row, error)

// TableDefinition contains everything needed to serve a table view.
type TableDefinition struct {
	Info       TableInfo
	Catalog    Catalog
	MinVisible int // Lower bound on visible columns (default: 1)
	Rows       RowSource
}

// SortSpec represents a single sort column and direction.
type SortSpec struct {
	Column string `json:"column"` // Column key
	Dir    string `json:"dir"`    // "asc" or "desc"
}

// ExportColumn is one column of an export request.
type ExportColumn struct {
	Title string `json:"title"`
	Field string `json:"field"`
}

// ExportRequest is the materialized snapshot handed to an Exporter.
// Rows are keyed by ExportColumn.Field.
type ExportRequest struct {
	Name    string           `json:"name,omitempty"` // Base file name, usually the table key
	Rows    []map[string]any `json:"rows"`
	Columns []ExportColumn   `json:"columns"`
}

// Artifact is a downloadable file produced by an Exporter.
type Artifact struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// Exporter turns an export request into a downloadable artifact.
type Exporter interface {
	Export(ctx context.Context, req ExportRequest) (Artifact, error)
}

// Store is the persistent key-value contract for view settings.
// Get reports found=false for a missing key without error.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}
