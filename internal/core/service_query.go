package core

import (
	"context"
)

// TableRow represents a single row of data as column key -> value pairs.
type TableRow map[string]any

// Page is one slice of a row set plus the clamped paging numbers.
type Page struct {
	Rows       []Row
	TotalRows  int
	Page       int
	PageSize   int
	TotalPages int
}

// Paginate returns page of rows. page is clamped to [1, TotalPages] and
// TotalPages is at least 1, so an empty set yields page 1 of 1.
func Paginate(rows []Row, page, pageSize int) Page {
	if pageSize < 1 {
		pageSize = 1
	}
	total := len(rows)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	if start > total {
		start = total
	}

	return Page{
		Rows:       rows[start:end],
		TotalRows:  total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// ViewQuery selects the page and ordering of a table view.
type ViewQuery struct {
	Page     int
	PageSize int // 0 uses the service default
	Sorts    []SortSpec
}

// TableViewResult is everything a client needs to render one table view.
type TableViewResult struct {
	Table          TableInfo      `json:"table"`
	Columns        []Column       `json:"columns"`     // Visible columns in display order
	AllColumns     []ColumnOption `json:"all_columns"` // Catalog order, for the visibility menu
	State          ViewState      `json:"state"`
	MinVisible     int            `json:"min_visible"`
	Filters        FilterMap      `json:"filters"`         // Pending filters
	AppliedFilters FilterMap      `json:"applied_filters"` // Filters used by the last search
	Sorts          []SortSpec     `json:"sorts"`
	Rows           []TableRow     `json:"rows"`
	TotalRows      int            `json:"total_rows"`
	Page           int            `json:"page"`
	PageSize       int            `json:"page_size"`
	TotalPages     int            `json:"total_pages"`
}

// GetTableView returns the session's current view of a table: the rows
// matching the last search, sorted and paginated, projected onto the
// visible columns.
func (s *Service) GetTableView(ctx context.Context, sessionID, tableKey string, q ViewQuery) (*TableViewResult, error) {
	var result *TableViewResult
	err := s.WithTable(ctx, sessionID, tableKey, func(ts *TableSession) error {
		rows, err := ts.CurrentRows(ctx)
		if err != nil {
			return err
		}
		result = s.buildViewResult(ts, rows, q)
		return nil
	})
	return result, err
}

// buildViewResult sorts, paginates and projects rows. Caller holds the session lock.
func (s *Service) buildViewResult(ts *TableSession, rows []Row, q ViewQuery) *TableViewResult {
	catalog := ts.Def.Catalog
	sorts := NormalizeSorts(catalog, q.Sorts)
	sorted := SortRows(catalog, rows, sorts, s.collation)

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	if s.maxPageSize > 0 && pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	page := Paginate(sorted, q.Page, pageSize)

	visible := ts.View.VisibleOrderedColumns()
	out := make([]TableRow, len(page.Rows))
	for i, row := range page.Rows {
		out[i] = projectRow(catalog, visible, row)
	}

	if sorts == nil {
		sorts = []SortSpec{}
	}
	return &TableViewResult{
		Table:          ts.Def.Info,
		Columns:        visible,
		AllColumns:     ts.View.ColumnOptions(),
		State:          ts.View.State(),
		MinVisible:     ts.View.MinVisible(),
		Filters:        ts.View.Filters(),
		AppliedFilters: ts.AppliedFilters(),
		Sorts:          sorts,
		Rows:           out,
		TotalRows:      page.TotalRows,
		Page:           page.Page,
		PageSize:       page.PageSize,
		TotalPages:     page.TotalPages,
	}
}

// projectRow maps a row onto the given columns, keyed by column key.
func projectRow(catalog Catalog, columns []Column, row Row) TableRow {
	tr := make(TableRow, len(columns)+1)
	tr["_key"] = row.RowKey()
	for _, col := range columns {
		v, _ := catalog.Value(row, col.Key)
		tr[col.Key] = v
	}
	return tr
}

// Search applies the pending filters and returns the first page of matches.
func (s *Service) Search(ctx context.Context, sessionID, tableKey string, q ViewQuery) (*TableViewResult, error) {
	var result *TableViewResult
	err := s.WithTable(ctx, sessionID, tableKey, func(ts *TableSession) error {
		rows, err := ts.Search(ctx)
		if err != nil {
			return err
		}
		q.Page = 1
		result = s.buildViewResult(ts, rows, q)
		return nil
	})
	return result, err
}

// ResetSearch clears all filters and returns the first page of the full set.
func (s *Service) ResetSearch(ctx context.Context, sessionID, tableKey string, q ViewQuery) (*TableViewResult, error) {
	var result *TableViewResult
	err := s.WithTable(ctx, sessionID, tableKey, func(ts *TableSession) error {
		rows, err := ts.ResetSearch(ctx)
		if err != nil {
			return err
		}
		q.Page = 1
		result = s.buildViewResult(ts, rows, q)
		return nil
	})
	return result, err
}
