package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/tableview/internal/core"
	"github.com/JonMunkholm/tableview/internal/logging"
	"github.com/go-chi/chi/v5"
)

// mutationResponse reports whether a change was accepted, with the view
// after the change. Rejected changes leave the view untouched.
type mutationResponse struct {
	Accepted bool                  `json:"accepted"`
	View     *core.TableViewResult `json:"view"`
}

// mutate runs fn against the session's table and responds with the result.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, ts *core.TableSession) (bool, error)) {
	ctx := r.Context()
	key := tableKey(r)

	var accepted bool
	err := s.service.WithTable(ctx, sessionID(r), key, func(ts *core.TableSession) error {
		var err error
		accepted, err = fn(ctx, ts)
		return err
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	logging.WithFields(ctx, "table", key).Debug(op, "accepted", accepted)

	view, err := s.service.GetTableView(ctx, sessionID(r), key, viewQuery(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	if isHTMX(r) {
		s.renderView(w, r, http.StatusOK, view)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{Accepted: accepted, View: view})
}

// columnParam returns the {columnKey} parameter, checked against the catalog.
func columnParam(r *http.Request, v *core.TableViewState) (string, error) {
	key := chi.URLParam(r, "columnKey")
	if !v.Catalog().Has(key) {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownColumn, key)
	}
	return key, nil
}

// handleSetVisibility shows or hides a column.
// Hiding below the table's minimum is rejected.
func (s *Server) handleSetVisibility(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Visible *bool `json:"visible"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		fail(w, r, err)
		return
	}
	if body.Visible == nil {
		fail(w, r, fmt.Errorf("%w: visible is required", errInvalidRequest))
		return
	}

	s.mutate(w, r, "set visibility", func(ctx context.Context, ts *core.TableSession) (bool, error) {
		key, err := columnParam(r, ts.View)
		if err != nil {
			return false, err
		}
		return ts.View.SetColumnVisible(ctx, key, *body.Visible), nil
	})
}

// handleReorderColumns replaces the column order. The order must list
// every catalog column exactly once, hidden ones included.
func (s *Server) handleReorderColumns(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Order []string `json:"order"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		fail(w, r, err)
		return
	}

	s.mutate(w, r, "reorder columns", func(ctx context.Context, ts *core.TableSession) (bool, error) {
		return ts.View.ReorderColumns(ctx, body.Order), nil
	})
}

// handleMoveColumn moves one column to the position of another, as a
// drag-and-drop would.
func (s *Server) handleMoveColumn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		fail(w, r, err)
		return
	}

	s.mutate(w, r, "move column", func(ctx context.Context, ts *core.TableSession) (bool, error) {
		return ts.View.MoveColumn(ctx, body.From, body.To), nil
	})
}

// handleResetColumns restores the catalog's default visibility and order
// and clears all filters, including those of the last search.
func (s *Server) handleResetColumns(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "reset columns", func(ctx context.Context, ts *core.TableSession) (bool, error) {
		ts.ResetColumns(ctx)
		return true, nil
	})
}

// handleSetFilter sets or clears the pending filter of a visible column.
// Rows change only on the next search.
func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Pattern string `json:"pattern"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		fail(w, r, err)
		return
	}

	s.mutate(w, r, "set filter", func(ctx context.Context, ts *core.TableSession) (bool, error) {
		key, err := columnParam(r, ts.View)
		if err != nil {
			return false, err
		}
		return ts.View.SetFilter(key, body.Pattern), nil
	})
}
