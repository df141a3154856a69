package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/tableview/internal/core"
	"github.com/JonMunkholm/tableview/internal/logging"
	"github.com/go-chi/chi/v5"
)

// handleSearch applies the pending filters and returns the first page.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Search(r.Context(), sessionID(r), tableKey(r), viewQuery(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	logging.WithFields(r.Context(), "table", tableKey(r)).Info("search",
		"filters", len(view.AppliedFilters), "rows", view.TotalRows)
	s.renderView(w, r, http.StatusOK, view)
}

// handleResetSearch clears every filter and returns the full row set.
func (s *Server) handleResetSearch(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.ResetSearch(r.Context(), sessionID(r), tableKey(r), viewQuery(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	s.renderView(w, r, http.StatusOK, view)
}

// exportAccepted is the 202 body of an async export.
type exportAccepted struct {
	ExportID  string `json:"export_id"`
	StatusURL string `json:"status_url"`
}

// handleExportTable exports the rows of the last search with the visible
// columns. By default the workbook is returned directly; with ?async=true
// it is built in the background and announced by an EXP000 notification.
func (s *Server) handleExportTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := tableKey(r)
	sorts := parseSorts(r)

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		id, err := s.service.ExportAsync(ctx, sessionID(r), key, sorts)
		if err != nil {
			fail(w, r, err)
			return
		}
		logging.WithFields(ctx, "table", key, "export_id", id).Info("export queued")
		writeJSON(w, http.StatusAccepted, exportAccepted{
			ExportID:  id,
			StatusURL: "/api/exports/" + id,
		})
		return
	}

	artifact, err := s.service.Export(ctx, sessionID(r), key, sorts)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeArtifact(w, artifact)
}

// handleGetExport downloads a finished async export once.
func (s *Server) handleGetExport(w http.ResponseWriter, r *http.Request) {
	artifact, err := s.service.TakeExport(sessionID(r), chi.URLParam(r, "exportID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeArtifact(w, artifact)
}

// handleExportRequest serves the export contract: a JSON body of rows and
// columns in, a workbook out.
func (s *Server) handleExportRequest(w http.ResponseWriter, r *http.Request) {
	var req core.ExportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}

	artifact, err := s.service.ExportRequest(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeArtifact(w, artifact)
}
