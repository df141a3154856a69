package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/tableview/internal/core"
	"github.com/JonMunkholm/tableview/internal/web/templates"
)

// tableSummary describes one registered table and its column catalog.
type tableSummary struct {
	core.TableInfo
	MinVisible int           `json:"min_visible"`
	Columns    []core.Column `json:"columns"`
}

// tableGroup is one menu group of tables.
type tableGroup struct {
	Group  string         `json:"group"`
	Tables []tableSummary `json:"tables"`
}

// handleListTables returns all registered tables grouped for the menu.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	groups := make([]tableGroup, 0, len(core.Groups()))
	for _, group := range core.Groups() {
		defs := core.ByGroup(group)
		tg := tableGroup{Group: group, Tables: make([]tableSummary, len(defs))}
		for i, def := range defs {
			tg.Tables[i] = tableSummary{
				TableInfo:  def.Info,
				MinVisible: def.MinVisible,
				Columns:    def.Catalog.Columns,
			}
		}
		groups = append(groups, tg)
	}
	writeJSON(w, http.StatusOK, groups)
}

// handleTableView returns the session's current view of a table: rows from
// the last search, sorted and paginated, projected onto visible columns.
func (s *Server) handleTableView(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.GetTableView(r.Context(), sessionID(r), tableKey(r), viewQuery(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	s.renderView(w, r, http.StatusOK, view)
}

// renderView writes a view as an HTMX fragment or JSON.
func (s *Server) renderView(w http.ResponseWriter, r *http.Request, status int, view *core.TableViewResult) {
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		templates.TableView(view).Render(r.Context(), w)
		return
	}
	writeJSON(w, status, view)
}

// handleNotifications drains the session's pending notifications.
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	items := s.service.Notifications(sessionID(r))
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.Notifications(items).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": items})
}

// healthResponse is the /healthz payload.
type healthResponse struct {
	Status   string                   `json:"status"`
	Tables   int                      `json:"tables"`
	Sessions int                      `json:"sessions"`
	Exports  core.ExportLimiterStatus `json:"exports"`
	Checks   map[string]string        `json:"checks,omitempty"`
}

// handleHealth reports liveness plus the result of each dependency check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Tables:   core.TableCount(),
		Sessions: s.service.SessionCount(),
		Exports:  s.service.ExportLimiterStatus(),
	}

	status := http.StatusOK
	if len(s.checks) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp.Checks = make(map[string]string, len(s.checks))
		for name, check := range s.checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}
	writeJSON(w, status, resp)
}
