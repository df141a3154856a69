package web

// This file contains shared utilities used across handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/tableview/internal/core"
	"github.com/go-chi/chi/v5"
)

// maxBodySize caps JSON request bodies, including export contracts.
const maxBodySize = 32 << 20

var errInvalidRequest = errors.New("invalid request")

// decodeJSON reads a JSON body into v. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	return nil
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseSorts parses comma-separated sort parameters from URL:
// ?sort=age,name&dir=desc,asc. Missing directions default to asc.
func parseSorts(r *http.Request) []core.SortSpec {
	sortStr := r.URL.Query().Get("sort")
	dirStr := r.URL.Query().Get("dir")

	if sortStr == "" {
		return nil
	}

	cols := strings.Split(sortStr, ",")
	dirs := strings.Split(dirStr, ",")

	var sorts []core.SortSpec
	for i, col := range cols {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		dir := "asc"
		if i < len(dirs) && strings.TrimSpace(dirs[i]) == "desc" {
			dir = "desc"
		}
		sorts = append(sorts, core.SortSpec{Column: col, Dir: dir})
		if len(sorts) >= core.MaxSortLevels {
			break
		}
	}
	return sorts
}

// viewQuery reads paging and sorting from the query string.
func viewQuery(r *http.Request) core.ViewQuery {
	return core.ViewQuery{
		Page:     parseIntParam(r, "page", 1),
		PageSize: parseIntParam(r, "page_size", 0),
		Sorts:    parseSorts(r),
	}
}

// tableKey returns the {tableKey} route parameter.
func tableKey(r *http.Request) string {
	return chi.URLParam(r, "tableKey")
}

// sessionID returns the session attached by the session middleware.
func sessionID(r *http.Request) string {
	return core.SessionIDFromContext(r.Context())
}

// writeArtifact sends a finished export as a download.
func writeArtifact(w http.ResponseWriter, a core.Artifact) {
	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(a.Data)
}
