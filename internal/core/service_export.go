package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// limitedExporter runs an Exporter while holding an ExportLimiter slot.
type limitedExporter struct {
	limiter *ExportLimiter
	next    Exporter
}

func (e limitedExporter) Export(ctx context.Context, req ExportRequest) (Artifact, error) {
	var artifact Artifact
	err := e.limiter.Do(ctx, func(ctx context.Context) error {
		var err error
		artifact, err = e.next.Export(ctx, req)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrExportFailed) {
			return Artifact{}, err
		}
		return Artifact{}, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return artifact, nil
}

// exportSnapshot materializes the session's current rows, sorted, with
// the visible columns in display order.
func (s *Service) exportSnapshot(ctx context.Context, sessionID, tableKey string, sorts []SortSpec) (ExportRequest, error) {
	var req ExportRequest
	err := s.WithTable(ctx, sessionID, tableKey, func(ts *TableSession) error {
		rows, err := ts.CurrentRows(ctx)
		if err != nil {
			return err
		}
		if s.exportMaxRows > 0 && len(rows) > s.exportMaxRows {
			return fmt.Errorf("%w: %d rows, limit %d", ErrExportTooLarge, len(rows), s.exportMaxRows)
		}
		rows = SortRows(ts.Def.Catalog, rows, sorts, s.collation)
		req = ts.View.ExportSnapshot(tableKey, rows)
		return nil
	})
	return req, err
}

// Export builds a spreadsheet of the session's current view and waits for it.
func (s *Service) Export(ctx context.Context, sessionID, tableKey string, sorts []SortSpec) (Artifact, error) {
	req, err := s.exportSnapshot(ctx, sessionID, tableKey, sorts)
	if err != nil {
		return Artifact{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.exportTimeout)
	defer cancel()

	start := time.Now()
	artifact, err := s.ExportRequest(ctx, req)
	if err != nil {
		return Artifact{}, err
	}
	slog.Info("export complete",
		"session", sessionID,
		"table", tableKey,
		"rows", len(req.Rows),
		"columns", len(req.Columns),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return artifact, nil
}

// ExportRequest runs an already materialized request through the limiter.
func (s *Service) ExportRequest(ctx context.Context, req ExportRequest) (Artifact, error) {
	if len(req.Columns) == 0 {
		return Artifact{}, ErrNoColumns
	}
	if s.exportMaxRows > 0 && len(req.Rows) > s.exportMaxRows {
		return Artifact{}, fmt.Errorf("%w: %d rows, limit %d", ErrExportTooLarge, len(req.Rows), s.exportMaxRows)
	}
	return limitedExporter{limiter: s.limiter, next: s.exporter}.Export(ctx, req)
}

// ExportAsync snapshots the view and builds the spreadsheet in the
// background. The returned ID fetches the artifact once the session
// has been notified that it is ready.
func (s *Service) ExportAsync(ctx context.Context, sessionID, tableKey string, sorts []SortSpec) (string, error) {
	req, err := s.exportSnapshot(ctx, sessionID, tableKey, sorts)
	if err != nil {
		return "", err
	}

	sess := s.session(sessionID)
	id := newExportID()

	exportCtx, cancel := context.WithTimeout(s.bg, s.exportTimeout)
	done := DispatchExport(exportCtx, limitedExporter{limiter: s.limiter, next: s.exporter}, req, sess.notices,
		func(a Artifact) {
			a.ID = id
			sess.mu.Lock()
			sess.exports[id] = a
			sess.mu.Unlock()
		})
	go func() {
		<-done
		cancel()
	}()

	return id, nil
}

// TakeExport returns a finished async export and forgets it.
func (s *Service) TakeExport(sessionID, exportID string) (Artifact, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %s", ErrExportNotFound, exportID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	artifact, ok := sess.exports[exportID]
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %s", ErrExportNotFound, exportID)
	}
	delete(sess.exports, exportID)
	return artifact, nil
}
