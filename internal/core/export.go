package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ExportSnapshot materializes rows and the currently visible columns, in
// display order, into an ExportRequest. The snapshot does not alias view
// state, so it may be handed to another goroutine.
func (v *TableViewState) ExportSnapshot(name string, rows []Row) ExportRequest {
	return BuildExportRequest(name, v.catalog, v.VisibleOrderedColumns(), rows)
}

// BuildExportRequest reads each column's field from every row.
func BuildExportRequest(name string, catalog Catalog, columns []Column, rows []Row) ExportRequest {
	req := ExportRequest{
		Name:    name,
		Columns: make([]ExportColumn, len(columns)),
		Rows:    make([]map[string]any, 0, len(rows)),
	}
	for i, col := range columns {
		req.Columns[i] = ExportColumn{Title: col.Title, Field: col.Field}
	}
	for _, row := range rows {
		record := make(map[string]any, len(columns))
		for _, col := range columns {
			if get, ok := catalog.Accessors[col.Field]; ok {
				record[col.Field] = get(row)
			}
		}
		req.Rows = append(req.Rows, record)
	}
	return req
}

// ExportFilename returns "<name>_<timestamp>.<ext>".
func ExportFilename(name, ext string, at time.Time) string {
	if name == "" {
		name = "export"
	}
	return fmt.Sprintf("%s_%s.%s", name, at.Format("20060102_150405"), ext)
}

// DispatchExport runs exporter in the background and reports the outcome
// through notifier. On success the artifact is passed to sink. The caller
// does not wait; done is closed when the export finishes (nil is fine to
// ignore).
func DispatchExport(ctx context.Context, exporter Exporter, req ExportRequest, notifier Notifier, sink func(Artifact)) (done <-chan struct{}) {
	ch := make(chan struct{})
	logger := slog.Default().With("export", req.Name, "rows", len(req.Rows))

	go func() {
		defer close(ch)

		artifact, err := exporter.Export(ctx, req)
		if err != nil {
			logger.Warn("export failed", "error", err)
			notifyError(notifier, err)
			return
		}

		if sink != nil {
			sink(artifact)
		}
		logger.Info("export ready", "file", artifact.Filename, "bytes", len(artifact.Data))
		if notifier != nil {
			notifier.Notify(Notification{
				Level:   LevelInfo,
				Code:    "EXP000",
				Message: "Export ready: " + artifact.Filename,
				Time:    time.Now(),
			})
		}
	}()

	return ch
}
