// Package export turns export requests into spreadsheet files, either
// locally with excelize or through a remote export service.
package export

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/JonMunkholm/tableview/internal/core"
	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the media type of generated workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DefaultSheetName is used when XLSXExporter.SheetName is empty.
const DefaultSheetName = "Data"

// Column width bounds, in characters.
const (
	minColWidth = 8
	maxColWidth = 60
)

// XLSXExporter builds a single-sheet workbook: a bold header row of column
// titles followed by one row per record, in column order.
type XLSXExporter struct {
	SheetName string
	Now       func() time.Time
}

// NewXLSXExporter returns an exporter writing to the named sheet.
func NewXLSXExporter(sheetName string) *XLSXExporter {
	return &XLSXExporter{SheetName: sheetName, Now: time.Now}
}

func (e *XLSXExporter) sheet() string {
	if e.SheetName == "" {
		return DefaultSheetName
	}
	return e.SheetName
}

func (e *XLSXExporter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Export implements core.Exporter.
func (e *XLSXExporter) Export(ctx context.Context, req core.ExportRequest) (core.Artifact, error) {
	if len(req.Columns) == 0 {
		return core.Artifact{}, core.ErrNoColumns
	}

	data, err := e.build(ctx, req)
	if err != nil {
		return core.Artifact{}, fmt.Errorf("%w: %w", core.ErrExportFailed, err)
	}

	created := e.now()
	return core.Artifact{
		Filename:    core.ExportFilename(req.Name, "xlsx", created),
		ContentType: ContentTypeXLSX,
		Data:        data,
		CreatedAt:   created,
	}, nil
}

func (e *XLSXExporter) build(ctx context.Context, req core.ExportRequest) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := e.sheet()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	// Built-in format 14 renders the serial as a short date.
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return nil, fmt.Errorf("date style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, fmt.Errorf("stream writer: %w", err)
	}

	// Widths must be set before the first row is streamed.
	for i, w := range columnWidths(req) {
		if err := sw.SetColWidth(i+1, i+1, w); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}

	header := make([]any, len(req.Columns))
	for i, col := range req.Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: col.Title}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for r, record := range req.Rows {
		if r%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		values := make([]any, len(req.Columns))
		for i, col := range req.Columns {
			values[i] = cellValue(record[col.Field], dateStyle)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// cellValue keeps numbers, booleans and dates typed; everything else is
// written as its display text.
func cellValue(v any, dateStyle int) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, bool, string:
		return x
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return excelize.Cell{StyleID: dateStyle, Value: x}
	default:
		return core.CellText(x)
	}
}

// columnWidths sizes each column to its longest header or cell text.
func columnWidths(req core.ExportRequest) []float64 {
	widths := make([]int, len(req.Columns))
	for i, col := range req.Columns {
		widths[i] = utf8.RuneCountInString(col.Title)
	}
	for _, record := range req.Rows {
		for i, col := range req.Columns {
			if n := utf8.RuneCountInString(core.CellText(record[col.Field])); n > widths[i] {
				widths[i] = n
			}
		}
	}

	out := make([]float64, len(widths))
	for i, w := range widths {
		out[i] = float64(min(max(w+2, minColWidth), maxColWidth))
	}
	return out
}
