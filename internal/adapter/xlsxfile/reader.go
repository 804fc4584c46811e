// Package xlsxfile extracts the raw park log from an Excel workbook.
package xlsxfile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/wildlife-park-etl/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Reader loads one worksheet of an .xlsx workbook into a domain.RawTable.
type Reader struct {
	path   string
	sheet  string
	logger *slog.Logger
}

// NewReader creates a Reader for the workbook at path. An empty sheet name
// selects the first worksheet.
func NewReader(path, sheet string, logger *slog.Logger) *Reader {
	return &Reader{path: path, sheet: sheet, logger: logger}
}

// Extract reads the worksheet as formatted text. The first non-blank row is
// the header; data rows are padded to the header width and blank rows are
// skipped.
func (r *Reader) Extract(ctx context.Context) (domain.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawTable{}, err
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return domain.RawTable{}, &domain.InputError{Op: "xlsxfile", Msg: "open workbook", Err: err}
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return domain.RawTable{}, &domain.InputError{Op: "xlsxfile", Msg: "workbook has no worksheets"}
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return domain.RawTable{}, &domain.InputError{Op: "xlsxfile", Msg: fmt.Sprintf("read sheet %q", sheet), Err: err}
	}

	table := toTable(rows)
	r.logger.Debug("xlsx loaded", "path", r.path, "sheet", sheet, "columns", len(table.Header), "rows", len(table.Rows))
	return table, nil
}

func toTable(rows [][]string) domain.RawTable {
	var table domain.RawTable
	for _, row := range rows {
		if blank(row) {
			continue
		}
		if table.Header == nil {
			table.Header = row
			continue
		}
		if len(row) < len(table.Header) {
			padded := make([]string, len(table.Header))
			copy(padded, row)
			row = padded
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
