// Package csvfile extracts the raw park log from a CSV file.
package csvfile

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/wildlife-park-etl/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Reader loads a CSV file into a domain.RawTable.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a Reader for the file at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Extract reads the whole file. Every cell is kept as text; numeric
// coercion and sentinel handling belong to the cleaner.
func (r *Reader) Extract(ctx context.Context) (domain.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawTable{}, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		return domain.RawTable{}, &domain.InputError{Op: "csvfile", Msg: "open input", Err: err}
	}
	defer f.Close()

	table, err := ReadTable(f)
	if err != nil {
		return domain.RawTable{}, err
	}
	r.logger.Debug("csv loaded", "path", r.path, "columns", len(table.Header), "rows", len(table.Rows))
	return table, nil
}

// ReadTable parses CSV from rd. The first record is the header.
func ReadTable(rd io.Reader) (domain.RawTable, error) {
	df := dataframe.ReadCSV(rd,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return domain.RawTable{}, &domain.InputError{Op: "csvfile", Msg: "parse csv", Err: df.Err}
	}

	records := df.Records()
	if len(records) == 0 {
		return domain.RawTable{}, &domain.InputError{Op: "csvfile", Msg: "empty input: no header"}
	}
	return domain.RawTable{Header: records[0], Rows: records[1:]}, nil
}
