package tabular

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/poiesic/tabula/core"
)

var (
	// ErrUnsupportedFormat is returned for file extensions without a reader.
	ErrUnsupportedFormat = errors.New("unsupported tabular format")

	// ErrNoHeader is returned when a source has no header row.
	ErrNoHeader = errors.New("missing header row")
)

// Row is one data record. Columns and Values have the same length.
type Row struct {
	Index   int // Zero-based data row index; the header is not counted
	Columns []string
	Values  []string
}

// Reader streams rows from a tabular source.
type Reader interface {
	// Columns returns the normalized header.
	Columns() []string

	// Next returns the next row, or io.EOF when the source is exhausted.
	Next() (Row, error)

	// Close releases the underlying file.
	Close() error
}

// Open picks a reader by file extension: .csv and .tsv are read as
// delimited text, .xlsx as a workbook (first sheet).
func Open(path string) (Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return OpenCSV(path, ',')
	case ".tsv":
		return OpenCSV(path, '\t')
	case ".xlsx":
		return OpenXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %w: %s", core.ErrConfiguration, ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadChunk reads up to n rows. It returns io.EOF only when no rows were read.
func ReadChunk(r Reader, n int) ([]Row, error) {
	if n <= 0 {
		n = 1
	}
	rows := make([]Row, 0, n)
	for len(rows) < n {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, io.EOF
	}
	return rows, nil
}

// EncodeRow renders a row as one "column: value" line per field, in
// column order.
func EncodeRow(row Row) string {
	var b strings.Builder
	for i, col := range row.Columns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(col)
		b.WriteString(": ")
		if i < len(row.Values) {
			b.WriteString(row.Values[i])
		}
	}
	return b.String()
}

// normalizeHeader names blank columns "column_N" (1-based) and suffixes
// repeated names with ".1", ".2", ...
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

// fitRow pads or extends a record to the header and returns the matching
// column and value slices. Extra fields get generated column names.
func fitRow(header []string, record []string) ([]string, []string) {
	if len(record) <= len(header) {
		values := make([]string, len(header))
		copy(values, record)
		return header, values
	}
	columns := make([]string, len(record))
	copy(columns, header)
	for i := len(header); i < len(record); i++ {
		columns[i] = "column_" + strconv.Itoa(i+1)
	}
	values := make([]string, len(record))
	copy(values, record)
	return columns, values
}
