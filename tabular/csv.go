package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// CSVReader streams rows from a delimited text file.
type CSVReader struct {
	file    *os.File
	reader  *csv.Reader
	columns []string
	next    int
}

var _ Reader = (*CSVReader)(nil)

// OpenCSV opens a delimited file and reads its header.
func OpenCSV(path string, delimiter rune) (*CSVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewCSVReader(f, delimiter)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.file = f
	return r, nil
}

// NewCSVReader reads the header from src. Closing the returned reader does
// not close src.
func NewCSVReader(src io.Reader, delimiter rune) (*CSVReader, error) {
	cr := csv.NewReader(src)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, err
	}

	return &CSVReader{
		reader:  cr,
		columns: normalizeHeader(header),
	}, nil
}

// Columns returns the normalized header.
func (r *CSVReader) Columns() []string {
	return r.columns
}

// Next returns the next data row.
func (r *CSVReader) Next() (Row, error) {
	for {
		record, err := r.reader.Read()
		if err != nil {
			return Row{}, err
		}
		if isBlank(record) {
			continue
		}
		columns, values := fitRow(r.columns, record)
		row := Row{Index: r.next, Columns: columns, Values: values}
		r.next++
		return row, nil
	}
}

// Close closes the file opened by OpenCSV.
func (r *CSVReader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

func isBlank(record []string) bool {
	for _, v := range record {
		if v != "" {
			return false
		}
	}
	return true
}
