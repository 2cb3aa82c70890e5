package tabular

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXReader streams rows from the first sheet of a workbook.
type XLSXReader struct {
	file    *excelize.File
	rows    *excelize.Rows
	columns []string
	next    int
}

var _ Reader = (*XLSXReader)(nil)

// OpenXLSX opens a workbook and reads the header of its first sheet.
func OpenXLSX(path string) (*XLSXReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNoHeader)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, err
	}

	r := &XLSXReader{file: f, rows: rows}
	header, err := r.readRecord()
	if err != nil {
		r.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoHeader)
		}
		return nil, err
	}
	r.columns = normalizeHeader(header)
	return r, nil
}

// Columns returns the normalized header.
func (r *XLSXReader) Columns() []string {
	return r.columns
}

// Next returns the next data row.
func (r *XLSXReader) Next() (Row, error) {
	for {
		record, err := r.readRecord()
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

func (r *XLSXReader) readRecord() ([]string, error) {
	if !r.rows.Next() {
		if err := r.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return r.rows.Columns()
}

// Close releases the row iterator and the workbook.
func (r *XLSXReader) Close() error {
	var errs []error
	if r.rows != nil {
		errs = append(errs, r.rows.Close())
	}
	errs = append(errs, r.file.Close())
	return errors.Join(errs...)
}
