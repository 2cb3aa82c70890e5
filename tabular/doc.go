// Package tabular streams rows out of CSV files and XLSX workbooks and
// encodes them as field-ordered "column: value" text.
//
// The first row of a source is its header. Columns keep their source order,
// so the encoded text of a row is deterministic.
package tabular
