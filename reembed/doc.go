// Package reembed rebuilds an existing vector index with a different
// embedding model.
//
// Fragments are already stored in the persisted index, so switching models
// does not require the source files: every fragment is embedded again in
// batches, in insertion order, and the results are collected into a new
// index with the same fragment order. The source index is not modified.
// Progress is reported as fragments per second with a known total.
package reembed
