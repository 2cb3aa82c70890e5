package ingestion

import "time"

// FileReport describes the outcome for one input file.
type FileReport struct {
	Path      string
	Rows      int   // data rows read
	Fragments int   // fragments merged into the index
	Batches   int   // successful embedding flushes
	Err       error // nil on success, otherwise a *core.PartialIngestionError
}

// Report summarizes an Ingest call.
type Report struct {
	Files     []FileReport
	Fragments int // total entries in the index after ingestion
	Elapsed   time.Duration
}

// Failed returns the reports of files that did not complete.
func (r *Report) Failed() []FileReport {
	var failed []FileReport
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Counts returns aggregate totals keyed by "files", "failed", "rows",
// "fragments" and "batches".
func (r *Report) Counts() map[string]int {
	counts := map[string]int{
		"files":     len(r.Files),
		"failed":    0,
		"rows":      0,
		"fragments": 0,
		"batches":   0,
	}
	for _, f := range r.Files {
		if f.Err != nil {
			counts["failed"]++
		}
		counts["rows"] += f.Rows
		counts["fragments"] += f.Fragments
		counts["batches"] += f.Batches
	}
	return counts
}
