// Package ingestion turns tabular files into a searchable vector index.
//
// A Pipeline streams each file in read chunks, encodes every row as
// "column: value" lines, splits the text into fragments and accumulates them
// in a buffer. Every time the buffer holds a full batch it is embedded,
// built into a small index and merged into the running index. Files are
// processed strictly one after another, and a short cooldown separates
// consecutive embedding flushes.
//
// A failing flush stops the current file only. Batches merged before the
// failure are kept, the failure is recorded in the Report as a
// core.PartialIngestionError, and the next file is processed. Once all
// files are done the running index is persisted when an index directory
// is configured.
//
// Basic usage:
//
//	client, _ := embedding.NewClient(provider.Embedder())
//	splitter, _ := chunking.NewSplitter()
//	pipeline, err := ingestion.NewPipeline(client, splitter,
//		ingestion.WithIndexDir("Embeddings"),
//		ingestion.WithManifest("text-embedding-3-small"))
//	if err != nil {
//		return err
//	}
//	defer pipeline.Release()
//
//	report, err := pipeline.Ingest(ctx, "sessions.csv", "journey.xlsx")
package ingestion
