package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/poiesic/tabula/conversation"
	"github.com/poiesic/tabula/core"
	"github.com/poiesic/tabula/ingestion"
	"github.com/poiesic/tabula/search"
	"github.com/poiesic/tabula/vectorindex"
	"github.com/urfave/cli/v2"
)

func ingestCommand(c *cli.Context) error {
	ctx := c.Context
	if c.NArg() == 0 {
		return fmt.Errorf("at least one input file is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	app, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	var opts []ingestion.Option
	if c.Bool("progress") {
		opts = append(opts, ingestion.WithProgress(c.App.ErrWriter))
	}
	if c.Bool("append") {
		idx, _, err := app.OpenIndex(ctx)
		switch {
		case err == nil:
			opts = append(opts, ingestion.WithIndex(idx))
		case errors.Is(err, vectorindex.ErrIndexNotFound):
			// nothing to append to yet
		default:
			return err
		}
	}

	pipeline, err := app.NewPipeline(opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	report, err := pipeline.Ingest(ctx, c.Args().Slice()...)
	if report != nil {
		printReport(c.App.Writer, report, cfg.IndexDir)
	}
	if err != nil && report != nil && len(report.Failed()) > 0 {
		return fmt.Errorf("%d of %d files failed", len(report.Failed()), len(report.Files))
	}
	return err
}

func printReport(w io.Writer, report *ingestion.Report, indexDir string) {
	for _, f := range report.Files {
		if f.Err != nil {
			fmt.Fprintf(w, "%s: FAILED after %d fragments: %v\n", f.Path, f.Fragments, errorCause(f.Err))
			continue
		}
		fmt.Fprintf(w, "%s: %d rows, %d fragments, %d batches\n", f.Path, f.Rows, f.Fragments, f.Batches)
	}
	fmt.Fprintf(w, "Index %s holds %d fragments (%s)\n", indexDir, report.Fragments, report.Elapsed.Round(time.Millisecond))
}

func errorCause(err error) error {
	var partial *core.PartialIngestionError
	if errors.As(err, &partial) {
		return partial.Err
	}
	return err
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	engine, closeApp, err := openEngine(c)
	if err != nil {
		return err
	}
	defer closeApp()

	answer, err := engine.Ask(c.Context, question)
	if err != nil {
		return err
	}
	printAnswer(c.App.Writer, answer)
	return nil
}

func chatCommand(c *cli.Context) error {
	engine, closeApp, err := openEngine(c)
	if err != nil {
		return err
	}
	defer closeApp()

	out := c.App.Writer
	runErr := chatLoop(c.Context, engine, c.App.Reader, out)

	if path := c.String("transcript"); path != "" {
		if err := os.WriteFile(path, []byte(engine.Transcript()), 0644); err != nil {
			return errors.Join(runErr, fmt.Errorf("write transcript: %w", err))
		}
		fmt.Fprintf(out, "Transcript written to %s\n", path)
	}
	return runErr
}

// chatLoop reads one question per line until /quit or end of input.
func chatLoop(ctx context.Context, engine *conversation.Engine, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Ask a question about your data. Commands: /reset, /history, /quit")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			engine.Reset()
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		case "/history":
			if engine.State() == conversation.StateEmpty {
				fmt.Fprintln(out, "No questions yet.")
			} else {
				fmt.Fprint(out, engine.Transcript())
			}
			continue
		}

		answer, err := engine.Ask(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		printAnswer(out, answer)
	}
}

func printAnswer(w io.Writer, answer *conversation.Answer) {
	fmt.Fprintln(w, answer.Text)
	if len(answer.Sources) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for i, f := range answer.Sources {
		fmt.Fprintf(w, "  %d. %s row %d", i+1, f.SourceName(), f.Metadata.RowIndex+1)
		if f.Metadata.SplitIndex > 0 {
			fmt.Fprintf(w, " (part %d)", f.Metadata.SplitIndex+1)
		}
		fmt.Fprintln(w)
	}
}

// openEngine loads the index and starts a session. The returned func
// releases the facade.
func openEngine(c *cli.Context) (*conversation.Engine, func(), error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	app, err := openApp(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeApp := func() { app.Close() }

	idx, _, err := app.OpenIndex(c.Context)
	if err != nil {
		closeApp()
		return nil, nil, err
	}

	var opts []conversation.Option
	if c.String("log-level") == "debug" {
		opts = append(opts, conversation.WithSearchMonitor(&search.LogMonitor{}))
	}
	engine, err := app.NewEngine(idx, opts...)
	if err != nil {
		closeApp()
		return nil, nil, err
	}
	return engine, closeApp, nil
}

func reembedCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	app, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	var progress io.Writer
	if c.Bool("progress") {
		progress = c.App.ErrWriter
	}
	previous, current, err := app.Reembed(c.Context, progress)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Reembedded %d fragments: %s (%d dimensions) -> %s (%d dimensions)\n",
		current.Count, previous.EmbeddingModel, previous.Dimensions, current.EmbeddingModel, current.Dimensions)
	return nil
}

func inspectCommand(c *cli.Context) error {
	manifest, count, err := vectorindex.Inspect(c.Context, c.String("index"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Embedding model: %s\n", manifest.EmbeddingModel)
	fmt.Fprintf(w, "Dimensions:      %d\n", manifest.Dimensions)
	fmt.Fprintf(w, "Metric:          %s\n", manifest.Metric)
	fmt.Fprintf(w, "Fragments:       %d\n", manifest.Count)
	fmt.Fprintf(w, "Stored entries:  %d\n", count)
	fmt.Fprintf(w, "Created:         %s\n", manifest.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}
