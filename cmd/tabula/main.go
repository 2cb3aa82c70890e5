// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/tabula"
	"github.com/poiesic/tabula/config"
	"github.com/urfave/cli/v2"
)

// openApp builds the facade from the resolved configuration.
var openApp = func(cfg *config.Config) (*tabula.Tabula, error) {
	return tabula.New(cfg, tabula.WithLogger(slog.Default()))
}

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "tabula",
		Usage: "Ask questions about CSV and XLSX reports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Build the vector index from tabular files",
				ArgsUsage: "FILES...",
				Action:    ingestCommand,
				Flags: append(commonFlags(),
					&cli.BoolFlag{
						Name:  "append",
						Usage: "Merge into the existing index instead of replacing it",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Print throughput while ingesting",
					},
				),
			},
			{
				Name:      "ask",
				Usage:     "Answer a single question",
				ArgsUsage: "QUESTION...",
				Action:    askCommand,
				Flags:     commonFlags(),
			},
			{
				Name:   "chat",
				Usage:  "Start an interactive session (/reset, /history, /quit)",
				Action: chatCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:  "transcript",
						Usage: "Write the conversation to this file on exit",
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Rebuild the index with the configured embedding model",
				Action: reembedCommand,
				Flags: append(commonFlags(),
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Print throughput while reembedding",
					},
				),
			},
			{
				Name:   "inspect",
				Usage:  "Show the manifest of a persisted index",
				Action: inspectCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "index",
						Aliases:  []string{"i"},
						Usage:    "Path to the index directory",
						Required: true,
					},
				},
			},
		},
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration file",
		},
		&cli.StringFlag{
			Name:    "index",
			Aliases: []string{"i"},
			Usage:   "Path to the index directory (overrides index_dir)",
		},
		&cli.StringFlag{
			Name:  "provider",
			Usage: "Model provider: openai or ollama",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
		},
		&cli.StringFlag{
			Name:  "completion-host",
			Usage: "Completion service host URL",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
		&cli.StringFlag{
			Name:  "completion-model",
			Usage: "Completion model name",
		},
	}
}

// loadConfig reads --config and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"index", &cfg.IndexDir},
		{"provider", &cfg.AI.Provider},
		{"embedding-host", &cfg.AI.EmbeddingHost},
		{"completion-host", &cfg.AI.CompletionHost},
		{"embedding-model", &cfg.AI.EmbeddingModel},
		{"completion-model", &cfg.AI.CompletionModel},
	}
	for _, o := range overrides {
		if c.IsSet(o.flag) {
			*o.target = c.String(o.flag)
		}
	}
	return cfg, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
