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


// Package tabula answers natural-language questions about CSV and XLSX
// reports.
//
// A Tabula value wires a config.Config to a model provider and hands out
// the pieces of the system: ingestion pipelines that build and persist the
// vector index, and conversation engines that answer questions from it.
//
//	cfg, _ := config.Load("tabula.yaml")
//	app, err := tabula.New(cfg)
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//
//	pipeline, _ := app.NewPipeline()
//	report, err := pipeline.Ingest(ctx, "sessions.csv")
//
//	idx, _, _ := app.OpenIndex(ctx)
//	engine, _ := app.NewEngine(idx)
//	answer, err := engine.Ask(ctx, "Which district ran the most sessions?")
package tabula

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/poiesic/tabula/ai"
	"github.com/poiesic/tabula/ai/ollama"
	"github.com/poiesic/tabula/ai/openai"
	"github.com/poiesic/tabula/chunking"
	"github.com/poiesic/tabula/config"
	"github.com/poiesic/tabula/conversation"
	"github.com/poiesic/tabula/core"
	"github.com/poiesic/tabula/embedding"
	"github.com/poiesic/tabula/ingestion"
	"github.com/poiesic/tabula/reembed"
	"github.com/poiesic/tabula/vectorindex"
)

// Tabula owns the model provider and the embedding clients it hands out.
// Close releases both.
type Tabula struct {
	config   *config.Config
	provider ai.AIProvider
	logger   *slog.Logger

	mu      sync.Mutex
	clients []*embedding.Client
}

// Option configures a Tabula.
type Option func(*options)

type options struct {
	provider ai.AIProvider
	logger   *slog.Logger
}

// WithProvider uses provider instead of the one selected by the ai config.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New validates cfg and creates the configured provider. A nil cfg uses
// config.Default().
func New(cfg *config.Config, opts ...Option) (*Tabula, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	options := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = NewProvider(cfg.AIConfig())
		if err != nil {
			return nil, err
		}
	}

	return &Tabula{
		config:   cfg,
		provider: provider,
		logger:   options.logger,
	}, nil
}

// NewProvider creates the provider named by cfg.Provider.
func NewProvider(cfg *ai.Config) (ai.AIProvider, error) {
	cfg.Normalize()
	switch cfg.Provider {
	case ai.ProviderOpenAI:
		return openai.NewProvider(cfg)
	case ai.ProviderOllama:
		return ollama.NewProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", core.ErrConfiguration, cfg.Provider)
	}
}

// Config returns the settings in use.
func (t *Tabula) Config() *config.Config {
	return t.config
}

// Provider returns the model provider.
func (t *Tabula) Provider() ai.AIProvider {
	return t.provider
}

// NewEmbeddingClient creates an embedding client with the configured
// retry policy, request size and concurrency. Clients are released by Close.
func (t *Tabula) NewEmbeddingClient() (*embedding.Client, error) {
	client, err := embedding.NewClient(t.provider.Embedder(),
		embedding.WithRetryPolicy(t.config.RetryPolicy()),
		embedding.WithMaxRequestSize(t.config.EmbeddingRequestSize),
		embedding.WithConcurrency(t.config.EmbeddingConcurrency),
		embedding.WithDimensions(t.config.AI.Dimensions),
		embedding.WithLogger(t.logger),
	)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.clients = append(t.clients, client)
	t.mu.Unlock()
	return client, nil
}

// NewPipeline creates an ingestion pipeline that persists into the
// configured index directory. opts are applied after the configured values.
func (t *Tabula) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	splitter, err := chunking.NewSplitter(
		chunking.WithChunkSize(t.config.ChunkSize),
		chunking.WithChunkOverlap(t.config.ChunkOverlap),
	)
	if err != nil {
		return nil, err
	}
	client, err := t.NewEmbeddingClient()
	if err != nil {
		return nil, err
	}

	base := []ingestion.Option{
		ingestion.WithBatchSize(t.config.EmbeddingBatchSize),
		ingestion.WithReadChunkSize(t.config.ReadChunkSize),
		ingestion.WithCooldown(t.config.FlushCooldown),
		ingestion.WithIndexDir(t.config.IndexDir),
		ingestion.WithManifest(t.config.AI.EmbeddingModel),
		ingestion.WithLogger(t.logger),
	}
	return ingestion.NewPipeline(client, splitter, append(base, opts...)...)
}

// OpenIndex loads the persisted index and checks that it was built with
// the configured embedding model and dimensions.
func (t *Tabula) OpenIndex(ctx context.Context) (*vectorindex.Index, *core.Manifest, error) {
	return vectorindex.Load(ctx, t.config.IndexDir, vectorindex.Expectation{
		EmbeddingModel: t.config.AI.EmbeddingModel,
		Dimensions:     t.config.AI.Dimensions,
	})
}

// Reembed rebuilds the persisted index with the configured embedding model
// and replaces the snapshot. The index may have been built with any model;
// on failure the existing snapshot is left in place.
func (t *Tabula) Reembed(ctx context.Context, progress io.Writer) (*core.Manifest, *core.Manifest, error) {
	source, previous, err := vectorindex.Load(ctx, t.config.IndexDir, vectorindex.Expectation{})
	if err != nil {
		return nil, nil, err
	}

	client, err := t.NewEmbeddingClient()
	if err != nil {
		return nil, nil, err
	}
	reembedder, err := reembed.NewReembedder(client, &reembed.Config{
		BatchSize:      t.config.EmbeddingBatchSize,
		ReportInterval: t.config.EmbeddingBatchSize,
	}, progress)
	if err != nil {
		return nil, nil, err
	}

	rebuilt, err := reembedder.Run(ctx, source)
	if err != nil {
		return nil, nil, fmt.Errorf("reembed %s: %w", t.config.IndexDir, err)
	}

	manifest := core.Manifest{EmbeddingModel: t.config.AI.EmbeddingModel}
	if err := vectorindex.Persist(context.WithoutCancel(ctx), rebuilt, t.config.IndexDir, manifest); err != nil {
		return nil, nil, err
	}
	t.logger.Info("index reembedded",
		"from", previous.EmbeddingModel,
		"to", manifest.EmbeddingModel,
		"fragments", rebuilt.Len())

	current, _, err := vectorindex.Inspect(ctx, t.config.IndexDir)
	if err != nil {
		return nil, nil, err
	}
	return previous, current, nil
}

// NewEngine starts a conversation session over idx. opts are applied
// after the configured values.
func (t *Tabula) NewEngine(idx *vectorindex.Index, opts ...conversation.Option) (*conversation.Engine, error) {
	client, err := t.NewEmbeddingClient()
	if err != nil {
		return nil, err
	}

	base := []conversation.Option{
		conversation.WithTopK(t.config.TopK),
		conversation.WithRetryPolicy(t.config.RetryPolicy()),
		conversation.WithCondenseQuestion(t.config.CondenseQuestion),
		conversation.WithSystemPrompt(t.config.SystemPrompt),
		conversation.WithLogger(t.logger),
	}
	return conversation.NewEngine(idx, client, t.provider.Completer(), append(base, opts...)...)
}

// Close releases every embedding client and the provider.
func (t *Tabula) Close() error {
	t.mu.Lock()
	clients := t.clients
	t.clients = nil
	t.mu.Unlock()

	for _, client := range clients {
		client.Release()
	}

	if err := t.provider.Close(); err != nil {
		t.logger.Error("error closing AI provider", "err", err)
		return fmt.Errorf("close provider: %w", err)
	}
	return nil
}
