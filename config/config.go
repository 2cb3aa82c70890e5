// Package config loads tabula settings from a YAML file.
//
// Every field has a default, so a file only needs the values it changes:
//
//	chunk_size: 1500
//	index_dir: ./Embeddings
//	ai:
//	  provider: ollama
//	  embedding_model: nomic-embed-text
//	  completion_model: qwen2.5:3b
//
// Durations are written as Go duration strings such as "4s" or "250ms".
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/poiesic/tabula/ai"
	"github.com/poiesic/tabula/core"
	"github.com/poiesic/tabula/retry"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of ingestion and conversation.
type Config struct {
	ChunkSize            int           `yaml:"chunk_size"`
	ChunkOverlap         int           `yaml:"chunk_overlap"`
	EmbeddingBatchSize   int           `yaml:"embedding_batch_size"`
	EmbeddingRequestSize int           `yaml:"embedding_request_size"`
	EmbeddingConcurrency int           `yaml:"embedding_concurrency"`
	ReadChunkSize        int           `yaml:"read_chunk_size"`
	TopK                 int           `yaml:"top_k"`
	RetryAttempts        int           `yaml:"retry_attempts"`
	BackoffBase          time.Duration `yaml:"backoff_base"`
	BackoffCap           time.Duration `yaml:"backoff_cap"`
	FlushCooldown        time.Duration `yaml:"flush_cooldown"`
	IndexDir             string        `yaml:"index_dir"`
	CondenseQuestion     bool          `yaml:"condense_question"`
	SystemPrompt         string        `yaml:"system_prompt"`
	AI                   AI            `yaml:"ai"`
}

// AI selects and configures the model provider.
type AI struct {
	Provider        string  `yaml:"provider"`
	EmbeddingHost   string  `yaml:"embedding_host"`
	CompletionHost  string  `yaml:"completion_host"`
	EmbeddingModel  string  `yaml:"embedding_model"`
	CompletionModel string  `yaml:"completion_model"`
	APIKey          string  `yaml:"api_key"`
	Dimensions      int     `yaml:"dimensions"`
	Temperature     float64 `yaml:"temperature"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ChunkSize:            2000,
		ChunkOverlap:         200,
		EmbeddingBatchSize:   100,
		EmbeddingRequestSize: 100,
		EmbeddingConcurrency: 1,
		ReadChunkSize:        2000,
		TopK:                 6,
		RetryAttempts:        3,
		BackoffBase:          4 * time.Second,
		BackoffCap:           10 * time.Second,
		FlushCooldown:        time.Second,
		IndexDir:             "Embeddings",
		AI: AI{
			Provider:        string(ai.ProviderOpenAI),
			EmbeddingModel:  "text-embedding-3-small",
			CompletionModel: "gpt-4o-mini",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML data into cfg, keeping fields the document omits.
// Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	return nil
}

// Validate checks value ranges. All failures wrap core.ErrConfiguration.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{core.ErrConfiguration}, args...)...))
		}
	}

	check(c.ChunkSize > 0, "chunk_size must be positive, got %d", c.ChunkSize)
	check(c.ChunkOverlap >= 0 && c.ChunkOverlap < c.ChunkSize,
		"chunk_overlap must be in [0, chunk_size), got %d", c.ChunkOverlap)
	check(c.EmbeddingBatchSize > 0, "embedding_batch_size must be positive, got %d", c.EmbeddingBatchSize)
	check(c.EmbeddingRequestSize > 0, "embedding_request_size must be positive, got %d", c.EmbeddingRequestSize)
	check(c.EmbeddingConcurrency > 0, "embedding_concurrency must be positive, got %d", c.EmbeddingConcurrency)
	check(c.ReadChunkSize > 0, "read_chunk_size must be positive, got %d", c.ReadChunkSize)
	check(c.TopK > 0, "top_k must be positive, got %d", c.TopK)
	check(c.FlushCooldown >= 0, "flush_cooldown must not be negative, got %s", c.FlushCooldown)
	check(c.IndexDir != "", "index_dir is required")

	if err := c.RetryPolicy().Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.AIConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RetryPolicy returns the backoff settings as a retry.Policy.
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: c.RetryAttempts,
		BaseDelay:   c.BackoffBase,
		MaxDelay:    c.BackoffCap,
	}
}

// AIConfig converts the ai block into a normalized ai.Config. Empty hosts
// take the provider's default address.
func (c *Config) AIConfig() *ai.Config {
	cfg := &ai.Config{
		Provider:        ai.Provider(c.AI.Provider),
		EmbeddingHost:   c.AI.EmbeddingHost,
		CompletionHost:  c.AI.CompletionHost,
		EmbeddingModel:  c.AI.EmbeddingModel,
		CompletionModel: c.AI.CompletionModel,
		APIKey:          c.AI.APIKey,
		Dimensions:      c.AI.Dimensions,
		Temperature:     c.AI.Temperature,
	}
	cfg.Normalize()
	return cfg
}
