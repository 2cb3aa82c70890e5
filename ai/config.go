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


package ai

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/poiesic/tabula/core"
)

// Provider names a backend family for embeddings and completions.
type Provider string

const (
	// ProviderOpenAI talks to OpenAI or any OpenAI-compatible server.
	ProviderOpenAI Provider = "openai"
	// ProviderOllama talks to an Ollama server through its native API.
	ProviderOllama Provider = "ollama"
)

// APIKeyEnv is consulted when no API key is configured.
const APIKeyEnv = "OPENAI_API_KEY"

const (
	defaultOpenAIHost = "https://api.openai.com/v1"
	defaultOllamaHost = "http://localhost:11434"
)

// Config holds configuration for AI service providers.
type Config struct {
	// Provider selects the backend. Default: openai
	Provider Provider

	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "https://api.openai.com/v1", "http://localhost:11434"
	EmbeddingHost string

	// CompletionHost is the base URL for the chat completion service API.
	CompletionHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "text-embedding-3-small", "nomic-embed-text"
	EmbeddingModel string

	// CompletionModel is the model identifier to use for answers.
	// Example: "gpt-4o-mini", "qwen2.5:3b"
	CompletionModel string

	// APIKey authenticates against OpenAI. Falls back to $OPENAI_API_KEY.
	APIKey string

	// Dimensions is the expected embedding length. Zero accepts whatever
	// the model returns first.
	Dimensions int

	// Temperature is the sampling temperature for completions. Default: 0
	Temperature float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider sets the backend family.
func WithProvider(p Provider) ConfigOption {
	return func(c *Config) {
		c.Provider = p
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithCompletionHost sets the completion service host URL.
func WithCompletionHost(host string) ConfigOption {
	return func(c *Config) {
		c.CompletionHost = host
	}
}

// WithHost sets both embedding and completion hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.CompletionHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithCompletionModel sets the completion model identifier.
func WithCompletionModel(model string) ConfigOption {
	return func(c *Config) {
		c.CompletionModel = model
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithDimensions sets the expected embedding dimensionality.
func WithDimensions(n int) ConfigOption {
	return func(c *Config) {
		c.Dimensions = n
	}
}

// WithTemperature sets the completion sampling temperature.
func WithTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = t
	}
}

// DefaultConfig returns a Config targeting the hosted OpenAI API.
func DefaultConfig() *Config {
	return &Config{
		Provider:        ProviderOpenAI,
		EmbeddingHost:   defaultOpenAIHost,
		CompletionHost:  defaultOpenAIHost,
		EmbeddingModel:  "text-embedding-3-small",
		CompletionModel: "gpt-4o-mini",
		Temperature:     0,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithProvider(ai.ProviderOllama),
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithEmbeddingModel("nomic-embed-text"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// Empty hosts default to the provider's usual address.
// OpenAI-compatible hosts get a /v1 suffix; Ollama hosts lose it, since the
// native client appends its own paths. An empty API key is filled from the
// environment.
func (c *Config) Normalize() {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	c.Provider = Provider(strings.ToLower(string(c.Provider)))

	if c.EmbeddingHost == "" {
		c.EmbeddingHost = c.defaultHost()
	}
	if c.CompletionHost == "" {
		c.CompletionHost = c.defaultHost()
	}

	switch c.Provider {
	case ProviderOpenAI:
		c.EmbeddingHost = withV1(c.EmbeddingHost)
		c.CompletionHost = withV1(c.CompletionHost)
	case ProviderOllama:
		c.EmbeddingHost = withoutV1(c.EmbeddingHost)
		c.CompletionHost = withoutV1(c.CompletionHost)
	}

	if c.APIKey == "" {
		c.APIKey = os.Getenv(APIKeyEnv)
	}
}

func (c *Config) defaultHost() string {
	switch c.Provider {
	case ProviderOpenAI:
		return defaultOpenAIHost
	case ProviderOllama:
		return defaultOllamaHost
	default:
		return ""
	}
}

func withV1(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

func withoutV1(host string) string {
	host = strings.TrimSuffix(host, "/")
	return strings.TrimSuffix(host, "/v1")
}

// RequiresAPIKey reports whether the configured hosts need real credentials.
// Local OpenAI-compatible servers accept any token.
func (c *Config) RequiresAPIKey() bool {
	if c.Provider != ProviderOpenAI {
		return false
	}
	for _, host := range []string{c.EmbeddingHost, c.CompletionHost} {
		u, err := url.Parse(host)
		if err == nil && strings.HasSuffix(u.Hostname(), "openai.com") {
			return true
		}
	}
	return false
}

// Token returns the bearer token to send, or "none" for servers that do
// not authenticate.
func (c *Config) Token() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return "none"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
// All failures wrap core.ErrConfiguration.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("%w: ai config: unknown provider %q", core.ErrConfiguration, c.Provider)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("%w: ai config: EmbeddingModel is required", core.ErrConfiguration)
	}
	if c.CompletionModel == "" {
		return fmt.Errorf("%w: ai config: CompletionModel is required", core.ErrConfiguration)
	}
	if c.RequiresAPIKey() && c.APIKey == "" {
		return fmt.Errorf("%w: ai config: missing API key (set %s)", core.ErrConfiguration, APIKeyEnv)
	}
	if c.Dimensions < 0 {
		return fmt.Errorf("%w: ai config: Dimensions must not be negative", core.ErrConfiguration)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: ai config: Temperature must be between 0 and 2", core.ErrConfiguration)
	}
	return nil
}
