// Package embeddings provides clients for the remote embedding capability.
//
// Two providers are supported: a TEI (Text Embeddings Inference) server via
// its native /embed endpoint, and any OpenAI-compatible embeddings API via
// langchaingo. Both implement index.Embedder and treat every call as a
// remote operation: context cancellation is honored and failures surface to
// the caller without retries.
package embeddings

import (
	"errors"
	"fmt"

	"github.com/fulcrumlabs/docscope/internal/index"
)

var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid embeddings configuration")
)

// Config holds configuration for creating an embedding provider.
type Config struct {
	// Provider selects the backend: "tei" (default) or "openai".
	Provider string `koanf:"provider"`

	// BaseURL is the endpoint base URL.
	// TEI: http://localhost:8080  OpenAI-compatible: https://api.openai.com/v1
	BaseURL string `koanf:"base_url"`

	// Model is the embedding model name.
	Model string `koanf:"model"`

	// APIKey authenticates OpenAI-compatible endpoints; optional for TEI.
	APIKey string `koanf:"api_key"`

	// MaxConcurrency caps concurrent in-flight embedding calls.
	// Zero means unlimited.
	MaxConcurrency int `koanf:"max_concurrency"`
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	switch c.Provider {
	case "", "tei", "openai":
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
	return nil
}

// New creates an embedder from the configuration, wrapped with the
// configured concurrency limit.
func New(cfg Config) (index.Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var embedder index.Embedder
	var err error
	switch cfg.Provider {
	case "", "tei":
		embedder, err = NewTEIService(cfg)
	case "openai":
		embedder, err = NewOpenAIService(cfg)
	}
	if err != nil {
		return nil, err
	}

	if cfg.MaxConcurrency > 0 {
		embedder = Limit(embedder, cfg.MaxConcurrency)
	}
	return embedder, nil
}
