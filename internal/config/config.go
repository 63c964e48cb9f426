// Package config provides configuration loading for docscope.
package config

import (
	"errors"
	"fmt"

	"github.com/fulcrumlabs/docscope/internal/embeddings"
	"github.com/fulcrumlabs/docscope/internal/llm"
)

// ErrInvalidConfig indicates invalid configuration values.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete docscope configuration.
type Config struct {
	Store      StoreConfig       `koanf:"store"`
	Embeddings embeddings.Config `koanf:"embeddings"`
	LLM        llm.Config        `koanf:"llm"`
	Segment    SegmentConfig     `koanf:"segment"`
	Retrieval  RetrievalConfig   `koanf:"retrieval"`
	Logging    LoggingConfig     `koanf:"logging"`
}

// StoreConfig selects and configures the index store backend.
type StoreConfig struct {
	// Provider is "chromem" (embedded, default) or "qdrant".
	Provider string `koanf:"provider"`

	Chromem ChromemConfig `koanf:"chromem"`
	Qdrant  QdrantConfig  `koanf:"qdrant"`

	// Lambda is the diversity weight in [0, 1] used when re-ranking query
	// results. Unset means 0.5; an explicit zero ranks by pure similarity.
	Lambda *float32 `koanf:"lambda"`
}

// ChromemConfig configures the embedded chromem-go backend.
type ChromemConfig struct {
	Path     string `koanf:"path"`
	Compress bool   `koanf:"compress"`
}

// QdrantConfig configures the qdrant gRPC backend.
type QdrantConfig struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	VectorSize uint64 `koanf:"vector_size"`
	UseTLS     bool   `koanf:"use_tls"`
}

// SegmentConfig configures document segmentation.
type SegmentConfig struct {
	Window  int `koanf:"window"`
	Overlap int `koanf:"overlap"`
}

// RetrievalConfig configures query result sizing.
type RetrievalConfig struct {
	K      int `koanf:"k"`
	FetchK int `koanf:"fetch_k"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is "json" or "console".
	Format string `koanf:"format"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Store.Provider == "" {
		cfg.Store.Provider = "chromem"
	}
	if cfg.Store.Chromem.Path == "" {
		cfg.Store.Chromem.Path = "~/.local/share/docscope/index"
	}
	if cfg.Store.Qdrant.Host == "" {
		cfg.Store.Qdrant.Host = "localhost"
	}
	if cfg.Store.Qdrant.Port == 0 {
		cfg.Store.Qdrant.Port = 6334
	}
	if cfg.Store.Qdrant.VectorSize == 0 {
		cfg.Store.Qdrant.VectorSize = 384 // bge-small-en-v1.5 dimensions
	}
	if cfg.Store.Lambda == nil {
		lambda := float32(0.5)
		cfg.Store.Lambda = &lambda
	}

	if cfg.Embeddings.Provider == "" {
		cfg.Embeddings.Provider = "tei"
	}
	if cfg.Embeddings.BaseURL == "" {
		cfg.Embeddings.BaseURL = "http://localhost:8080"
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = "BAAI/bge-small-en-v1.5"
	}

	cfg.LLM.ApplyDefaults()

	if cfg.Segment.Window == 0 {
		cfg.Segment.Window = 400
	}
	if cfg.Segment.Overlap == 0 {
		cfg.Segment.Overlap = 100
	}

	if cfg.Retrieval.K == 0 {
		cfg.Retrieval.K = 5
	}
	if cfg.Retrieval.FetchK == 0 {
		cfg.Retrieval.FetchK = 20
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	switch c.Store.Provider {
	case "chromem", "qdrant":
	default:
		return fmt.Errorf("%w: unknown store provider %q", ErrInvalidConfig, c.Store.Provider)
	}

	if c.Store.Lambda != nil && (*c.Store.Lambda < 0 || *c.Store.Lambda > 1) {
		return fmt.Errorf("%w: store lambda must be in [0, 1], got %v", ErrInvalidConfig, *c.Store.Lambda)
	}

	if c.Segment.Overlap < 0 || c.Segment.Window <= 0 || c.Segment.Overlap >= c.Segment.Window {
		return fmt.Errorf("%w: segment overlap must be in [0, window)", ErrInvalidConfig)
	}

	if c.Retrieval.K <= 0 || c.Retrieval.FetchK <= 0 || c.Retrieval.K > c.Retrieval.FetchK {
		return fmt.Errorf("%w: retrieval requires 0 < k <= fetch_k", ErrInvalidConfig)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Logging.Format)
	}

	return nil
}
