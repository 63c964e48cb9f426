package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fulcrumlabs/docscope/internal/chat"
	"github.com/fulcrumlabs/docscope/internal/config"
	"github.com/fulcrumlabs/docscope/internal/embeddings"
	"github.com/fulcrumlabs/docscope/internal/index"
	"github.com/fulcrumlabs/docscope/internal/ingest"
	"github.com/fulcrumlabs/docscope/internal/llm"
	"github.com/fulcrumlabs/docscope/internal/logging"
	"github.com/fulcrumlabs/docscope/internal/retrieval"
	"github.com/fulcrumlabs/docscope/internal/segment"
)

// app holds the wired components a subcommand needs. Close must be
// called when done.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     index.Store
	pipeline  *ingest.Pipeline
	retriever *retrieval.Retriever
}

// newApp loads configuration and wires the store, embedder, segmenter,
// pipeline, and retriever.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.New(cfg.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}

	store, err := buildStore(cfg, embedder, logger)
	if err != nil {
		return nil, err
	}

	segmenter, err := segment.New(cfg.Segment.Window, cfg.Segment.Overlap)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		pipeline: ingest.NewPipeline(segmenter, store, logger),
		retriever: retrieval.New(store, logger,
			retrieval.WithK(cfg.Retrieval.K),
			retrieval.WithFetchK(cfg.Retrieval.FetchK)),
	}, nil
}

func buildStore(cfg *config.Config, embedder index.Embedder, logger *zap.Logger) (index.Store, error) {
	switch cfg.Store.Provider {
	case "chromem":
		return index.NewChromemStore(index.ChromemConfig{
			Path:     cfg.Store.Chromem.Path,
			Compress: cfg.Store.Chromem.Compress,
			Lambda:   cfg.Store.Lambda,
		}, embedder, logger)
	case "qdrant":
		return index.NewQdrantStore(index.QdrantConfig{
			Host:       cfg.Store.Qdrant.Host,
			Port:       cfg.Store.Qdrant.Port,
			VectorSize: cfg.Store.Qdrant.VectorSize,
			UseTLS:     cfg.Store.Qdrant.UseTLS,
			Lambda:     cfg.Store.Lambda,
		}, embedder, logger)
	default:
		return nil, fmt.Errorf("unknown store provider %q", cfg.Store.Provider)
	}
}

// orchestrator wires the generation client on top of the retriever.
// Built lazily since only ask needs an API key.
func (a *app) orchestrator() (*chat.Orchestrator, error) {
	generator, err := llm.New(a.cfg.LLM)
	if err != nil {
		return nil, err
	}
	return chat.New(a.retriever, generator, a.logger), nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", zap.Error(err))
	}
	_ = a.logger.Sync()
}
