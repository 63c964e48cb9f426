package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var chromemTracer = otel.Tracer("docscope.index.chromem")

// ChromemConfig holds configuration for the embedded chromem-go backend.
type ChromemConfig struct {
	// Path is the directory for persistent storage.
	// Default: "~/.local/share/docscope/index"
	Path string

	// Compress enables gzip compression for persisted collections.
	Compress bool

	// Lambda is the MMR diversity penalty in [0, 1]. Nil means
	// DefaultLambda; an explicit zero disables the penalty (pure
	// similarity ranking).
	Lambda *float32
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemConfig) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "~/.local/share/docscope/index"
	}
	if c.Lambda == nil {
		lambda := DefaultLambda
		c.Lambda = &lambda
	}
}

// ChromemStore implements Store on chromem-go, an embeddable pure-Go vector
// database with gob-file persistence. Each namespace maps to its own chromem
// collection, so isolation is structural: a query can only ever see the
// collection it names.
type ChromemStore struct {
	db       *chromem.DB
	embedder Embedder
	config   ChromemConfig
	lambda   float32
	logger   *zap.Logger
}

// NewChromemStore opens (or creates) the persistent database at the
// configured path.
func NewChromemStore(config ChromemConfig, embedder Embedder, logger *zap.Logger) (*ChromemStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()
	if err := validateLambda(*config.Lambda); err != nil {
		return nil, err
	}

	path, err := expandHome(config.Path)
	if err != nil {
		return nil, fmt.Errorf("expanding path: %w", err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", path, err)
	}

	db, err := chromem.NewPersistentDB(path, config.Compress)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	logger.Info("chromem index opened",
		zap.String("path", path),
		zap.Bool("compress", config.Compress),
	)

	return &ChromemStore{
		db:       db,
		embedder: embedder,
		config:   config,
		lambda:   *config.Lambda,
		logger:   logger,
	}, nil
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// embeddingFunc adapts the Embedder for chromem collection construction.
// All embeddings are produced up front, so this func only serves chromem's
// internal bookkeeping paths.
func (s *ChromemStore) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.EmbedQuery(ctx, text)
	}
}

// AddChunks embeds all chunk texts in one batch and appends them to the
// named collection, creating it on first write.
func (s *ChromemStore) AddChunks(ctx context.Context, collection string, chunks []Chunk) ([]string, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.AddChunks")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("chunk_count", len(chunks)),
	)

	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyChunks
	}

	texts := make([]string, len(chunks))
	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		if chunk.ID == "" {
			return nil, fmt.Errorf("chunk at index %d has no ID", i)
		}
		texts[i] = chunk.Text
		ids[i] = chunk.ID
	}

	// Embed before touching the store so an embedding failure is free of
	// side effects.
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	coll, err := s.db.GetOrCreateCollection(collection, nil, s.embeddingFunc())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: getting collection %s: %v", ErrStoreWriteFailed, collection, err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        chunk.ID,
			Content:   chunk.Text,
			Metadata:  chunk.Metadata,
			Embedding: vectors[i],
		}
	}

	// Concurrency 1: embeddings are precomputed, and sequential writes keep
	// the partial-write window to a clean per-chunk prefix.
	if err := coll.AddDocuments(ctx, docs, 1); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrStoreWriteFailed, err)
	}

	span.SetStatus(codes.Ok, "success")
	s.logger.Debug("chunks added",
		zap.String("collection", collection),
		zap.Int("count", len(chunks)),
	)
	return ids, nil
}

// Query fetches the fetchK nearest candidates and MMR-selects k of them.
// An absent collection yields an empty result set.
func (s *ChromemStore) Query(ctx context.Context, collection, query string, k, fetchK int) ([]ScoredChunk, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.Query")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("k", k),
		attribute.Int("fetch_k", fetchK),
	)

	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if err := validateQueryParams(k, fetchK); err != nil {
		return nil, err
	}
	if query == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", ErrInvalidParameters)
	}

	coll := s.db.GetCollection(collection, s.embeddingFunc())
	if coll == nil {
		// Not an error: a namespace with no uploads yet is a valid state.
		span.SetStatus(codes.Ok, "collection not found")
		return []ScoredChunk{}, nil
	}

	count := coll.Count()
	if count == 0 {
		return []ScoredChunk{}, nil
	}
	if fetchK > count {
		fetchK = count
	}

	queryVector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	results, err := coll.QueryEmbedding(ctx, queryVector, fetchK, nil, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying collection %s: %w", collection, err)
	}

	candidates := make([]mmrCandidate, len(results))
	for i, r := range results {
		candidates[i] = mmrCandidate{
			chunk: ScoredChunk{
				Chunk: Chunk{ID: r.ID, Text: r.Content, Metadata: r.Metadata},
				Score: r.Similarity,
			},
			vector: r.Embedding,
		}
	}
	selected := selectMMR(candidates, k, s.lambda)

	span.SetAttributes(attribute.Int("results_count", len(selected)))
	span.SetStatus(codes.Ok, "success")
	return selected, nil
}

// CollectionExists reports whether the collection has ever been written.
func (s *ChromemStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return false, err
	}
	return s.db.GetCollection(collection, s.embeddingFunc()) != nil, nil
}

// Close is a no-op: chromem persists on every write.
func (s *ChromemStore) Close() error {
	return nil
}

// Ensure ChromemStore implements Store.
var _ Store = (*ChromemStore)(nil)
