// Package index adapts namespace-scoped chunk storage onto a vector store.
//
// A Store owns the mapping from collection name to a persistent vector
// index and exposes add/query operations scoped to one collection at a
// time. Two backends are provided: an embedded chromem-go database
// (default) and an external Qdrant server over gRPC. Both apply the same
// diversity-aware re-ranking on reads.
package index

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Sentinel errors for store operations.
var (
	// ErrInvalidParameters is returned for bad k/fetchK values.
	ErrInvalidParameters = errors.New("invalid query parameters")

	// ErrInvalidCollectionName is returned for collection names outside the
	// allowed pattern.
	ErrInvalidCollectionName = errors.New("invalid collection name")

	// ErrEmptyChunks is returned when a write carries no chunks.
	ErrEmptyChunks = errors.New("empty or nil chunks")

	// ErrEmbeddingUnavailable is returned when the embedding capability
	// fails. Retryable by the caller; this package does not retry.
	ErrEmbeddingUnavailable = errors.New("embedding capability unavailable")

	// ErrStoreWriteFailed is returned when the underlying store rejects a
	// write. Retryable by the caller.
	ErrStoreWriteFailed = errors.New("vector store write failed")

	// ErrCollectionNotFound indicates a collection that does not exist.
	// Queries treat this as an empty result set, not a failure: a namespace
	// with no uploads yet is a valid state. Use Store.CollectionExists to
	// tell the two apart.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrConnectionFailed indicates the store backend is unreachable.
	ErrConnectionFailed = errors.New("failed to connect to vector store")
)

// collectionNamePattern validates collection names: lowercase letters,
// digits and underscores, at most 64 characters.
var collectionNamePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// ValidateCollectionName rejects names the backends cannot store safely.
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidCollectionName)
	}
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: name must match ^[a-z0-9_]{1,64}$, got %q", ErrInvalidCollectionName, name)
	}
	return nil
}

// Chunk is one tagged span of document text to be embedded and stored.
type Chunk struct {
	// ID uniquely identifies the chunk within its collection.
	ID string

	// Text is the chunk content.
	Text string

	// Metadata carries provenance and scope tags: company_id, team_id or
	// project_id, group_id, source.
	Metadata map[string]string
}

// ScoredChunk is a chunk returned from a query with its similarity score.
type ScoredChunk struct {
	Chunk

	// Score is the query similarity (higher is more similar).
	Score float32
}

// Embedder converts text into dense vectors. Implementations wrap remote,
// potentially slow services; every call must honor ctx cancellation.
type Embedder interface {
	// EmbedDocuments generates one embedding per input text.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store is the namespace-isolated vector index.
//
// Writes and reads are always scoped to a single named collection and must
// never touch any other collection. Operations on different collections are
// safe to run concurrently.
type Store interface {
	// AddChunks embeds each chunk's text and appends vectors plus metadata
	// to the named collection, creating it if absent. Embedding happens
	// before any write, so an embedding failure leaves no partial state.
	// Each chunk's metadata and vector are written together; a store
	// failure mid-batch can leave earlier chunks written and later ones
	// not, but never a torn chunk.
	AddChunks(ctx context.Context, collection string, chunks []Chunk) ([]string, error)

	// Query embeds query text, fetches the fetchK nearest candidates from
	// the named collection and selects k of them by maximal marginal
	// relevance. Returns fewer than k results if the collection holds fewer
	// candidates, and an empty result set if the collection does not exist.
	// Fails with ErrInvalidParameters if k <= 0, fetchK <= 0 or k > fetchK.
	Query(ctx context.Context, collection, query string, k, fetchK int) ([]ScoredChunk, error)

	// CollectionExists reports whether the named collection exists. This is
	// the only way to distinguish an empty namespace from one that has
	// never been written to.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// Close releases backend resources.
	Close() error
}

// validateLambda bounds the MMR diversity penalty. Zero is valid and
// means pure similarity ranking.
func validateLambda(lambda float32) error {
	if lambda < 0 || lambda > 1 {
		return fmt.Errorf("%w: lambda must be in [0, 1], got %v", ErrInvalidParameters, lambda)
	}
	return nil
}

// validateQueryParams enforces the shared k/fetchK contract before any
// remote call is made.
func validateQueryParams(k, fetchK int) error {
	if k <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", ErrInvalidParameters, k)
	}
	if fetchK <= 0 {
		return fmt.Errorf("%w: fetchK must be positive, got %d", ErrInvalidParameters, fetchK)
	}
	if k > fetchK {
		return fmt.Errorf("%w: k (%d) must not exceed fetchK (%d)", ErrInvalidParameters, k, fetchK)
	}
	return nil
}
