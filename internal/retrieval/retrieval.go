// Package retrieval answers similarity queries against namespace-scoped
// collections.
package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fulcrumlabs/docscope/internal/index"
	"github.com/fulcrumlabs/docscope/internal/namespace"
)

const (
	// DefaultK is the number of chunks returned per query.
	DefaultK = 5
	// DefaultFetchK is the candidate pool size fetched before re-ranking.
	DefaultFetchK = 20
)

// Retriever resolves a namespace to its collection and queries the
// index store with diversity re-ranking.
type Retriever struct {
	store  index.Store
	k      int
	fetchK int
	logger *zap.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithK overrides the number of results returned.
func WithK(k int) Option { return func(r *Retriever) { r.k = k } }

// WithFetchK overrides the candidate pool size.
func WithFetchK(fetchK int) Option { return func(r *Retriever) { r.fetchK = fetchK } }

// New creates a Retriever. logger may be nil.
func New(store index.Store, logger *zap.Logger, opts ...Option) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Retriever{store: store, k: DefaultK, fetchK: DefaultFetchK, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns up to k chunks relevant to the query from the
// namespace's collection. A namespace that has never been written to
// yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, ns namespace.Namespace, query string) ([]index.ScoredChunk, error) {
	collection, err := ns.Collection()
	if err != nil {
		return nil, err
	}

	results, err := r.store.Query(ctx, collection, query, r.k, r.fetchK)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}

	r.logger.Debug("retrieval complete",
		zap.String("collection", collection),
		zap.Int("results", len(results)))
	return results, nil
}

// HasDocuments reports whether the namespace's collection has ever been
// written to. This is how callers distinguish "nothing indexed yet"
// from "indexed but no relevant matches".
func (r *Retriever) HasDocuments(ctx context.Context, ns namespace.Namespace) (bool, error) {
	collection, err := ns.Collection()
	if err != nil {
		return false, err
	}
	return r.store.CollectionExists(ctx, collection)
}
