package embeddings

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/fulcrumlabs/docscope/internal/index"
)

// limited bounds the number of concurrent in-flight calls to a wrapped
// embedder, so many concurrent ingestions cannot overwhelm the downstream
// embedding service. Acquisition respects context cancellation.
type limited struct {
	inner index.Embedder
	sem   *semaphore.Weighted
}

// Limit wraps an embedder with a concurrency cap of n.
func Limit(inner index.Embedder, n int) index.Embedder {
	return &limited{
		inner: inner,
		sem:   semaphore.NewWeighted(int64(n)),
	}
}

func (l *limited) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.inner.EmbedDocuments(ctx, texts)
}

func (l *limited) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.inner.EmbedQuery(ctx, text)
}
