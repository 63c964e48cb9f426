// Package indextest provides a deterministic in-process embedder for tests.
package indextest

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"sync/atomic"
)

// Dimension is the vector size produced by TokenEmbedder.
const Dimension = 64

// TokenEmbedder is a deterministic bag-of-words embedder. Texts sharing
// tokens embed to similar vectors, which is enough signal for similarity
// search in tests without any model or network.
//
// Err, when set, is returned from every call, simulating an unavailable
// embedding capability.
type TokenEmbedder struct {
	mu  sync.Mutex
	Err error

	// Calls counts embedding invocations.
	Calls atomic.Int64
}

// EmbedDocuments generates one embedding per input text.
func (e *TokenEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.Calls.Add(1)
	if err := e.fail(ctx); err != nil {
		return nil, err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = embedTokens(text)
	}
	return vectors, nil
}

// EmbedQuery generates an embedding for a single query.
func (e *TokenEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.Calls.Add(1)
	if err := e.fail(ctx); err != nil {
		return nil, err
	}
	return embedTokens(text), nil
}

func (e *TokenEmbedder) fail(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Err
}

// SetErr makes all subsequent calls fail with err (nil to recover).
func (e *TokenEmbedder) SetErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Err = err
}

// embedTokens maps each lowercased token onto a dimension and normalizes
// the resulting counts to a unit vector.
func embedTokens(text string) []float32 {
	vector := make([]float32, Dimension)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?\"'()")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vector[h.Sum32()%Dimension]++
	}

	var sumSq float64
	for _, v := range vector {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		// Zero vectors break cosine similarity; give empty text a fixed
		// direction instead.
		vector[0] = 1
		return vector
	}
	norm := float32(1 / math.Sqrt(sumSq))
	for i := range vector {
		vector[i] *= norm
	}
	return vector
}
