// Package ingest turns raw document text into tagged, indexed chunks.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fulcrumlabs/docscope/internal/index"
	"github.com/fulcrumlabs/docscope/internal/namespace"
	"github.com/fulcrumlabs/docscope/internal/segment"
)

// ErrEmptyDocument is returned when the document yields no chunks.
var ErrEmptyDocument = errors.New("document is empty")

// Pipeline segments, tags, and indexes documents into namespace-scoped
// collections.
type Pipeline struct {
	segmenter *segment.Segmenter
	store     index.Store
	logger    *zap.Logger
}

// NewPipeline creates an ingestion pipeline. logger may be nil.
func NewPipeline(segmenter *segment.Segmenter, store index.Store, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{segmenter: segmenter, store: store, logger: logger}
}

// Ingest segments text, tags each chunk with the namespace identity and
// source, and writes the chunks to the namespace's collection. It
// returns the group ID shared by all chunks of this document. On any
// failure no group ID is returned; the embedding step runs before any
// write, so an embedding outage leaves the store untouched.
func (p *Pipeline) Ingest(ctx context.Context, ns namespace.Namespace, text, source string) (string, error) {
	collection, err := ns.Collection()
	if err != nil {
		return "", err
	}

	chunks := p.segmenter.Split(text)
	if len(chunks) == 0 {
		return "", ErrEmptyDocument
	}

	groupID := uuid.NewString()
	tagged := Tag(chunks, ns, groupID, source)

	ids, err := p.store.AddChunks(ctx, collection, tagged)
	if err != nil {
		return "", fmt.Errorf("indexing document: %w", err)
	}

	p.logger.Info("document ingested",
		zap.String("collection", collection),
		zap.String("group_id", groupID),
		zap.String("source", source),
		zap.Int("chunks", len(ids)))
	return groupID, nil
}
