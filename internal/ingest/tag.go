package ingest

import (
	"fmt"

	"github.com/fulcrumlabs/docscope/internal/index"
	"github.com/fulcrumlabs/docscope/internal/namespace"
)

// Tag attaches identity and provenance metadata to segmented chunks.
// Chunk IDs are derived from the group ID and position, so tagging the
// same inputs always yields the same IDs and re-ingestion overwrites
// rather than duplicates.
func Tag(chunks []string, ns namespace.Namespace, groupID, source string) []index.Chunk {
	tagged := make([]index.Chunk, 0, len(chunks))
	base := ns.Metadata()
	for i, text := range chunks {
		meta := make(map[string]string, len(base)+2)
		for k, v := range base {
			meta[k] = v
		}
		meta["group_id"] = groupID
		meta["source"] = source
		tagged = append(tagged, index.Chunk{
			ID:       fmt.Sprintf("%s_%d", groupID, i),
			Text:     text,
			Metadata: meta,
		})
	}
	return tagged
}
