package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cand(id string, score float32, vector []float32) mmrCandidate {
	return mmrCandidate{
		chunk:  ScoredChunk{Chunk: Chunk{ID: id, Text: id}, Score: score},
		vector: vector,
	}
}

func TestSelectMMR_Empty(t *testing.T) {
	assert.Empty(t, selectMMR(nil, 5, DefaultLambda))
}

func TestSelectMMR_FewerCandidatesThanK(t *testing.T) {
	candidates := []mmrCandidate{
		cand("a", 0.9, []float32{1, 0}),
		cand("b", 0.8, []float32{0, 1}),
	}
	selected := selectMMR(candidates, 5, DefaultLambda)
	assert.Len(t, selected, 2)
}

func TestSelectMMR_FirstPickIsNearestNeighbour(t *testing.T) {
	candidates := []mmrCandidate{
		cand("best", 0.95, []float32{1, 0, 0}),
		cand("second", 0.90, []float32{0, 1, 0}),
		cand("third", 0.50, []float32{0, 0, 1}),
	}
	selected := selectMMR(candidates, 2, DefaultLambda)
	assert.Equal(t, "best", selected[0].ID)
}

func TestSelectMMR_PrefersDiverseOverNearDuplicate(t *testing.T) {
	// "duplicate" is almost identical to "best" and scores slightly above
	// "diverse"; the diversity penalty must demote it.
	candidates := []mmrCandidate{
		cand("best", 0.95, []float32{1, 0, 0}),
		cand("duplicate", 0.94, []float32{0.999, 0.04, 0}),
		cand("diverse", 0.70, []float32{0, 1, 0}),
	}
	selected := selectMMR(candidates, 2, DefaultLambda)
	assert.Equal(t, "best", selected[0].ID)
	assert.Equal(t, "diverse", selected[1].ID)
}

func TestSelectMMR_ZeroLambdaIsPureSimilarity(t *testing.T) {
	candidates := []mmrCandidate{
		cand("best", 0.95, []float32{1, 0}),
		cand("duplicate", 0.94, []float32{1, 0}),
		cand("diverse", 0.70, []float32{0, 1}),
	}
	selected := selectMMR(candidates, 2, 0)
	assert.Equal(t, "best", selected[0].ID)
	assert.Equal(t, "duplicate", selected[1].ID)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-4)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-4)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-4)
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Zero(t, cosineSimilarity(nil, nil))
}

func TestValidateQueryParams(t *testing.T) {
	assert.NoError(t, validateQueryParams(5, 20))
	assert.NoError(t, validateQueryParams(5, 5))
	assert.ErrorIs(t, validateQueryParams(0, 20), ErrInvalidParameters)
	assert.ErrorIs(t, validateQueryParams(5, 0), ErrInvalidParameters)
	assert.ErrorIs(t, validateQueryParams(25, 20), ErrInvalidParameters)
	assert.ErrorIs(t, validateQueryParams(-1, -1), ErrInvalidParameters)
}

func TestValidateLambda(t *testing.T) {
	assert.NoError(t, validateLambda(0))
	assert.NoError(t, validateLambda(0.5))
	assert.NoError(t, validateLambda(1))
	assert.ErrorIs(t, validateLambda(-0.1), ErrInvalidParameters)
	assert.ErrorIs(t, validateLambda(1.5), ErrInvalidParameters)
}

func TestLambdaDefaultsPreserveExplicitZero(t *testing.T) {
	zero := float32(0)

	ccfg := ChromemConfig{Lambda: &zero}
	ccfg.ApplyDefaults()
	assert.Equal(t, float32(0), *ccfg.Lambda, "explicit zero must survive defaulting")

	var unset ChromemConfig
	unset.ApplyDefaults()
	assert.Equal(t, DefaultLambda, *unset.Lambda)

	qcfg := QdrantConfig{Lambda: &zero, VectorSize: 4}
	qcfg.ApplyDefaults()
	assert.Equal(t, float32(0), *qcfg.Lambda)
	assert.NoError(t, qcfg.Validate())

	negative := float32(-1)
	bad := QdrantConfig{Lambda: &negative, VectorSize: 4}
	bad.ApplyDefaults()
	assert.ErrorIs(t, bad.Validate(), ErrInvalidParameters)
}

func TestValidateCollectionName(t *testing.T) {
	assert.NoError(t, ValidateCollectionName("company_1_chunks"))
	assert.ErrorIs(t, ValidateCollectionName(""), ErrInvalidCollectionName)
	assert.ErrorIs(t, ValidateCollectionName("Has-Caps"), ErrInvalidCollectionName)
	assert.ErrorIs(t, ValidateCollectionName("space name"), ErrInvalidCollectionName)
}
