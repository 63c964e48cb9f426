package index

import "math"

// DefaultLambda is the default diversity penalty for MMR re-ranking.
// 0 disables the penalty (pure similarity ranking); larger values push the
// selection toward mutually dissimilar chunks.
const DefaultLambda float32 = 0.5

// mmrCandidate pairs a scored chunk with its stored embedding so the
// diversity penalty can be computed without re-embedding.
type mmrCandidate struct {
	chunk  ScoredChunk
	vector []float32
}

// selectMMR picks k candidates by maximal marginal relevance: at each step
// the candidate maximizing score - lambda*max(sim to already chosen) wins.
// Candidates are expected in descending score order, so the first pick is
// the nearest neighbour. Returns fewer than k when the pool is smaller.
func selectMMR(candidates []mmrCandidate, k int, lambda float32) []ScoredChunk {
	if len(candidates) == 0 {
		return []ScoredChunk{}
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	selected := make([]ScoredChunk, 0, k)
	chosenVectors := make([][]float32, 0, k)
	remaining := make([]mmrCandidate, len(candidates))
	copy(remaining, candidates)

	for len(selected) < k {
		best := -1
		var bestMarginal float32
		for i, cand := range remaining {
			marginal := cand.chunk.Score - lambda*maxSimilarity(cand.vector, chosenVectors)
			if best == -1 || marginal > bestMarginal {
				best = i
				bestMarginal = marginal
			}
		}
		selected = append(selected, remaining[best].chunk)
		chosenVectors = append(chosenVectors, remaining[best].vector)
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	return selected
}

// maxSimilarity returns the largest cosine similarity between v and any of
// the chosen vectors, or 0 when none have been chosen yet.
func maxSimilarity(v []float32, chosen [][]float32) float32 {
	var max float32
	for i, c := range chosen {
		sim := cosineSimilarity(v, c)
		if i == 0 || sim > max {
			max = sim
		}
	}
	return max
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / float32(math.Sqrt(float64(normA))*math.Sqrt(float64(normB)))
}
