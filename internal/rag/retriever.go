// internal/rag/retriever.go
package rag

import (
	"context"
	"math"
	"sort"
)

// Retrieve embeds query and returns the topK index chunks ranked by cosine
// similarity, most similar first. An empty index short-circuits without an
// embedding call, and an engine that yields no query vector returns no
// chunks; neither is an error. Ties keep index order.
func Retrieve(ctx context.Context, embedder Embedder, query string, index []VectorChunk, topK int) ([]VectorChunk, error) {
	if len(index) == 0 {
		return nil, nil
	}

	queryVec, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(queryVec) == 0 {
		return nil, nil
	}

	type scored struct {
		chunk VectorChunk
		score float64
	}

	queryNorm := vectorNorm(queryVec)
	ranked := make([]scored, len(index))
	for i, chunk := range index {
		ranked[i] = scored{chunk: chunk, score: cosineSimilarity(queryVec, chunk.Embedding, queryNorm)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if topK <= 0 {
		topK = 5
	}
	if topK > len(ranked) {
		topK = len(ranked)
	}

	result := make([]VectorChunk, topK)
	for i := 0; i < topK; i++ {
		result[i] = ranked[i].chunk
	}
	return result, nil
}

// cosineSimilarity is dot(a,b) / (||a||*||b||). A zero-magnitude vector on
// either side scores 0 rather than NaN, so degenerate embeddings rank last
// instead of poisoning the sort. Mismatched dimensions also score 0.
func cosineSimilarity(a, b []float64, normA float64) float64 {
	if normA == 0 || len(a) != len(b) {
		return 0
	}
	normB := vectorNorm(b)
	if normB == 0 {
		return 0
	}
	dot := 0.0
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (normA * normB)
}

func vectorNorm(v []float64) float64 {
	sum := 0.0
	for _, val := range v {
		sum += val * val
	}
	return math.Sqrt(sum)
}
