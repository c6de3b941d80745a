// internal/rag/types.go
// Package rag implements the chunk, embed, and retrieve pipeline that grounds
// generation steps in repository text.
package rag

import "context"

// ChunkKind tags a chunk's provenance: the analyzed repository itself or an
// external reference repository.
type ChunkKind string

const (
	KindMain      ChunkKind = "main"
	KindReference ChunkKind = "reference"
)

// VectorChunk is one indexed unit of text with its embedding. All embeddings
// in one index share the dimensionality the embedding model produces.
// Chunks are append-only: indexing a new corpus never mutates existing ones.
type VectorChunk struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	SourceFile string    `json:"source_file"`
	Embedding  []float64 `json:"embedding"`
	Kind       ChunkKind `json:"kind"`
}

// Embedder is the embedding engine surface the pipeline needs. Embed returns
// one position per input in input order; a nil position means the engine
// produced no vector for that item.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float64, error)
	EmbedQuery(ctx context.Context, query string) ([]float64, error)
}
