// internal/rag/indexer.go
package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/repolens/repolens/internal/corpus"
	"github.com/repolens/repolens/internal/logging"
)

// IndexProgress reports how many chunks have been processed so far.
type IndexProgress func(processed, total int)

// Indexer expands source records into embedded chunks in fixed-size batches.
type Indexer struct {
	embedder  Embedder
	batchSize int
	chunkSize int
}

// NewIndexer creates an indexer. batchSize caps the inputs per embedding
// request; chunkSize is the paragraph-chunking target in bytes.
func NewIndexer(embedder Embedder, batchSize, chunkSize int) *Indexer {
	if batchSize <= 0 {
		batchSize = 20
	}
	if chunkSize <= 0 {
		chunkSize = 2000
	}
	return &Indexer{embedder: embedder, batchSize: batchSize, chunkSize: chunkSize}
}

type pendingChunk struct {
	text       string
	sourceFile string
}

// Index chunks every record, embeds the chunks batch by batch, and returns
// the resulting vector chunks. A failed batch is logged and skipped; its
// chunks are simply absent from the index. Cancellation stops before the
// next batch and returns what has been built together with ctx.Err().
func (ix *Indexer) Index(ctx context.Context, records []corpus.SourceRecord, kind ChunkKind, onProgress IndexProgress) ([]VectorChunk, error) {
	var pending []pendingChunk
	for _, record := range records {
		for _, text := range SplitParagraphs(record.Content, ix.chunkSize) {
			if text == "" {
				continue
			}
			pending = append(pending, pendingChunk{text: text, sourceFile: record.Path})
		}
	}

	total := len(pending)
	stamp := time.Now().UnixMilli()

	var chunks []VectorChunk
	processed := 0
	for start := 0; start < total; start += ix.batchSize {
		if err := ctx.Err(); err != nil {
			return chunks, err
		}

		end := start + ix.batchSize
		if end > total {
			end = total
		}
		batch := pending[start:end]

		inputs := make([]string, len(batch))
		for i, p := range batch {
			inputs[i] = p.text
		}

		vectors, err := ix.embedder.Embed(ctx, inputs)
		if err != nil {
			logging.Event("[index] batch %d-%d failed, skipping: %v", start, end, err)
			processed += len(batch)
			if onProgress != nil {
				onProgress(processed, total)
			}
			continue
		}

		for i, p := range batch {
			if i >= len(vectors) || vectors[i] == nil {
				continue
			}
			chunks = append(chunks, VectorChunk{
				ID:         fmt.Sprintf("%s-%d-%d", kind, stamp, start+i),
				Text:       p.text,
				SourceFile: p.sourceFile,
				Embedding:  vectors[i],
				Kind:       kind,
			})
		}

		processed += len(batch)
		if onProgress != nil {
			onProgress(processed, total)
		}
	}

	return chunks, nil
}
