package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/repolens/repolens/internal/corpus"
)

// fakeEmbedder returns deterministic vectors and records every batch it saw.
type fakeEmbedder struct {
	batches   [][]string
	queryVec  []float64
	queries   int
	failBatch int // 1-based batch number to fail; 0 fails nothing
}

func (f *fakeEmbedder) Embed(_ context.Context, inputs []string) ([][]float64, error) {
	f.batches = append(f.batches, inputs)
	if f.failBatch > 0 && len(f.batches) == f.failBatch {
		return nil, errors.New("embedding backend unavailable")
	}
	vectors := make([][]float64, len(inputs))
	for i := range inputs {
		vectors[i] = []float64{float64(len(inputs[i])), 1}
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float64, error) {
	f.queries++
	return f.queryVec, nil
}

func singleParagraphRecords(n int) []corpus.SourceRecord {
	records := make([]corpus.SourceRecord, n)
	for i := range records {
		records[i] = corpus.SourceRecord{
			Path:    fmt.Sprintf("file%02d.go", i),
			Content: fmt.Sprintf("content of file %02d", i),
		}
	}
	return records
}

func TestIndexBatchesAndProgress(t *testing.T) {
	embedder := &fakeEmbedder{}
	indexer := NewIndexer(embedder, 20, 2000)

	var processed []int
	chunks, err := indexer.Index(context.Background(), singleParagraphRecords(45), KindMain, func(p, total int) {
		if total != 45 {
			t.Errorf("expected total 45, got %d", total)
		}
		processed = append(processed, p)
	})
	if err != nil {
		t.Fatalf("Index error: %v", err)
	}

	if len(embedder.batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(embedder.batches))
	}
	for i, want := range []int{20, 20, 5} {
		if got := len(embedder.batches[i]); got != want {
			t.Fatalf("batch %d: expected size %d, got %d", i, want, got)
		}
	}
	if len(processed) != 3 || processed[0] != 20 || processed[1] != 40 || processed[2] != 45 {
		t.Fatalf("unexpected progress sequence: %v", processed)
	}
	if len(chunks) != 45 {
		t.Fatalf("expected 45 chunks, got %d", len(chunks))
	}
	for _, chunk := range chunks {
		if chunk.Kind != KindMain {
			t.Fatalf("expected main kind, got %s", chunk.Kind)
		}
		if !strings.HasPrefix(chunk.ID, "main-") {
			t.Fatalf("unexpected chunk id: %s", chunk.ID)
		}
	}
}

func TestIndexUniqueIDs(t *testing.T) {
	indexer := NewIndexer(&fakeEmbedder{}, 10, 2000)
	chunks, err := indexer.Index(context.Background(), singleParagraphRecords(25), KindReference, nil)
	if err != nil {
		t.Fatalf("Index error: %v", err)
	}
	seen := make(map[string]bool, len(chunks))
	for _, chunk := range chunks {
		if seen[chunk.ID] {
			t.Fatalf("duplicate chunk id: %s", chunk.ID)
		}
		seen[chunk.ID] = true
	}
}

func TestIndexSkipsFailedBatch(t *testing.T) {
	embedder := &fakeEmbedder{failBatch: 2}
	indexer := NewIndexer(embedder, 20, 2000)

	var processed []int
	chunks, err := indexer.Index(context.Background(), singleParagraphRecords(45), KindMain, func(p, _ int) {
		processed = append(processed, p)
	})
	if err != nil {
		t.Fatalf("batch failure must not abort the run: %v", err)
	}
	if len(chunks) != 25 {
		t.Fatalf("expected 25 chunks after dropping the failed batch, got %d", len(chunks))
	}
	if len(processed) != 3 || processed[2] != 45 {
		t.Fatalf("progress should cover all batches: %v", processed)
	}
}

func TestIndexCancellationReturnsPartial(t *testing.T) {
	embedder := &fakeEmbedder{}
	indexer := NewIndexer(embedder, 10, 2000)

	ctx, cancel := context.WithCancel(context.Background())
	var chunks []VectorChunk
	var err error
	chunks, err = indexer.Index(ctx, singleParagraphRecords(30), KindMain, func(p, _ int) {
		if p == 10 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(chunks) != 10 {
		t.Fatalf("expected the partial index to survive cancellation, got %d chunks", len(chunks))
	}
}

func TestIndexSkipsMissingVectors(t *testing.T) {
	embedder := &dropFirstEmbedder{}
	indexer := NewIndexer(embedder, 20, 2000)

	chunks, err := indexer.Index(context.Background(), singleParagraphRecords(3), KindMain, nil)
	if err != nil {
		t.Fatalf("Index error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected item without a vector to be omitted, got %d chunks", len(chunks))
	}
}

// dropFirstEmbedder leaves the first position of every batch nil.
type dropFirstEmbedder struct{}

func (dropFirstEmbedder) Embed(_ context.Context, inputs []string) ([][]float64, error) {
	vectors := make([][]float64, len(inputs))
	for i := 1; i < len(inputs); i++ {
		vectors[i] = []float64{1, 0}
	}
	return vectors, nil
}

func (dropFirstEmbedder) EmbedQuery(_ context.Context, _ string) ([]float64, error) {
	return []float64{1, 0}, nil
}
