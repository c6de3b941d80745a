package rag

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadIndexRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "index.jsonl")
	chunks := []VectorChunk{
		{ID: "main-1-0", Text: "hello\nworld", SourceFile: "a.go", Embedding: []float64{0.5, -0.25}, Kind: KindMain},
		{ID: "reference-1-1", Text: "<b>html stays</b>", SourceFile: "b.md", Embedding: []float64{1, 2}, Kind: KindReference},
	}

	if err := SaveIndex(path, chunks); err != nil {
		t.Fatalf("SaveIndex error: %v", err)
	}

	loaded, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("LoadIndex error: %v", err)
	}
	if len(loaded) != len(chunks) {
		t.Fatalf("expected %d chunks, got %d", len(chunks), len(loaded))
	}
	for i := range chunks {
		if loaded[i].ID != chunks[i].ID || loaded[i].Text != chunks[i].Text || loaded[i].Kind != chunks[i].Kind {
			t.Fatalf("chunk %d mismatch: %+v vs %+v", i, loaded[i], chunks[i])
		}
		if len(loaded[i].Embedding) != len(chunks[i].Embedding) {
			t.Fatalf("chunk %d embedding mismatch", i)
		}
	}
}

func TestLoadIndexMissingFile(t *testing.T) {
	if _, err := LoadIndex(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Fatal("expected error for missing index")
	}
}

func TestFormatContext(t *testing.T) {
	chunks := []VectorChunk{
		{SourceFile: "a.go", Text: "alpha beta gamma"},
		{SourceFile: "b.go", Text: "delta epsilon"},
		{SourceFile: "a.go", Text: "zeta"},
	}

	block, tokens, sources := FormatContext(chunks, 0)
	if tokens != 6 {
		t.Fatalf("expected 6 tokens, got %d", tokens)
	}
	if sources != 2 {
		t.Fatalf("expected 2 sources, got %d", sources)
	}
	if block == "" || block[:7] != "CONTEXT" {
		t.Fatalf("unexpected block: %q", block)
	}
}

func TestFormatContextTruncates(t *testing.T) {
	chunks := []VectorChunk{
		{SourceFile: "a.go", Text: "one two three four five"},
		{SourceFile: "b.go", Text: "never reached"},
	}

	_, tokens, sources := FormatContext(chunks, 3)
	if tokens != 3 {
		t.Fatalf("expected 3 tokens, got %d", tokens)
	}
	if sources != 1 {
		t.Fatalf("expected truncation to stop at the first source, got %d", sources)
	}
}

func TestFormatContextEmpty(t *testing.T) {
	block, tokens, sources := FormatContext(nil, 10)
	if block != "" || tokens != 0 || sources != 0 {
		t.Fatalf("expected empty output, got %q %d %d", block, tokens, sources)
	}
}
