package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/repolens/repolens/internal/analysis"
	"github.com/repolens/repolens/internal/corpus"
)

func TestExportResultWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "analysis.json")
	result := &analysis.Result{
		SessionID: "sess-1",
		Summary:   "a demo repo",
		Complete:  true,
	}

	if err := exportResult(path, result); err != nil {
		t.Fatalf("exportResult error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var loaded analysis.Result
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if loaded.Summary != "a demo repo" || !loaded.Complete {
		t.Fatalf("unexpected export content: %+v", loaded)
	}
}

func TestAppendReferenceAccumulates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "references.json")

	if err := appendReference(path, corpus.ReferenceRepo{URL: "https://example.com/a", Status: corpus.ReferenceIndexed}); err != nil {
		t.Fatalf("appendReference error: %v", err)
	}
	if err := appendReference(path, corpus.ReferenceRepo{URL: "https://example.com/b", Status: corpus.ReferenceError}); err != nil {
		t.Fatalf("appendReference error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read references: %v", err)
	}
	var refs []corpus.ReferenceRepo
	if err := json.Unmarshal(data, &refs); err != nil {
		t.Fatalf("parse references: %v", err)
	}
	if len(refs) != 2 || refs[0].URL != "https://example.com/a" || refs[1].Status != corpus.ReferenceError {
		t.Fatalf("unexpected references: %+v", refs)
	}
}

func TestReferenceLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "references.json")
	url := "https://example.com/lib"

	if err := appendReference(path, corpus.ReferenceRepo{URL: url, Status: corpus.ReferenceIndexing}); err != nil {
		t.Fatalf("appendReference error: %v", err)
	}
	refs, err := loadReferences(path)
	if err != nil {
		t.Fatalf("loadReferences error: %v", err)
	}
	if len(refs) != 1 || refs[0].Status != corpus.ReferenceIndexing {
		t.Fatalf("expected one in-flight descriptor, got %+v", refs)
	}

	files := []corpus.SourceRecord{{Path: "lib.go", Content: "package lib"}}
	if err := finishReference(path, url, files, corpus.ReferenceIndexed); err != nil {
		t.Fatalf("finishReference error: %v", err)
	}
	refs, err = loadReferences(path)
	if err != nil {
		t.Fatalf("loadReferences error: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("resolving must update the descriptor in place, got %+v", refs)
	}
	if refs[0].Status != corpus.ReferenceIndexed {
		t.Fatalf("unexpected status: %s", refs[0].Status)
	}
	if len(refs[0].Files) != 1 || refs[0].Files[0].Path != "lib.go" {
		t.Fatalf("descriptor must carry the indexed records, got %+v", refs[0].Files)
	}
}

func TestFinishReferenceLeavesResolvedAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "references.json")
	url := "https://example.com/lib"

	if err := appendReference(path, corpus.ReferenceRepo{URL: url, Status: corpus.ReferenceIndexed}); err != nil {
		t.Fatalf("appendReference error: %v", err)
	}
	if err := finishReference(path, url, nil, corpus.ReferenceError); err != nil {
		t.Fatalf("finishReference error: %v", err)
	}

	refs, err := loadReferences(path)
	if err != nil {
		t.Fatalf("loadReferences error: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected a fresh descriptor when none is in flight, got %+v", refs)
	}
	if refs[0].Status != corpus.ReferenceIndexed || refs[1].Status != corpus.ReferenceError {
		t.Fatalf("unexpected statuses: %+v", refs)
	}
}

func TestReferencesPath(t *testing.T) {
	if got := referencesPath("data/index.jsonl"); got != filepath.Join("data", "references.json") {
		t.Fatalf("unexpected references path: %s", got)
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("short", 10); got != "short" {
		t.Fatalf("unexpected: %q", got)
	}
	long := strings.Repeat("x", 20)
	if got := truncateLine(long, 10); got != long[:10]+"…" {
		t.Fatalf("unexpected: %q", got)
	}
}
