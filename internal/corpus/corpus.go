// internal/corpus/corpus.go
// Package corpus loads repository text into the records the analysis and
// indexing pipelines consume.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SourceRecord is one file of repository text. Records are immutable inputs;
// Path is the slash-separated path relative to the corpus root.
type SourceRecord struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ReferenceStatus tracks the lifecycle of a reference repository.
type ReferenceStatus string

const (
	ReferenceIndexing ReferenceStatus = "indexing"
	ReferenceIndexed  ReferenceStatus = "indexed"
	ReferenceError    ReferenceStatus = "error"
)

// ReferenceRepo describes an external repository whose files were indexed as
// grounding material.
type ReferenceRepo struct {
	URL    string          `json:"url"`
	Files  []SourceRecord  `json:"files,omitempty"`
	Status ReferenceStatus `json:"status"`
}

// Load walks root and returns a SourceRecord per readable text file, applying
// the extension allow-list and exclude globs. Empty files are skipped.
func Load(root string, allowedExts, excludeGlobs []string) ([]SourceRecord, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", root)
	}

	allowed := make(map[string]struct{}, len(allowedExts))
	for _, ext := range allowedExts {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	var records []SourceRecord
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && shouldExclude(path, excludeGlobs) {
				return filepath.SkipDir
			}
			return nil
		}
		if shouldExclude(path, excludeGlobs) {
			return nil
		}
		if len(allowed) > 0 {
			ext := strings.ToLower(filepath.Ext(path))
			if _, ok := allowed[ext]; !ok {
				return nil
			}
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read corpus file %s: %w", path, err)
		}
		content := strings.TrimSpace(string(raw))
		if content == "" {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		records = append(records, SourceRecord{
			Path:    filepath.ToSlash(rel),
			Content: content,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

func shouldExclude(path string, patterns []string) bool {
	normalized := filepath.ToSlash(path)
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		pattern = filepath.ToSlash(pattern)
		if strings.Contains(pattern, "**") {
			trimmed := strings.ReplaceAll(pattern, "**", "")
			if trimmed != "" && strings.Contains(normalized, trimmed) {
				return true
			}
		}
		if ok, _ := filepath.Match(pattern, normalized); ok {
			return true
		}
	}
	return false
}
