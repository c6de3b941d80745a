// internal/cli/index.go
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/repolens/repolens/internal/corpus"
	"github.com/repolens/repolens/internal/llm"
	"github.com/repolens/repolens/internal/logging"
	"github.com/repolens/repolens/internal/rag"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Build the vector index over a repository",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		return runIndex(root, "", rag.KindMain)
	},
}

var indexReferenceCmd = &cobra.Command{
	Use:   "reference <url> [path]",
	Short: "Append chunks from a fetched reference repository to the index",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 2 {
			root = args[1]
		}
		return runIndex(root, args[0], rag.KindReference)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexReferenceCmd)
}

func runIndex(root, referenceURL string, kind rag.ChunkKind) error {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	records, err := corpus.Load(root, cfg.AllowedExtensions, cfg.ExcludeGlobs)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no corpus files found under %s", root)
	}
	logging.Event("[index] discovered %d corpus files under %s", len(records), root)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	indexPath := cfg.IndexFilePath()

	// A reference run is tracked by a descriptor: appended as "indexing"
	// before the first embedding call, resolved to a final status below.
	if referenceURL != "" {
		if err := appendReference(referencesPath(indexPath), corpus.ReferenceRepo{
			URL:    referenceURL,
			Status: corpus.ReferenceIndexing,
		}); err != nil {
			return err
		}
	}

	client := llm.NewClient(cfg.EngineURL, cfg.APIKey(), cfg.EngineModel, cfg.EmbeddingModel, cfg.RequestTimeout())
	indexer := rag.NewIndexer(client, cfg.BatchSize(), cfg.ChunkSize())

	chunks, indexErr := indexer.Index(ctx, records, kind, func(processed, total int) {
		fmt.Printf("%s embedded %d/%d chunks\n", color.CyanString("[index]"), processed, total)
	})
	cancelled := errors.Is(indexErr, context.Canceled)
	if indexErr != nil && !cancelled {
		if referenceURL != "" {
			_ = finishReference(referencesPath(indexPath), referenceURL, nil, corpus.ReferenceError)
		}
		return indexErr
	}

	// Reference chunks append to the existing index; a main run replaces it.
	if kind == rag.KindReference {
		existing, err := rag.LoadIndex(indexPath)
		if err != nil {
			_ = finishReference(referencesPath(indexPath), referenceURL, nil, corpus.ReferenceError)
			return fmt.Errorf("reference indexing needs an existing index: %w", err)
		}
		chunks = append(existing, chunks...)
	}
	if err := rag.SaveIndex(indexPath, chunks); err != nil {
		return err
	}

	if referenceURL != "" {
		status := corpus.ReferenceIndexed
		if cancelled {
			status = corpus.ReferenceError
		}
		if err := finishReference(referencesPath(indexPath), referenceURL, records, status); err != nil {
			return err
		}
	}

	if cancelled {
		color.Yellow("indexing cancelled, wrote partial index (%d chunks) to %s", len(chunks), indexPath)
		return nil
	}
	color.Green("indexed %d chunks to %s", len(chunks), indexPath)
	return nil
}

// referencesPath is the reference-descriptor sidecar next to the index.
func referencesPath(indexPath string) string {
	return filepath.Join(filepath.Dir(indexPath), "references.json")
}

func loadReferences(path string) ([]corpus.ReferenceRepo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var refs []corpus.ReferenceRepo
	if err := json.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("parse references file: %w", err)
	}
	return refs, nil
}

func saveReferences(path string, refs []corpus.ReferenceRepo) error {
	data, err := json.MarshalIndent(refs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal references: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write references file: %w", err)
	}
	return nil
}

func appendReference(path string, ref corpus.ReferenceRepo) error {
	refs, err := loadReferences(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return saveReferences(path, append(refs, ref))
}

// finishReference resolves the in-flight descriptor for url, attaching the
// files that were indexed. Descriptors already resolved are left alone.
func finishReference(path, url string, files []corpus.SourceRecord, status corpus.ReferenceStatus) error {
	refs, err := loadReferences(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	for i := len(refs) - 1; i >= 0; i-- {
		if refs[i].URL == url && refs[i].Status == corpus.ReferenceIndexing {
			refs[i].Files = files
			refs[i].Status = status
			return saveReferences(path, refs)
		}
	}
	return saveReferences(path, append(refs, corpus.ReferenceRepo{URL: url, Files: files, Status: status}))
}
