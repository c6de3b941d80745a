// internal/cli/analyze.go
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/repolens/repolens/internal/analysis"
	"github.com/repolens/repolens/internal/corpus"
	"github.com/repolens/repolens/internal/llm"
	"github.com/repolens/repolens/internal/logging"
	"github.com/repolens/repolens/internal/rag"
	"github.com/repolens/repolens/internal/tui"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a repository with the reasoning engine and export the result",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		noTUI, _ := cmd.Flags().GetBool("no-tui")
		exportPath, _ := cmd.Flags().GetString("export")
		return runAnalyze(root, exportPath, noTUI)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Bool("no-tui", false, "print progress as log lines instead of the live view")
	analyzeCmd.Flags().StringP("export", "e", "", "write the result record to this path (default from config)")
}

func runAnalyze(root, exportPath string, noTUI bool) error {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if exportPath == "" {
		exportPath = cfg.ExportFilePath()
	}

	records, err := corpus.Load(root, cfg.AllowedExtensions, cfg.ExcludeGlobs)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no corpus files found under %s", root)
	}
	logging.Event("[analyze] loaded %d corpus files from %s", len(records), root)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := llm.NewClient(cfg.EngineURL, cfg.APIKey(), cfg.EngineModel, cfg.EmbeddingModel, cfg.RequestTimeout())

	events := make(chan analysis.ProgressEvent, 16)
	orch := analysis.New(client,
		analysis.WithTurnBudget(cfg.TurnLimit()),
		analysis.WithProgress(func(e analysis.ProgressEvent) { events <- e }),
	)

	var result *analysis.Result
	var buildErr error

	if noTUI {
		done := make(chan struct{})
		go func() {
			defer close(done)
			for event := range events {
				fmt.Printf("%s %s (%d%%)\n", color.CyanString("[analyze]"), event.Status, event.Percent)
			}
		}()
		result, buildErr = orch.Build(ctx, records)
		close(events)
		<-done
	} else {
		program := tea.NewProgram(tui.New(events))
		buildDone := make(chan struct{})
		go func() {
			result, buildErr = orch.Build(ctx, records)
			if buildErr != nil && !errors.Is(buildErr, context.Canceled) {
				program.Send(tui.FailMsg{Err: buildErr})
			}
			close(events)
			close(buildDone)
		}()
		_, runErr := program.Run()
		// If the view exited before the build finished (user quit), cancel
		// the session and drain its remaining events so it can unwind.
		stop()
		go func() {
			for range events {
			}
		}()
		<-buildDone
		if runErr != nil {
			return fmt.Errorf("progress view: %w", runErr)
		}
	}

	if buildErr != nil {
		if !errors.Is(buildErr, context.Canceled) {
			return buildErr
		}
		color.Yellow("analysis cancelled, exporting partial result")
	}

	// Attach the grounding index and reference descriptors when they exist
	// so the exported record is the complete hand-off contract.
	if index, err := rag.LoadIndex(cfg.IndexFilePath()); err == nil {
		result.VectorIndex = index
	}
	if refs, err := loadReferences(referencesPath(cfg.IndexFilePath())); err == nil {
		result.ReferenceRepos = refs
	}

	if err := exportResult(exportPath, result); err != nil {
		return err
	}
	printResultSummary(result, exportPath)
	return nil
}

func exportResult(path string, result *analysis.Result) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

func printResultSummary(result *analysis.Result, exportPath string) {
	if result.Complete {
		color.Green("analysis complete (session %s)", result.SessionID)
	} else {
		color.Yellow("analysis incomplete (session %s)", result.SessionID)
	}
	fmt.Printf("  summary:     %s\n", truncateLine(result.Summary, 100))
	fmt.Printf("  modules:     %d\n", len(result.KeyModules))
	fmt.Printf("  workflows:   %d\n", len(result.Workflows))
	fmt.Printf("  benchmarks:  %d\n", len(result.Benchmarks))
	fmt.Printf("  exported to: %s\n", exportPath)
}

func truncateLine(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
