// internal/cli/query.go
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/repolens/repolens/internal/llm"
	"github.com/repolens/repolens/internal/rag"
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Retrieve grounding chunks from the vector index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topK, _ := cmd.Flags().GetInt("top-k")
		return runQuery(args[0], topK)
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().IntP("top-k", "k", 0, "number of chunks to retrieve (default from config)")
}

func runQuery(question string, topK int) error {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if topK <= 0 {
		topK = cfg.RetrievalTopK()
	}

	index, err := rag.LoadIndex(cfg.IndexFilePath())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := llm.NewClient(cfg.EngineURL, cfg.APIKey(), cfg.EngineModel, cfg.EmbeddingModel, cfg.RequestTimeout())

	chunks, err := rag.Retrieve(ctx, client, question, index, topK)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		color.Yellow("no grounding available for this query")
		return nil
	}

	block, tokens, sources := rag.FormatContext(chunks, cfg.ContextLimit())
	fmt.Println(block)
	color.Green("%d chunks, %d tokens, %d source files", len(chunks), tokens, sources)
	return nil
}
