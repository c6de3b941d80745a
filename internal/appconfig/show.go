package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	if cfg == nil {
		fmt.Fprintln(out, "  (none)")
		return
	}

	fmt.Fprintf(out, "  Engine URL:        %s\n", cfg.EngineURL)
	fmt.Fprintf(out, "  Engine Model:      %s\n", cfg.EngineModel)
	fmt.Fprintf(out, "  Embedding Model:   %s\n", cfg.EmbeddingModel)
	fmt.Fprintf(out, "  Debug:             %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Turn Budget:       %d\n", cfg.TurnLimit())
	fmt.Fprintf(out, "  Embed Batch Size:  %d\n", cfg.BatchSize())
	fmt.Fprintf(out, "  Chunk Max Bytes:   %d\n", cfg.ChunkSize())
	fmt.Fprintf(out, "  Top K:             %d\n", cfg.RetrievalTopK())
	fmt.Fprintf(out, "  Context Limit:     %d\n", cfg.ContextLimit())
	fmt.Fprintf(out, "  Index Path:        %s\n", cfg.IndexFilePath())
	fmt.Fprintf(out, "  Export Path:       %s\n", cfg.ExportFilePath())
	fmt.Fprintf(out, "  Log File:          %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Request Timeout:   %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Allowed Extensions: %v\n", cfg.AllowedExtensions)
	fmt.Fprintf(out, "  Exclude Globs:     %v\n", cfg.ExcludeGlobs)
}
