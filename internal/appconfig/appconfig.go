// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout is the default timeout for HTTP requests against the engines.
	defaultRequestTimeout = 120 * time.Second
	// defaultTurnBudget caps the orchestration loop when the config omits a value.
	defaultTurnBudget = 15
	// defaultEmbedBatchSize is the number of chunks sent per embedding request.
	defaultEmbedBatchSize = 20
	// defaultChunkMaxBytes bounds a single index chunk.
	defaultChunkMaxBytes = 2000
	// defaultTopK is the number of chunks returned by a retrieval query.
	defaultTopK = 5
	// defaultContextTokenLimit bounds the formatted context block.
	defaultContextTokenLimit = 1200
)

// Config represents the top-level application configuration.
type Config struct {
	EngineURL         string   `json:"engineUrl"`
	EngineModel       string   `json:"engineModel"`
	EmbeddingModel    string   `json:"embeddingModel"`
	APIKeyEnv         string   `json:"apiKeyEnv,omitempty"`
	Debug             bool     `json:"debug"`
	TurnBudget        int      `json:"turnBudget,omitempty"`
	EmbedBatchSize    int      `json:"embedBatchSize,omitempty"`
	ChunkMaxBytes     int      `json:"chunkMaxBytes,omitempty"`
	TopK              int      `json:"topK,omitempty"`
	ContextTokenLimit int      `json:"contextTokenLimit,omitempty"`
	AllowedExtensions []string `json:"allowedExtensions,omitempty"`
	ExcludeGlobs      []string `json:"excludeGlobs,omitempty"`
	IndexPath         string   `json:"indexPath,omitempty"`
	ExportPath        string   `json:"exportPath,omitempty"`
	LogFile           string   `json:"logFile,omitempty"`
	TimeoutSeconds    int      `json:"timeout,omitempty"`
	ConfigPath        string   `json:"-"`
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TurnLimit returns the orchestration turn budget.
func (c Config) TurnLimit() int {
	if c.TurnBudget <= 0 {
		return defaultTurnBudget
	}
	return c.TurnBudget
}

// BatchSize returns the embedding batch size.
func (c Config) BatchSize() int {
	if c.EmbedBatchSize <= 0 {
		return defaultEmbedBatchSize
	}
	return c.EmbedBatchSize
}

// ChunkSize returns the maximum chunk size in bytes.
func (c Config) ChunkSize() int {
	if c.ChunkMaxBytes <= 0 {
		return defaultChunkMaxBytes
	}
	return c.ChunkMaxBytes
}

// RetrievalTopK returns the number of chunks a query retrieves.
func (c Config) RetrievalTopK() int {
	if c.TopK <= 0 {
		return defaultTopK
	}
	return c.TopK
}

// ContextLimit returns the token budget for the formatted context block.
func (c Config) ContextLimit() int {
	if c.ContextTokenLimit <= 0 {
		return defaultContextTokenLimit
	}
	return c.ContextTokenLimit
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "repolens.log"
}

// IndexFilePath returns the vector index location, applying a default if not set.
func (c Config) IndexFilePath() string {
	if path := strings.TrimSpace(c.IndexPath); path != "" {
		return path
	}
	return "data/index.jsonl"
}

// ExportFilePath returns where analyze writes its result record.
func (c Config) ExportFilePath() string {
	if path := strings.TrimSpace(c.ExportPath); path != "" {
		return path
	}
	return "data/analysis.json"
}

// APIKey resolves the engine API key from the configured environment variable.
func (c Config) APIKey() string {
	env := strings.TrimSpace(c.APIKeyEnv)
	if env == "" {
		env = "REPOLENS_API_KEY"
	}
	return os.Getenv(env)
}

// Validate checks the fields every command depends on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.EngineURL) == "" {
		return fmt.Errorf("engineUrl is required")
	}
	if strings.TrimSpace(c.EngineModel) == "" {
		return fmt.Errorf("engineModel is required")
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		return fmt.Errorf("embeddingModel is required")
	}
	return nil
}
