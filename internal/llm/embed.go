// internal/llm/embed.go
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/repolens/repolens/internal/logging"
)

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed requests vectors for a batch of inputs. The returned slice always
// has one position per input, in input order; a position the engine returned
// no vector for is nil.
func (c *Client) Embed(ctx context.Context, inputs []string) ([][]float64, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	payload := embedRequest{
		Model: c.embed,
		Input: inputs,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	logging.Request("out", "", c.embed, body)
	raw, err := c.post(ctx, "/embeddings", body)
	if err != nil {
		return nil, err
	}

	var parsed embedResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("embedding error: %s", parsed.Error.Message)
	}
	// The vectors themselves would swamp the log.
	logging.Request("in", "", c.embed, map[string]any{"embeddings": len(parsed.Data)})

	vectors := make([][]float64, len(inputs))
	for _, item := range parsed.Data {
		if item.Index < 0 || item.Index >= len(inputs) {
			continue
		}
		if len(item.Embedding) == 0 {
			continue
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

// EmbedQuery embeds a single query string. A missing vector is reported as
// (nil, nil): no grounding available, not an error.
func (c *Client) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	vectors, err := c.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, nil
	}
	return vectors[0], nil
}
