// internal/llm/client.go
// Package llm is a minimal OpenAI-compatible client covering the two engine
// calls this tool makes: chat completions with tool declarations, and text
// embeddings.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ToolDefinition declares one capability the model may invoke. Parameters is
// a JSON-schema object serialized verbatim to the engine.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ToolCall is one capability invocation parsed from a model response.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Message is a single chat message. ToolCallID links a "tool" role message
// back to the invocation it acknowledges.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// AssistantTurn is the parsed result of one chat completion.
type AssistantTurn struct {
	Message   Message
	ToolCalls []ToolCall
}

// Client talks to an OpenAI-compatible API.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	embed   string
	http    *http.Client
}

// NewClient creates a client for the given base URL. model is used for chat
// completions and embedModel for embeddings.
func NewClient(baseURL, apiKey, model, embedModel string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		embed:   embedModel,
		http:    &http.Client{Timeout: timeout},
	}
}

// Model returns the configured chat model name.
func (c *Client) Model() string { return c.model }

type toolCall struct {
	ID       string `json:"id,omitempty"`
	Type     string `json:"type"`
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

type chatRequest struct {
	Model    string           `json:"model"`
	Messages []Message        `json:"messages"`
	Tools    []map[string]any `json:"tools,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role      string     `json:"role"`
			Content   string     `json:"content"`
			ToolCalls []toolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat sends the conversation and tool declarations to the engine and
// returns the assistant turn with any tool calls parsed out. Transport and
// API failures are returned as errors; the caller treats them as fatal.
func (c *Client) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (AssistantTurn, error) {
	payload := chatRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    formatToolsForPayload(tools),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return AssistantTurn{}, fmt.Errorf("marshal chat request: %w", err)
	}

	raw, err := c.post(ctx, "/chat/completions", body)
	if err != nil {
		return AssistantTurn{}, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return AssistantTurn{}, fmt.Errorf("parse chat response: %w", err)
	}
	if parsed.Error != nil {
		return AssistantTurn{}, fmt.Errorf("engine error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return AssistantTurn{}, fmt.Errorf("engine returned no choices")
	}

	choice := parsed.Choices[0].Message
	turn := AssistantTurn{
		Message: Message{
			Role:      "assistant",
			Content:   choice.Content,
			ToolCalls: choice.ToolCalls,
		},
	}
	if turn.Message.Role == "" {
		turn.Message.Role = "assistant"
	}
	for _, call := range choice.ToolCalls {
		turn.ToolCalls = append(turn.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return turn, nil
}

// formatToolsForPayload wraps tool definitions in the function envelope the
// chat completions API expects.
func formatToolsForPayload(tools []ToolDefinition) []map[string]any {
	if len(tools) == 0 {
		return nil
	}
	formatted := make([]map[string]any, 0, len(tools))
	for _, tool := range tools {
		function := map[string]any{
			"name": tool.Name,
		}
		if tool.Description != "" {
			function["description"] = tool.Description
		}
		if tool.Parameters != nil {
			function["parameters"] = tool.Parameters
		}
		formatted = append(formatted, map[string]any{
			"type":     "function",
			"function": function,
		})
	}
	return formatted
}

// ParseArguments decodes tool call arguments into a map. Engines disagree on
// whether arguments arrive as an object or a JSON-encoded string, so both
// forms are accepted.
func ParseArguments(raw json.RawMessage) (map[string]any, error) {
	args := map[string]any{}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err == nil {
		return args, nil
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("parse tool arguments: %w", err)
	}
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(encoded), &args); err != nil {
		return nil, fmt.Errorf("parse tool arguments string: %w", err)
	}
	return args, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("engine request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read engine response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("engine request failed: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}
