// internal/analysis/orchestrator.go
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/repolens/repolens/internal/corpus"
	"github.com/repolens/repolens/internal/llm"
	"github.com/repolens/repolens/internal/logging"
)

// ProgressEvent is one step of a build. Percent is non-decreasing within a
// session and reaches 100 only when the terminal capability fires.
type ProgressEvent struct {
	Status  string `json:"status"`
	Percent int    `json:"percent"`
	LogLine string `json:"log_line,omitempty"`
}

// ProgressFunc receives progress events in commit order.
type ProgressFunc func(ProgressEvent)

// PartialFunc receives an independent snapshot of the result after every
// commit.
type PartialFunc func(*Result)

// Engine is the reasoning-engine surface the orchestrator drives. llm.Client
// implements it; tests inject scripted fakes.
type Engine interface {
	Chat(ctx context.Context, messages []llm.Message, tools []llm.ToolDefinition) (llm.AssistantTurn, error)
}

// Orchestrator runs the bounded multi-turn commit protocol. One Orchestrator
// may run concurrent independent sessions; all per-session state lives in
// Build.
type Orchestrator struct {
	engine     Engine
	turnBudget int
	onProgress ProgressFunc
	onPartial  PartialFunc
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTurnBudget caps the number of engine turns per session.
func WithTurnBudget(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.turnBudget = n
		}
	}
}

// WithProgress subscribes a progress observer.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) { o.onProgress = fn }
}

// WithPartial subscribes a partial-result observer.
func WithPartial(fn PartialFunc) Option {
	return func(o *Orchestrator) { o.onPartial = fn }
}

// New creates an Orchestrator with a default turn budget of 15.
func New(engine Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine:     engine,
		turnBudget: 15,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Build runs one analysis session over records. It returns the accumulated
// result when the engine signals completion, when the turn budget runs out,
// or when ctx is cancelled; only the last case carries an error (ctx.Err()),
// and the partial result is still returned alongside it. Engine failures
// abort the session and propagate.
func (o *Orchestrator) Build(ctx context.Context, records []corpus.SourceRecord) (*Result, error) {
	result := &Result{SessionID: uuid.NewString()}
	caps := capabilityTable()

	byName := make(map[string]capability, len(caps))
	tools := make([]llm.ToolDefinition, 0, len(caps))
	for _, c := range caps {
		byName[c.def.Name] = c
		tools = append(tools, c.def)
	}

	messages := []llm.Message{{
		Role:    "system",
		Content: systemPrompt(caps, records),
	}}

	o.emitProgress(result, ProgressEvent{Status: "Analyzing repository", Percent: 0})

	model := ""
	if m, ok := o.engine.(interface{ Model() string }); ok {
		model = m.Model()
	}

	lastPercent := 0
	completed := false
	logged := 0

	for turn := 1; turn <= o.turnBudget; turn++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		logging.Event("[analysis] session %s: turn %d (%d messages)", result.SessionID, turn, len(messages))
		// The history repeats on every turn; log only the messages added
		// since the previous exchange.
		logging.Request("out", result.SessionID, model, messages[logged:])
		assistant, err := o.engine.Chat(ctx, messages, tools)
		if err != nil {
			return nil, fmt.Errorf("engine turn %d: %w", turn, err)
		}
		logging.Request("in", result.SessionID, model, assistant.Message)
		messages = append(messages, assistant.Message)
		logged = len(messages)

		if len(assistant.ToolCalls) == 0 {
			if completed {
				break
			}
			continue
		}

		for _, call := range assistant.ToolCalls {
			c, known := byName[call.Name]
			ack := "recorded"

			if !known {
				ack = fmt.Sprintf("unknown capability %q", call.Name)
				logging.Event("[analysis] session %s: %s", result.SessionID, ack)
			} else {
				args, err := llm.ParseArguments(call.Arguments)
				if err == nil {
					err = validateArguments(c, args)
				}
				switch {
				case err != nil:
					// Field group keeps its prior value; the session continues.
					ack = fmt.Sprintf("arguments rejected: %v", err)
					logging.Event("[analysis] session %s: %s %s", result.SessionID, call.Name, ack)
				default:
					if c.apply != nil {
						c.apply(result, args)
					}
					if c.terminal {
						completed = true
						result.Complete = true
					}
					if c.checkpoint > lastPercent {
						lastPercent = c.checkpoint
					}
					o.emitProgress(result, ProgressEvent{
						Status:  c.status,
						Percent: lastPercent,
						LogLine: fmt.Sprintf("turn %d: %s", turn, call.Name),
					})
					o.emitPartial(result)
				}
			}

			messages = append(messages, llm.Message{
				Role:       "tool",
				Content:    ack,
				ToolCallID: call.ID,
			})
		}

		if completed {
			break
		}
	}

	return result, nil
}

func (o *Orchestrator) emitProgress(result *Result, event ProgressEvent) {
	if event.LogLine != "" {
		logging.Event("[analysis] session %s: %s (%d%%)", result.SessionID, event.Status, event.Percent)
	}
	if o.onProgress != nil {
		o.onProgress(event)
	}
}

func (o *Orchestrator) emitPartial(result *Result) {
	if o.onPartial != nil {
		o.onPartial(result.Clone())
	}
}

// systemPrompt enumerates the commit capabilities and inlines the grounding
// corpus.
func systemPrompt(caps []capability, records []corpus.SourceRecord) string {
	var b strings.Builder
	b.WriteString("You are analyzing a source repository. Read the files below, then commit your findings by invoking the provided tools. Invoke each recording tool at least once; you may invoke a tool again to replace an earlier commit. When every field has been committed, invoke ")
	for _, c := range caps {
		if c.terminal {
			b.WriteString(c.def.Name)
		}
	}
	b.WriteString(".\n\nCapabilities:\n")
	for _, c := range caps {
		b.WriteString(fmt.Sprintf("- %s: %s\n", c.def.Name, c.def.Description))
	}

	b.WriteString("\nRepository files:\n")
	for _, record := range records {
		b.WriteString(fmt.Sprintf("\n### %s\n%s\n", record.Path, record.Content))
	}
	return b.String()
}
