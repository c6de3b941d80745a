// internal/analysis/capabilities.go
package analysis

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/repolens/repolens/internal/llm"
)

// capability is one named commit the engine may invoke. apply merges
// validated arguments into the result; terminal capabilities end the
// session. checkpoint is the progress percentage the commit advances to.
type capability struct {
	def        llm.ToolDefinition
	status     string
	checkpoint int
	terminal   bool
	apply      func(r *Result, args map[string]any)
}

func stringSchema() map[string]any {
	return map[string]any{"type": "string"}
}

func stringArraySchema() map[string]any {
	return map[string]any{"type": "array", "items": stringSchema()}
}

// capabilityTable declares the commit protocol. Checkpoints increase with
// the expected commit order and the terminal capability lands on 100.
func capabilityTable() []capability {
	return []capability{
		{
			def: llm.ToolDefinition{
				Name:        "record_summary",
				Description: "Commit a short summary of the repository, its technology stack, and its entry points.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"summary":      stringSchema(),
						"tech_stack":   stringArraySchema(),
						"entry_points": stringArraySchema(),
					},
					"required": []string{"summary"},
				},
			},
			status:     "Summary recorded",
			checkpoint: 20,
			apply: func(r *Result, args map[string]any) {
				if s, ok := stringArg(args, "summary"); ok {
					r.Summary = s
				}
				if list, ok := stringListArg(args, "tech_stack"); ok {
					r.TechStack = list
				}
				if list, ok := stringListArg(args, "entry_points"); ok {
					r.EntryPoints = list
				}
			},
		},
		{
			def: llm.ToolDefinition{
				Name:        "record_modules",
				Description: "Commit the key modules of the repository with one responsibility each.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"key_modules": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"name":           stringSchema(),
									"responsibility": stringSchema(),
								},
								"required": []string{"name", "responsibility"},
							},
						},
					},
					"required": []string{"key_modules"},
				},
			},
			status:     "Key modules recorded",
			checkpoint: 35,
			apply: func(r *Result, args map[string]any) {
				items, ok := args["key_modules"].([]any)
				if !ok {
					return
				}
				modules := make([]KeyModule, 0, len(items))
				for _, item := range items {
					entry, ok := item.(map[string]any)
					if !ok {
						continue
					}
					name, _ := stringArg(entry, "name")
					responsibility, _ := stringArg(entry, "responsibility")
					modules = append(modules, KeyModule{Name: name, Responsibility: responsibility})
				}
				r.KeyModules = modules
			},
		},
		{
			def: llm.ToolDefinition{
				Name:        "record_workflows",
				Description: "Commit the main workflows a user or developer performs with the repository.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"workflows": stringArraySchema(),
					},
					"required": []string{"workflows"},
				},
			},
			status:     "Workflows recorded",
			checkpoint: 50,
			apply: func(r *Result, args map[string]any) {
				if list, ok := stringListArg(args, "workflows"); ok {
					r.Workflows = list
				}
			},
		},
		{
			def: llm.ToolDefinition{
				Name:        "record_artifacts",
				Description: "Commit the drafted documentation artifacts.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"project_overview": stringSchema(),
						"getting_started":  stringSchema(),
						"architecture":     stringSchema(),
						"common_tasks":     stringSchema(),
					},
					"required": []string{"project_overview", "getting_started", "architecture", "common_tasks"},
				},
			},
			status:     "Artifacts drafted",
			checkpoint: 70,
			apply: func(r *Result, args map[string]any) {
				if s, ok := stringArg(args, "project_overview"); ok {
					r.Artifacts.ProjectOverview = s
				}
				if s, ok := stringArg(args, "getting_started"); ok {
					r.Artifacts.GettingStarted = s
				}
				if s, ok := stringArg(args, "architecture"); ok {
					r.Artifacts.Architecture = s
				}
				if s, ok := stringArg(args, "common_tasks"); ok {
					r.Artifacts.CommonTasks = s
				}
			},
		},
		{
			def: llm.ToolDefinition{
				Name:        "record_benchmarks",
				Description: "Commit verification questions about the repository together with their answers.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"benchmarks": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"question": stringSchema(),
									"answer":   stringSchema(),
								},
								"required": []string{"question", "answer"},
							},
						},
					},
					"required": []string{"benchmarks"},
				},
			},
			status:     "Benchmarks recorded",
			checkpoint: 85,
			apply: func(r *Result, args map[string]any) {
				items, ok := args["benchmarks"].([]any)
				if !ok {
					return
				}
				benchmarks := make([]Benchmark, 0, len(items))
				for _, item := range items {
					entry, ok := item.(map[string]any)
					if !ok {
						continue
					}
					question, _ := stringArg(entry, "question")
					answer, _ := stringArg(entry, "answer")
					benchmarks = append(benchmarks, Benchmark{Question: question, Answer: answer})
				}
				r.Benchmarks = benchmarks
			},
		},
		{
			def: llm.ToolDefinition{
				Name:        "complete_analysis",
				Description: "Signal that every required commit has been made and the analysis is finished.",
				Parameters: map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
			status:     "Analysis complete",
			checkpoint: 100,
			terminal:   true,
		},
	}
}

// validateArguments checks args against the capability's declared parameter
// schema. Invalid arguments leave the field group untouched.
func validateArguments(c capability, args map[string]any) error {
	if c.def.Parameters == nil {
		return nil
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(c.def.Parameters),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return fmt.Errorf("validate %s arguments: %w", c.def.Name, err)
	}
	if !result.Valid() {
		return fmt.Errorf("invalid %s arguments: %v", c.def.Name, result.Errors())
	}
	return nil
}

func stringArg(args map[string]any, key string) (string, bool) {
	value, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

func stringListArg(args map[string]any, key string) ([]string, bool) {
	value, ok := args[key]
	if !ok {
		return nil, false
	}
	items, ok := value.([]any)
	if !ok {
		return nil, false
	}
	list := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			list = append(list, s)
		}
	}
	return list, true
}
