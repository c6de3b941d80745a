// internal/analysis/result.go
// Package analysis drives a reasoning engine through a bounded tool-call
// protocol and accumulates its structured commits into a Result.
package analysis

import (
	"github.com/repolens/repolens/internal/corpus"
	"github.com/repolens/repolens/internal/rag"
)

// KeyModule names one module of the analyzed repository and what it is for.
type KeyModule struct {
	Name           string `json:"name"`
	Responsibility string `json:"responsibility"`
}

// Artifacts holds the drafted documentation sections.
type Artifacts struct {
	ProjectOverview string `json:"project_overview"`
	GettingStarted  string `json:"getting_started"`
	Architecture    string `json:"architecture"`
	CommonTasks     string `json:"common_tasks"`
}

// Benchmark is one verification question and the engine's answer.
type Benchmark struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Result is the structured understanding produced by one analysis session.
// Field groups are populated additively: a group a capability never commits
// keeps its zero value, and a repeated commit replaces the previous one.
// Complete is true only when the engine signaled the terminal capability;
// turn-budget exhaustion and cancellation leave it false.
type Result struct {
	SessionID      string                 `json:"session_id"`
	Summary        string                 `json:"summary"`
	TechStack      []string               `json:"tech_stack"`
	EntryPoints    []string               `json:"entry_points"`
	KeyModules     []KeyModule            `json:"key_modules"`
	Workflows      []string               `json:"workflows"`
	Artifacts      Artifacts              `json:"artifacts"`
	Benchmarks     []Benchmark            `json:"benchmarks"`
	VectorIndex    []rag.VectorChunk      `json:"vector_index,omitempty"`
	ReferenceRepos []corpus.ReferenceRepo `json:"reference_repos,omitempty"`
	Complete       bool                   `json:"complete"`
}

// Clone returns an independent deep copy. Observers receive clones so they
// never read the accumulator mid-mutation.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.TechStack = append([]string(nil), r.TechStack...)
	out.EntryPoints = append([]string(nil), r.EntryPoints...)
	out.KeyModules = append([]KeyModule(nil), r.KeyModules...)
	out.Workflows = append([]string(nil), r.Workflows...)
	out.Benchmarks = append([]Benchmark(nil), r.Benchmarks...)
	out.VectorIndex = append([]rag.VectorChunk(nil), r.VectorIndex...)
	out.ReferenceRepos = append([]corpus.ReferenceRepo(nil), r.ReferenceRepos...)
	return &out
}
