package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/repolens/repolens/internal/analysis"
)

func TestUpdateProgressMsg(t *testing.T) {
	m := New(make(chan analysis.ProgressEvent))

	updated, cmd := m.Update(progressMsg(analysis.ProgressEvent{
		Status:  "Summary recorded",
		Percent: 20,
		LogLine: "turn 1: record_summary",
	}))
	if cmd == nil {
		t.Fatal("expected a follow-up wait command")
	}
	next := updated.(Model)
	if next.percent != 20 || next.status != "Summary recorded" {
		t.Fatalf("unexpected state: %+v", next)
	}
	if len(next.logTail) != 1 {
		t.Fatalf("expected log line captured, got %v", next.logTail)
	}

	// A lower percent must not move the bar backwards.
	updated, _ = next.Update(progressMsg(analysis.ProgressEvent{Status: "late", Percent: 10}))
	next = updated.(Model)
	if next.percent != 20 {
		t.Fatalf("percent went backwards: %d", next.percent)
	}
}

func TestUpdateStreamClosedQuits(t *testing.T) {
	m := New(make(chan analysis.ProgressEvent))
	updated, cmd := m.Update(streamClosedMsg{})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Fatalf("expected tea.Quit, got %T", msg)
	}
	if !updated.(Model).done {
		t.Fatal("expected done state")
	}
}

func TestViewShowsError(t *testing.T) {
	m := New(make(chan analysis.ProgressEvent))
	updated, _ := m.Update(FailMsg{Err: errors.New("engine unreachable")})
	view := updated.(Model).View()
	if !strings.Contains(view, "engine unreachable") {
		t.Fatalf("expected error in view, got %q", view)
	}
}

func TestLogTailBounded(t *testing.T) {
	var m tea.Model = New(make(chan analysis.ProgressEvent))
	for i := 0; i < logTailSize+5; i++ {
		m, _ = m.(Model).Update(progressMsg(analysis.ProgressEvent{
			Status:  "working",
			Percent: i,
			LogLine: "line",
		}))
	}
	if got := len(m.(Model).logTail); got != logTailSize {
		t.Fatalf("expected bounded log tail, got %d", got)
	}
}
