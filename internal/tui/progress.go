// internal/tui/progress.go
// Package tui renders live analysis progress while a build session runs.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/repolens/repolens/internal/analysis"
)

const logTailSize = 8

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	logStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type progressMsg analysis.ProgressEvent

type streamClosedMsg struct{}

// Model displays the event stream of one build session. The session runs
// elsewhere; the model only consumes events and quits when the stream closes.
type Model struct {
	events   <-chan analysis.ProgressEvent
	progress progress.Model
	spinner  spinner.Model
	status   string
	percent  int
	logTail  []string
	done     bool
	err      error
	width    int
}

// New creates a progress view over events. The channel must be closed when
// the build finishes.
func New(events <-chan analysis.ProgressEvent) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		events:   events,
		progress: progress.New(progress.WithDefaultGradient()),
		spinner:  s,
		status:   "Starting analysis",
	}
}

// FailMsg tells the view the build ended with an error; the final frame
// shows it before the program quits.
type FailMsg struct {
	Err error
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func waitForEvent(events <-chan analysis.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return progressMsg(event)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 4
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil

	case progressMsg:
		m.status = msg.Status
		if msg.Percent > m.percent {
			m.percent = msg.Percent
		}
		if msg.LogLine != "" {
			m.logTail = append(m.logTail, msg.LogLine)
			if len(m.logTail) > logTailSize {
				m.logTail = m.logTail[len(m.logTail)-logTailSize:]
			}
		}
		return m, waitForEvent(m.events)

	case streamClosedMsg:
		m.done = true
		return m, tea.Quit

	case FailMsg:
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("repolens analyze"))
	b.WriteString("\n\n")

	if m.done {
		b.WriteString(statusStyle.Render(fmt.Sprintf("✓ %s", m.status)))
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(float64(m.percent) / 100))
	b.WriteString(fmt.Sprintf(" %d%%\n", m.percent))

	if len(m.logTail) > 0 {
		b.WriteString("\n")
		for _, line := range m.logTail {
			b.WriteString(logStyle.Render("  " + line))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}

	return b.String()
}
