package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TargetStatus is the state of one bulk target
type TargetStatus string

const (
	TargetRunning TargetStatus = "running"
	TargetDone    TargetStatus = "done"
	TargetSkipped TargetStatus = "skipped"
	TargetFailed  TargetStatus = "failed"
)

// TargetItem is one row in the bulk progress view
type TargetItem struct {
	Name    string
	Status  TargetStatus
	Message string
}

// TargetUpdateMsg reports a finished target to the progress view
type TargetUpdateMsg struct {
	Idx     int
	Status  TargetStatus
	Message string
}

// targetsDoneMsg signals that every target has reported
type targetsDoneMsg struct{}

// TargetProgressModel is the bubbletea model for concurrent per-target work
type TargetProgressModel struct {
	items   []TargetItem
	spinner spinner.Model
	done    bool
	styles  progressStyles
}

type progressStyles struct {
	doneStyle   lipgloss.Style
	errorStyle  lipgloss.Style
	skipStyle   lipgloss.Style
	targetStyle lipgloss.Style
	dimStyle    lipgloss.Style
}

// NewTargetProgressModel creates a progress model with every target running
func NewTargetProgressModel(names []string) TargetProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	items := make([]TargetItem, len(names))
	for i, name := range names {
		items[i] = TargetItem{Name: name, Status: TargetRunning}
	}

	return TargetProgressModel{
		items:   items,
		spinner: s,
		styles: progressStyles{
			doneStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			errorStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
			skipStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
			targetStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
			dimStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		},
	}
}

func (m TargetProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m TargetProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TargetUpdateMsg:
		if msg.Idx >= 0 && msg.Idx < len(m.items) {
			m.items[msg.Idx].Status = msg.Status
			m.items[msg.Idx].Message = msg.Message
		}
		return m, nil

	case targetsDoneMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m TargetProgressModel) View() string {
	var b strings.Builder
	b.WriteString("\n")

	for _, item := range m.items {
		var icon string
		switch item.Status {
		case TargetRunning:
			icon = m.spinner.View()
		case TargetDone:
			icon = m.styles.doneStyle.Render("✓")
		case TargetSkipped:
			icon = m.styles.skipStyle.Render("–")
		case TargetFailed:
			icon = m.styles.errorStyle.Render("✗")
		}

		line := fmt.Sprintf("  %s %s", icon, m.styles.targetStyle.Render(item.Name))
		if item.Message != "" {
			style := m.styles.dimStyle
			if item.Status == TargetFailed {
				style = m.styles.errorStyle
			}
			line += " " + style.Render(item.Message)
		}
		b.WriteString(line + "\n")
	}

	if m.done {
		completed, failed := 0, 0
		for _, item := range m.items {
			switch item.Status {
			case TargetDone, TargetSkipped:
				completed++
			case TargetFailed:
				failed++
			}
		}
		b.WriteString("\n")
		if failed > 0 {
			b.WriteString(m.styles.errorStyle.Render(fmt.Sprintf("Completed: %d, Failed: %d", completed, failed)))
		} else {
			b.WriteString(m.styles.doneStyle.Render(fmt.Sprintf("✓ All %d targets processed", completed)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// TargetReporter receives per-target updates from concurrent workers
type TargetReporter interface {
	Update(idx int, status TargetStatus, message string)
	Wait()
}

// programReporter forwards updates to a running bubbletea program
type programReporter struct {
	program *tea.Program
	done    chan struct{}
	splog   *Splog
}

// StartTargetProgress starts the bubbletea progress view in the background
func StartTargetProgress(names []string, splog *Splog) TargetReporter {
	if !IsTTY() {
		return &plainReporter{names: names, splog: splog}
	}

	p := tea.NewProgram(NewTargetProgressModel(names), tea.WithInput(nil), tea.WithOutput(os.Stdout))
	r := &programReporter{program: p, done: make(chan struct{}), splog: splog}
	splog.SetQuiet(true)
	go func() {
		defer close(r.done)
		_, _ = p.Run()
	}()
	return r
}

func (r *programReporter) Update(idx int, status TargetStatus, message string) {
	r.program.Send(TargetUpdateMsg{Idx: idx, Status: status, Message: message})
}

func (r *programReporter) Wait() {
	r.program.Send(targetsDoneMsg{})
	<-r.done
	r.splog.SetQuiet(false)
}

// plainReporter prints one line per finished target
type plainReporter struct {
	names []string
	splog *Splog
}

func (r *plainReporter) Update(idx int, status TargetStatus, message string) {
	name := r.names[idx]
	switch status {
	case TargetDone:
		r.splog.Success("[%s] %s", name, message)
	case TargetSkipped:
		r.splog.Warn("[%s] %s", name, message)
	case TargetFailed:
		r.splog.Error("[%s] %s", name, message)
	}
}

func (r *plainReporter) Wait() {}
