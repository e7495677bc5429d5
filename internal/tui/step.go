package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// stepDoneMsg is sent when the action behind a spinner finishes
type stepDoneMsg struct {
	err error
}

// stepModel renders a single in-progress step with a spinner
type stepModel struct {
	name    string
	spinner spinner.Model
	done    bool
	err     error
}

func newStepModel(name string) stepModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return stepModel{name: name, spinner: s}
}

func (m stepModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m stepModel) View() string {
	if !m.done {
		return fmt.Sprintf("%s %s\n", m.spinner.View(), m.name)
	}
	if m.err != nil {
		return fmt.Sprintf("%s %s\n", errorStyle.Render("✗"), m.name)
	}
	return fmt.Sprintf("%s %s\n", successStyle.Render("✓"), m.name)
}

// SpinnerIndicator draws a bubbletea spinner next to the step name while the step runs
type SpinnerIndicator struct {
	Splog *Splog
	// Output receives the spinner frames. Defaults to os.Stdout.
	Output io.Writer
}

// Run executes action while the spinner is shown and returns its error.
// Messages logged by the action are printed once the spinner has finished.
func (i *SpinnerIndicator) Run(name string, action func() error) error {
	out := i.Output
	if out == nil {
		out = os.Stdout
	}
	p := tea.NewProgram(newStepModel(name), tea.WithInput(nil), tea.WithOutput(out))

	if i.Splog != nil {
		i.Splog.SetQuiet(true)
		defer i.Splog.SetQuiet(false)
	}

	result := make(chan error, 1)
	go func() {
		err := action()
		result <- err
		p.Send(stepDoneMsg{err: err})
	}()

	// A renderer failure does not stop the action; its result is what counts.
	_, _ = p.Run()
	return <-result
}

// PlainIndicator reports step progress as log lines, for non-TTY output
type PlainIndicator struct {
	Splog *Splog
}

// Run executes action between a start and a result line
func (i *PlainIndicator) Run(name string, action func() error) error {
	i.Splog.Info("⋯ %s", name)
	err := action()
	if err != nil {
		i.Splog.Info("✗ %s", name)
		return err
	}
	i.Splog.Info("✓ %s", name)
	return nil
}

// Indicator shows the progress of one named step
type Indicator interface {
	Run(name string, action func() error) error
}

// NewIndicator picks the spinner in a terminal and plain lines otherwise
func NewIndicator(splog *Splog) Indicator {
	if IsTTY() {
		return &SpinnerIndicator{Splog: splog}
	}
	return &PlainIndicator{Splog: splog}
}
