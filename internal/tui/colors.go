package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	commentStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// FormatTitle renders a bold title
func FormatTitle(text string) string { return titleStyle.Render(text) }

// FormatComment renders an italic yellow remark
func FormatComment(text string) string { return commentStyle.Render(text) }

// FormatError renders bold red text
func FormatError(text string) string { return errorStyle.Render(text) }

// FormatWarning renders yellow text
func FormatWarning(text string) string { return warningStyle.Render(text) }

// FormatSuccess renders bold green text
func FormatSuccess(text string) string { return successStyle.Render(text) }

// FormatDim renders gray text
func FormatDim(text string) string { return dimStyle.Render(text) }

// Hyperlink renders an OSC 8 terminal hyperlink, falling back to "name (link)"
// when stdout is not a terminal.
func Hyperlink(name, link string) string {
	if !IsTTY() {
		return name + " (" + link + ")"
	}
	return termenv.Hyperlink(link, name)
}

// IsTTY returns true if both stdin and stdout are terminals
func IsTTY() bool {
	return (isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
}
