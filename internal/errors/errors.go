// Package errors provides sentinel errors and custom error types for the scaffolding tools.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrAborted indicates that the user declined to continue. It is not a failure.
	ErrAborted = errors.New("aborted")

	// ErrRepositoryExists indicates that the target GitHub repository already exists
	ErrRepositoryExists = errors.New("repository already exists")

	// ErrDirectoryExists indicates that the target checkout directory already exists
	ErrDirectoryExists = errors.New("directory already exists")

	// ErrNotAProject indicates that the working directory is not a project checkout
	ErrNotAProject = errors.New("not a project directory")

	// ErrNotInteractive indicates that a question was asked without a terminal to answer it
	ErrNotInteractive = errors.New("this command asks questions and needs an interactive terminal")

	// ErrNotReady indicates that a polled resource did not become ready in time
	ErrNotReady = errors.New("not ready")
)

// StepError is returned when a named pipeline step fails.
// It carries the operator-facing abort message next to the cause.
type StepError struct {
	Step         string
	AbortMessage string
	Err          error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError creates a new StepError
func NewStepError(step, abortMessage string, err error) *StepError {
	return &StepError{
		Step:         step,
		AbortMessage: abortMessage,
		Err:          err,
	}
}

// CommandError represents an error from an external command (shell, gh, ssh)
type CommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += " " + strings.Join(e.Args, " ")
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError
func NewCommandError(command string, args []string, stdout, stderr string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

// TargetError is a failure scoped to a single bulk target
type TargetError struct {
	Target string
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("[%s] %v", e.Target, e.Err)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}

// Re-exported helpers so callers only need this package
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)
