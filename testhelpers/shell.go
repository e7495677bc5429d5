package testhelpers

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"wpscaffold.dev/wpscaffold/internal/shell"
)

// ShellCall is one command received by FakeShell
type ShellCall struct {
	Dir  string
	Name string
	Args []string
}

// String renders the call as a command line, e.g. "npm run build"
func (c ShellCall) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// FakeShell records commands instead of running them
type FakeShell struct {
	mu    sync.Mutex
	calls []ShellCall
	// handlers maps a command line to its behavior; unmatched commands succeed with no output.
	handlers map[string]func(dir string) (string, error)
}

var _ shell.Runner = (*FakeShell)(nil)

// NewFakeShell creates a shell where every command succeeds
func NewFakeShell() *FakeShell {
	return &FakeShell{handlers: make(map[string]func(string) (string, error))}
}

// On sets the behavior of a command line such as "composer install"
func (f *FakeShell) On(command string, fn func(dir string) (string, error)) *FakeShell {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[command] = fn
	return f
}

// Run records the call and runs its handler, if any
func (f *FakeShell) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	call := ShellCall{Dir: dir, Name: name, Args: args}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	fn := f.handlers[call.String()]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fn == nil {
		return "", nil
	}
	return fn(dir)
}

// Calls returns every recorded call in order
func (f *FakeShell) Calls() []ShellCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ShellCall(nil), f.calls...)
}

// Commands returns the recorded command lines in order
func (f *FakeShell) Commands() []string {
	calls := f.Calls()
	commands := make([]string, len(calls))
	for i, c := range calls {
		commands[i] = c.String()
	}
	return commands
}

// SyncBuffer is a bytes.Buffer safe for concurrent writers
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
