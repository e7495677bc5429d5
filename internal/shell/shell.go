// Package shell runs the external build tools (npm, composer) inside a checkout.
package shell

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
)

// passthroughEnv lists the only variables handed to child processes
var passthroughEnv = []string{"PATH", "HOME"}

// Runner executes a command in a directory and returns its trimmed stdout
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	// Timeout bounds a command when the context has no deadline. Zero,
	// the default, lets a command run until it exits or ctx is cancelled.
	Timeout time.Duration
	// Env is appended to the passthrough environment.
	Env []string
}

// NewExecRunner creates an ExecRunner without a command timeout
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes name with args in dir. A failure is a *errors.CommandError
// carrying the captured output.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok && r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(Environ(), r.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return "", scaffolderrors.NewCommandError(name, args,
			strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Environ returns the passthrough subset of the current environment
func Environ() []string {
	env := make([]string, 0, len(passthroughEnv))
	for _, key := range passthroughEnv {
		if value, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+value)
		}
	}
	return env
}
