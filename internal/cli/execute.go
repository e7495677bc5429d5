package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
	"wpscaffold.dev/wpscaffold/internal/tui"
)

// Execute runs root and returns the process exit code
func Execute(ctx context.Context, root *cobra.Command) int {
	return Report(root.ExecuteContext(ctx), tui.NewSplog())
}

// Report prints err for the operator and maps it to an exit code. An abort
// by the operator is not a failure; a failed step prints its cause followed
// by the step's abort message.
func Report(err error, splog *tui.Splog) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, scaffolderrors.ErrAborted) || errors.Is(err, context.Canceled) {
		splog.Newline()
		splog.Error("%s", tui.FormatError("Aborted."))
		return 0
	}

	var stepErr *scaffolderrors.StepError
	if errors.As(err, &stepErr) {
		splog.Error("%v", stepErr.Err)
		splog.Newline()
		splog.Error("%s", tui.FormatError(stepErr.AbortMessage))
		return 1
	}

	splog.Error("%s", tui.FormatError(err.Error()))
	return 1
}
