package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
)

// directIndicator runs actions without drawing anything and records names
type directIndicator struct {
	names []string
}

func (d *directIndicator) Run(name string, action func() error) error {
	d.names = append(d.names, name)
	return action()
}

func TestRunner(t *testing.T) {
	t.Parallel()

	t.Run("wraps failures with the abort message", func(t *testing.T) {
		t.Parallel()
		runner := NewRunner(&directIndicator{})
		cause := errors.New("boom")

		err := runner.Run(context.Background(), "Cloning template", "Could not clone the template", func(context.Context) error {
			return cause
		})

		var stepErr *scaffolderrors.StepError
		require.ErrorAs(t, err, &stepErr)
		require.Equal(t, "Cloning template", stepErr.Step)
		require.Equal(t, "Could not clone the template", stepErr.AbortMessage)
		require.ErrorIs(t, err, cause)
	})

	t.Run("returns nil when the action succeeds", func(t *testing.T) {
		t.Parallel()
		runner := NewRunner(&directIndicator{})

		err := runner.Run(context.Background(), "ok", "never shown", func(context.Context) error { return nil })
		require.NoError(t, err)
	})

	t.Run("does not run the action when the context is done", func(t *testing.T) {
		t.Parallel()
		runner := NewRunner(&directIndicator{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		err := runner.Run(ctx, "late", "canceled", func(context.Context) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, context.Canceled)
		require.False(t, called)
	})
}

func TestPipeline(t *testing.T) {
	t.Parallel()

	t.Run("a failing step stops every later step", func(t *testing.T) {
		t.Parallel()
		indicator := &directIndicator{}
		var ran []string
		record := func(name string, err error) Action {
			return func(context.Context) error {
				ran = append(ran, name)
				return err
			}
		}

		p := New(NewRunner(indicator)).
			Add("one", "abort one", record("one", nil)).
			Add("two", "abort two", record("two", errors.New("failed"))).
			Add("three", "abort three", record("three", nil)).
			Add("four", "abort four", record("four", nil))

		result, err := p.Run(context.Background())
		require.Error(t, err)
		require.Equal(t, []string{"one", "two"}, ran)
		require.Equal(t, []string{"one", "two"}, indicator.names)
		require.Equal(t, []string{"one"}, result.Completed)
		require.Equal(t, "two", result.Failed)

		var stepErr *scaffolderrors.StepError
		require.ErrorAs(t, err, &stepErr)
		require.Equal(t, "abort two", stepErr.AbortMessage)
	})

	t.Run("skipped steps are reported but not run", func(t *testing.T) {
		t.Parallel()
		ran := 0
		p := New(NewRunner(&directIndicator{})).
			Add("first", "", func(context.Context) error { ran++; return nil }).
			AddStep(Step{
				Name:   "optional",
				Action: func(context.Context) error { ran++; return nil },
				Skip:   func() bool { return true },
			}).
			Add("last", "", func(context.Context) error { ran++; return nil })

		result, err := p.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, 2, ran)
		require.Equal(t, []string{"first", "last"}, result.Completed)
		require.Equal(t, []string{"optional"}, result.Skipped)
		require.Empty(t, result.Failed)
		require.Equal(t, []string{"first", "optional", "last"}, p.Steps())
	})
}
