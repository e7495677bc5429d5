package pipeline

import (
	"context"

	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
)

// Indicator shows the progress of one named step
type Indicator interface {
	Run(name string, action func() error) error
}

// Action is the side-effecting work of a step
type Action func(ctx context.Context) error

// Runner executes named steps behind an Indicator
type Runner struct {
	indicator Indicator
}

// NewRunner creates a Runner that reports through indicator
func NewRunner(indicator Indicator) *Runner {
	return &Runner{indicator: indicator}
}

// Run executes action under name. A failure is returned as a *StepError carrying
// abortMessage; an already canceled context fails the step without running it.
func (r *Runner) Run(ctx context.Context, name, abortMessage string, action Action) error {
	err := r.indicator.Run(name, func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return action(ctx)
	})
	if err != nil {
		return scaffolderrors.NewStepError(name, abortMessage, err)
	}
	return nil
}

// Step is one entry of a Pipeline
type Step struct {
	Name         string
	AbortMessage string
	Action       Action
	// Skip, when set and returning true at run time, leaves the step out.
	Skip func() bool
}

// Result describes how far a pipeline got
type Result struct {
	Completed []string
	Skipped   []string
	Failed    string
}

// Pipeline is an ordered list of fatal-on-failure steps
type Pipeline struct {
	runner *Runner
	steps  []Step
}

// New creates an empty pipeline
func New(runner *Runner) *Pipeline {
	return &Pipeline{runner: runner}
}

// Add appends a step and returns the pipeline for chaining
func (p *Pipeline) Add(name, abortMessage string, action Action) *Pipeline {
	p.steps = append(p.steps, Step{Name: name, AbortMessage: abortMessage, Action: action})
	return p
}

// AddStep appends a fully specified step
func (p *Pipeline) AddStep(step Step) *Pipeline {
	p.steps = append(p.steps, step)
	return p
}

// Steps returns the step names in execution order
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name
	}
	return names
}

// Run executes the steps in order and stops at the first failure
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	var result Result
	for _, step := range p.steps {
		if step.Skip != nil && step.Skip() {
			result.Skipped = append(result.Skipped, step.Name)
			continue
		}
		if err := p.runner.Run(ctx, step.Name, step.AbortMessage, step.Action); err != nil {
			result.Failed = step.Name
			return result, err
		}
		result.Completed = append(result.Completed, step.Name)
	}
	return result, nil
}
