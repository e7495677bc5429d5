package pipeline

import (
	"context"
	"fmt"
	"sync"

	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
)

// Outcome is what a single target's work reports on success
type Outcome struct {
	// Skipped marks a target that needed no change.
	Skipped bool
	Message string
}

// TargetFunc performs the work for one target
type TargetFunc func(ctx context.Context, target string) (Outcome, error)

// TargetResult is the captured result of one target
type TargetResult struct {
	Target  string
	Outcome Outcome
	Err     error
}

// FanOut runs fn for every target concurrently and waits for all of them.
// A failing target never cancels or affects its siblings; a panic is captured
// as that target's error. Results keep the order of targets.
func FanOut(ctx context.Context, targets []string, fn TargetFunc, onDone func(idx int, result TargetResult)) []TargetResult {
	results := make([]TargetResult, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(idx int, target string) {
			defer wg.Done()

			result := TargetResult{Target: target}
			func() {
				defer func() {
					if r := recover(); r != nil {
						result.Err = fmt.Errorf("panic: %v", r)
					}
				}()
				result.Outcome, result.Err = fn(ctx, target)
			}()
			if result.Err != nil {
				result.Err = &scaffolderrors.TargetError{Target: target, Err: result.Err}
			}

			results[idx] = result
			if onDone != nil {
				onDone(idx, result)
			}
		}(i, target)
	}
	wg.Wait()

	return results
}

// Failed returns the results that carry an error
func Failed(results []TargetResult) []TargetResult {
	var failed []TargetResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
