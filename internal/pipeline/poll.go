package pipeline

import (
	"context"
	"fmt"
	"time"

	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
)

// DefaultDelays is the retry schedule used while waiting for a fresh repository.
// Attempts past the end of the list keep sleeping for the last value.
var DefaultDelays = []time.Duration{
	500 * time.Millisecond,
	1 * time.Second,
	1 * time.Second,
	2 * time.Second,
	3 * time.Second,
	4 * time.Second,
	5 * time.Second,
}

// CheckFunc reports whether the polled system is ready
type CheckFunc func(ctx context.Context) (bool, error)

// Poller repeats a check with a non-decreasing, capped delay between attempts
type Poller struct {
	Delays []time.Duration
	// MaxAttempts bounds the number of checks; zero means unbounded.
	MaxAttempts int
	// IsTransient decides which check errors are retried instead of returned.
	IsTransient func(error) bool
	// Sleep waits between attempts; it must return early when ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a Poller with the default schedule and no attempt limit
func NewPoller(isTransient func(error) bool) *Poller {
	return &Poller{
		Delays:      DefaultDelays,
		IsTransient: isTransient,
		Sleep:       SleepContext,
	}
}

// Delay returns the delay that follows attempt (zero-based)
func (p *Poller) Delay(attempt int) time.Duration {
	if len(p.Delays) == 0 {
		return 0
	}
	if attempt >= len(p.Delays) {
		return p.Delays[len(p.Delays)-1]
	}
	return p.Delays[attempt]
}

// Poll runs check until it reports ready, returns a non-transient error,
// the attempt limit is hit or ctx is done. It returns the number of checks made.
func (p *Poller) Poll(ctx context.Context, check CheckFunc) (int, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	for attempt := 0; ; attempt++ {
		ready, err := check(ctx)
		if err == nil && ready {
			return attempt + 1, nil
		}
		if err != nil && (p.IsTransient == nil || !p.IsTransient(err)) {
			return attempt + 1, err
		}
		if p.MaxAttempts > 0 && attempt+1 >= p.MaxAttempts {
			if err != nil {
				return attempt + 1, fmt.Errorf("%w after %d attempts: %w", scaffolderrors.ErrNotReady, attempt+1, err)
			}
			return attempt + 1, fmt.Errorf("%w after %d attempts", scaffolderrors.ErrNotReady, attempt+1)
		}
		if err := sleep(ctx, p.Delay(attempt)); err != nil {
			return attempt + 1, fmt.Errorf("stopped waiting after %d attempts: %w", attempt+1, err)
		}
	}
}

// SleepContext waits for d or until ctx is done
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
