// Package runner drives the sample, display, sleep cycle.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/luki/pistats/internal/stats"
)

// Interval is the fixed delay between the end of one tick and the start of
// the next.
const Interval = 1 * time.Second

// Policy decides what a failed sample does to the loop.
type Policy string

const (
	// PolicyExit stops the loop and returns the sample error.
	PolicyExit Policy = "exit"
	// PolicyRetry logs the error, skips the tick and keeps going.
	PolicyRetry Policy = "retry"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyExit, PolicyRetry:
		return p, nil
	default:
		return "", fmt.Errorf("unknown error policy %q (want %q or %q)", s, PolicyExit, PolicyRetry)
	}
}

// Sampler produces one snapshot per call.
type Sampler interface {
	Sample(ctx context.Context) (stats.Snapshot, error)
}

// Display shows one rendered line per tick.
type Display interface {
	Show(text string) error
}

// Loop runs until its context is cancelled or a sample fails under
// PolicyExit.
type Loop struct {
	Sampler Sampler
	Display Display
	Policy  Policy
	Logger  *slog.Logger

	// After defaults to time.After; tests replace it.
	After func(time.Duration) <-chan time.Time
}

// Run ticks forever. Cancellation is not an error.
func (l *Loop) Run(ctx context.Context) error {
	after := l.After
	if after == nil {
		after = time.After
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for {
		if err := l.tick(ctx, logger); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-after(Interval):
		}
	}
}

func (l *Loop) tick(ctx context.Context, logger *slog.Logger) error {
	snap, err := l.Sampler.Sample(ctx)
	if err != nil {
		if l.Policy != PolicyRetry || ctx.Err() != nil {
			return err
		}
		attrs := []any{"error", err}
		var queryErr *stats.HardwareQueryError
		if errors.As(err, &queryErr) {
			attrs = append(attrs, "metric", queryErr.Metric)
		}
		logger.Warn("sample failed, skipping tick", attrs...)
		return nil
	}

	if err := l.Display.Show(snap.String()); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}
