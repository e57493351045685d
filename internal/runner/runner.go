// Package runner restarts a long-running function when it fails.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/en9inerd/tagbot/internal/sentryutil"
)

// Options configures the restart loop.
type Options struct {
	// MaxRestarts is how many consecutive failures are restarted before
	// giving up. Defaults to 10.
	MaxRestarts int

	// RestartDelay is the pause before each restart. Defaults to 30s.
	RestartDelay time.Duration

	// StableAfter is the uptime after which the failure count resets.
	// Defaults to one hour.
	StableAfter time.Duration

	Logger *slog.Logger
}

func (o *Options) setDefaults() {
	if o.MaxRestarts <= 0 {
		o.MaxRestarts = 10
	}
	if o.RestartDelay <= 0 {
		o.RestartDelay = 30 * time.Second
	}
	if o.StableAfter <= 0 {
		o.StableAfter = time.Hour
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Run calls fn until it returns nil or ctx is cancelled. Failures and
// panics are reported and fn is restarted after RestartDelay, up to
// MaxRestarts times in a row.
func Run(ctx context.Context, opts Options, fn func(context.Context) error) error {
	opts.setDefaults()

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.RestartDelay), uint64(opts.MaxRestarts)),
		ctx,
	)

	for attempt := 1; ; attempt++ {
		started := time.Now()
		err := call(ctx, fn)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			return nil
		}

		if time.Since(started) >= opts.StableAfter {
			b.Reset()
		}

		sentryutil.CaptureError(err, map[string]string{"component": "runner"})

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			opts.Logger.Error("giving up after repeated failures", "attempts", attempt, "error", err)
			return fmt.Errorf("stopped after %d attempts: %w", attempt, err)
		}

		opts.Logger.Error("run failed, restarting", "attempt", attempt, "delay", wait, "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// call runs fn and converts a panic into an error.
func call(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			sentryutil.CapturePanic(r, map[string]string{"component": "runner"})
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn(ctx)
}
