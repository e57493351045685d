// Package sentryutil wraps sentry-go for error reporting. All helpers are
// no-ops until Init is called with a DSN.
package sentryutil

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

// Options configures error reporting.
type Options struct {
	DSN         string
	Environment string
	Release     string
}

// Init configures the global Sentry client. An empty DSN leaves reporting
// disabled.
func Init(opts Options, logger *slog.Logger) error {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		Release:     opts.Release,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			event.User = sentry.User{}
			return event
		},
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	if opts.DSN == "" {
		logger.Debug("SENTRY_DSN empty, error reporting disabled")
	} else {
		logger.Info("sentry initialized", "environment", opts.Environment)
	}
	return nil
}

func Flush() { sentry.Flush(2 * time.Second) }

func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// CapturePanic reports a recovered panic value at fatal level.
func CapturePanic(v any, tags map[string]string) {
	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelFatal)
		for k, val := range tags {
			scope.SetTag(k, val)
		}
		hub.Recover(v)
	})
	hub.Flush(2 * time.Second)
}
