// Package observability provides the logger used across the charting
// engine: a slog wrapper that can forward captured errors to Sentry.
package observability

import (
	"io"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

// CoreLogger wraps slog and optionally reports captured errors to Sentry.
// Chart construction failures are captured; per-source load errors are not,
// since those degrade to placeholder datasets.
type CoreLogger struct {
	*slog.Logger
	hub *sentry.Hub
}

func NewCoreLogger(logger *slog.Logger, hub *sentry.Hub) *CoreLogger {
	return &CoreLogger{Logger: logger, hub: hub}
}

// NewSentryHub initializes a Sentry hub for the given DSN. An empty DSN
// returns nil, which disables capture without disabling logging.
func NewSentryHub(dsn string) (*sentry.Hub, error) {
	if dsn == "" {
		return nil, nil
	}
	client, err := sentry.NewClient(sentry.ClientOptions{Dsn: dsn})
	if err != nil {
		return nil, err
	}
	return sentry.NewHub(client, sentry.NewScope()), nil
}

// With returns a derived logger carrying the given attributes.
func (cl *CoreLogger) With(args ...any) *CoreLogger {
	return &CoreLogger{Logger: cl.Logger.With(args...), hub: cl.hub}
}

// CaptureError logs an error and sends it to Sentry when configured.
func (cl *CoreLogger) CaptureError(err error, args ...any) {
	cl.Error(err.Error(), args...)
	if cl.hub != nil {
		cl.hub.CaptureException(err)
	}
}

// NewNoOpLogger returns a logger that discards all messages. Tests use it.
func NewNoOpLogger() *CoreLogger {
	return &CoreLogger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
