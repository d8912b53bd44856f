// Package tracking reports errors to Sentry. Every function is a no-op until
// Init succeeds with a DSN.
package tracking

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Fe2Far/fiap-challenge4/pkg/common/logger"
	"github.com/getsentry/sentry-go"
)

var enabled atomic.Bool

func Init(dsn, environment, release string) error {
	if dsn == "" {
		logger.Log.Debug("Sentry DSN not set, error tracking disabled")
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return err
	}
	enabled.Store(true)
	logger.Log.WithField("environment", environment).Info("Sentry error tracking enabled")
	return nil
}

func Enabled() bool {
	return enabled.Load()
}

// CaptureError sends err with the given tags on a cloned hub so concurrent
// requests do not share scope.
func CaptureError(ctx context.Context, err error, tags map[string]string) {
	if !enabled.Load() || err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub = hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
	})
	hub.CaptureException(err)
}

func CapturePanic(recovered interface{}, tags map[string]string) {
	if !enabled.Load() {
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
	})
	hub.Recover(recovered)
}

func Flush() {
	if enabled.Load() {
		sentry.Flush(2 * time.Second)
	}
}
