// Package sentry wraps github.com/getsentry/sentry-go initialization and
// its gin middleware, the teacher's error-monitoring dependency.
package sentry

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
)

// Init configures the global Sentry client. A blank dsn disables reporting
// without the caller needing a conditional.
func Init(dsn, environment string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
}

// Middleware returns the gin handler that captures panics and request
// context into Sentry.
func Middleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{Repanic: true, Timeout: 5 * time.Second})
}

// Capture reports err with an optional tag, used outside request scope
// (scraper runs, scheduler jobs).
func Capture(err error, tag string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		if tag != "" {
			scope.SetTag("component", tag)
		}
		sentry.CaptureException(fmt.Errorf("%w", err))
	})
}

// Flush blocks up to timeout waiting for buffered events to send, call on
// shutdown.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
