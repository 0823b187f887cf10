package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics records requests and searches as Sentry spans
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a Sentry recorder; it is a no-op without a DSN
func NewSentryMetrics(dsn string) *SentryMetrics {
	return &SentryMetrics{enabled: dsn != ""}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))
	span.SetData("duration_ms", duration.Milliseconds())

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordGeneration tags the request transaction with the search outcome and
// records a child span for the search itself.
func (m *SentryMetrics) RecordGeneration(ctx context.Context, s GenerationSample) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("harmony.preset", presetLabel(s.Preset))
		transaction.SetTag("harmony.outcome", outcome(s))
		transaction.SetData("harmony.attempts", s.Attempts)
	}

	span := sentry.StartSpan(ctx, "generation.search")
	defer span.Finish()

	span.SetTag("preset", presetLabel(s.Preset))
	span.SetTag("fallback", fmt.Sprintf("%t", s.Fallback))
	span.SetData("duration_ms", s.Duration.Milliseconds())
	span.SetData("attempts", s.Attempts)
	span.SetData("rejections", s.Rejections)

	if s.Success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusNotFound
	}
	span.Description = fmt.Sprintf("Generation: %s", outcome(s))
}
