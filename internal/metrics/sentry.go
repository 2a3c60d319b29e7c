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

// SentryMetrics records spans for Sentry performance monitoring
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // spans are dropped by the SDK when Sentry is not initialized
	}
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
	span.SetData("status_code", statusCode)

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordRebuild records one run of the rebuild pipeline
func (m *SentryMetrics) RecordRebuild(ctx context.Context, stats RebuildStats) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "rng.rebuild")
	defer span.Finish()

	span.SetTag("template_id", stats.TemplateID)
	span.SetTag("success", fmt.Sprintf("%t", stats.Success))

	span.SetData("duration_ms", stats.Duration.Milliseconds())
	span.SetData("items", stats.Items)
	span.SetData("combos", stats.Combos)
	span.SetData("combos_base", stats.CombosBase)

	if stats.Success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInvalidArgument
	}
	span.Description = fmt.Sprintf("Rebuild: %s", stats.TemplateID)
}

// RecordPreview records an offline WAV render
func (m *SentryMetrics) RecordPreview(ctx context.Context, voices int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "preview.render")
	defer span.Finish()

	span.SetData("voices", voices)
	span.SetData("duration_ms", duration.Milliseconds())
	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Preview: %d voices", voices)
}
