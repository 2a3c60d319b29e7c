package metrics

import (
	"context"
	"time"
)

// RebuildStats describes one run of the rebuild pipeline
type RebuildStats struct {
	TemplateID string
	Duration   time.Duration
	Items      int
	Combos     int
	CombosBase int
	Success    bool
}

// Recorder fans metrics out to Sentry spans and, in production, CloudWatch.
// A nil *Recorder records nothing.
type Recorder struct {
	sentry *SentryMetrics
	cloud  *Client
}

func NewRecorder(cloud *Client) *Recorder {
	return &Recorder{sentry: NewSentryMetrics(), cloud: cloud}
}

func (r *Recorder) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if r == nil {
		return
	}
	r.sentry.RecordAPIRequest(ctx, endpoint, statusCode, duration)
	r.cloud.RecordAPIRequest(endpoint, statusCode, duration)
}

func (r *Recorder) RecordRebuild(ctx context.Context, stats RebuildStats) {
	if r == nil {
		return
	}
	r.sentry.RecordRebuild(ctx, stats)
	r.cloud.RecordRebuild(stats)
}

func (r *Recorder) RecordPreview(ctx context.Context, voices int, duration time.Duration) {
	if r == nil {
		return
	}
	r.sentry.RecordPreview(ctx, voices, duration)
	r.cloud.RecordPreview(voices)
}
