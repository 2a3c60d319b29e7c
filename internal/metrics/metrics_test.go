package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewClient_DisabledOutsideProduction(t *testing.T) {
	client, err := NewClient(context.Background(), "development")
	assert.NoError(t, err)
	assert.False(t, client.Enabled())

	// Disabled clients are no-ops
	client.RecordAPIRequest("/health", 200, time.Millisecond)
	client.RecordRebuild(RebuildStats{Success: true})
	client.RecordPreview(3)
	assert.NoError(t, client.putMetric("x", 1, "Count", nil))
}

func TestClient_NilIsDisabled(t *testing.T) {
	var client *Client
	assert.False(t, client.Enabled())
	client.RecordPreview(1)
}

func TestDimensions(t *testing.T) {
	client := &Client{environment: "staging"}
	dims := client.dimensions("Endpoint", "/api/v1/rng/state", "dangling")

	assert.Len(t, dims, 2)
	assert.Equal(t, "Environment", *dims[0].Name)
	assert.Equal(t, "staging", *dims[0].Value)
	assert.Equal(t, "Endpoint", *dims[1].Name)
	assert.Equal(t, "/api/v1/rng/state", *dims[1].Value)
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	ctx := context.Background()
	r.RecordAPIRequest(ctx, "/health", 200, time.Millisecond)
	r.RecordRebuild(ctx, RebuildStats{})
	r.RecordPreview(ctx, 2, time.Millisecond)
}

func TestRecorder_WithoutSentryClient(t *testing.T) {
	cloud, err := NewClient(context.Background(), "test")
	assert.NoError(t, err)

	r := NewRecorder(cloud)
	ctx := context.Background()
	r.RecordAPIRequest(ctx, "/health", 200, time.Millisecond)
	r.RecordRebuild(ctx, RebuildStats{TemplateID: "western-12tet-letter", Success: true, CombosBase: 3})
	r.RecordPreview(ctx, 2, time.Millisecond)
}
