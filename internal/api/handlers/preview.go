package handlers

import (
	"net/http"
	"time"

	"github.com/Conceptual-Machines/stimulus-api/internal/metrics"
	"github.com/Conceptual-Machines/stimulus-api/internal/preview"
	"github.com/Conceptual-Machines/stimulus-api/internal/rng"
	"github.com/gin-gonic/gin"
)

type PreviewHandler struct {
	store      *rng.Store
	sampleRate int
	recorder   *metrics.Recorder
}

func NewPreviewHandler(store *rng.Store, sampleRate int, recorder *metrics.Recorder) *PreviewHandler {
	return &PreviewHandler{store: store, sampleRate: sampleRate, recorder: recorder}
}

// PreviewRequest names what to render: explicit frequencies, a base
// combination or a chord, checked in that order
type PreviewRequest struct {
	Frequencies []float64 `json:"frequencies,omitempty" binding:"max=12"`
	ComboBaseID string    `json:"comboBaseId,omitempty"`
	ChordID     string    `json:"chordId,omitempty"`
	DurationMs  int       `json:"durationMs,omitempty" binding:"min=0"`
	AttackMs    int       `json:"attackMs,omitempty" binding:"min=0"`
	ReleaseMs   int       `json:"releaseMs,omitempty" binding:"min=0"`
}

// Render returns the voicing as audio/wav
func (h *PreviewHandler) Render(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	freqs := req.Frequencies
	var err error
	switch {
	case len(freqs) > 0:
	case req.ComboBaseID != "":
		freqs, err = h.store.ResolveComboVoicing(req.ComboBaseID, 0)
	case req.ChordID != "":
		freqs, err = h.store.ResolveChordVoicing(req.ChordID, 0)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	start := time.Now()
	data, err := preview.RenderWAV(freqs, preview.Options{
		SampleRate: h.sampleRate,
		Duration:   time.Duration(req.DurationMs) * time.Millisecond,
		Attack:     time.Duration(req.AttackMs) * time.Millisecond,
		Release:    time.Duration(req.ReleaseMs) * time.Millisecond,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.recorder.RecordPreview(c.Request.Context(), len(freqs), time.Since(start))

	c.Data(http.StatusOK, "audio/wav", data)
}
