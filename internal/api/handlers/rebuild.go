package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/Conceptual-Machines/stimulus-api/internal/buttons"
	"github.com/Conceptual-Machines/stimulus-api/internal/metrics"
	"github.com/Conceptual-Machines/stimulus-api/internal/rng"
)

// Rebuilder reruns the RNG pipeline after a mutation and refreshes linked buttons
type Rebuilder struct {
	store    *rng.Store
	board    *buttons.Board
	a4Hz     float64
	recorder *metrics.Recorder
}

func NewRebuilder(store *rng.Store, board *buttons.Board, a4Hz float64, recorder *metrics.Recorder) *Rebuilder {
	return &Rebuilder{store: store, board: board, a4Hz: a4Hz, recorder: recorder}
}

// Rebuild returns an empty report without error when no template is active;
// the derived collections are simply empty then
func (r *Rebuilder) Rebuild(ctx context.Context) (rng.RebuildReport, error) {
	start := time.Now()
	report, err := r.store.Rebuild(r.a4Hz)
	if errors.Is(err, rng.ErrNoActiveTemplate) {
		report, err = rng.RebuildReport{}, nil
	}

	r.recorder.RecordRebuild(ctx, metrics.RebuildStats{
		TemplateID: r.store.Config().TemplateID,
		Duration:   time.Since(start),
		Items:      report.Items,
		Combos:     report.Combos,
		CombosBase: report.CombosBase,
		Success:    err == nil,
	})
	if err != nil {
		return report, err
	}

	r.board.RefreshLinked(r.store)
	return report, nil
}
