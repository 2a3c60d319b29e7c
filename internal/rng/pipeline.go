package rng

import "github.com/Conceptual-Machines/stimulus-api/internal/logger"

// Stage names a step of the rebuild pipeline
type Stage string

const (
	StageResolveItems    Stage = "resolve-items"
	StageBuildCombos     Stage = "build-combos"
	StageBuildCombosBase Stage = "build-combos-base"
)

// Pipeline is the order in which derived collections are rebuilt.
// Octave policies are applied on demand by the voicing calls.
var Pipeline = []Stage{StageResolveItems, StageBuildCombos, StageBuildCombosBase}

// RebuildReport holds the sizes of the rebuilt collections
type RebuildReport struct {
	Items      int `json:"items"`
	Combos     int `json:"combos"`
	CombosBase int `json:"combosBase"`
}

// Rebuild runs every pipeline stage under one lock, so readers never see a
// half-rebuilt state. Calling it twice with unchanged input yields identical
// collections.
func (s *Store) Rebuild(a4Hz float64) (RebuildReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stage := range Pipeline {
		if err := s.runStageLocked(stage, a4Hz); err != nil {
			logger.Warn("Rebuild stage failed", logger.Fields{
				"stage":       string(stage),
				"template_id": s.state.Config.TemplateID,
				"error":       err.Error(),
			})
			return RebuildReport{}, err
		}
	}

	report := RebuildReport{
		Items:      len(s.state.Items),
		Combos:     len(s.state.Combos),
		CombosBase: len(s.state.CombosBase),
	}
	logger.Debug("RNG rebuilt", logger.Fields{
		"items":       report.Items,
		"combos":      report.Combos,
		"combos_base": report.CombosBase,
	})
	return report, nil
}

func (s *Store) runStageLocked(stage Stage, a4Hz float64) error {
	switch stage {
	case StageResolveItems:
		return s.resolveItemsLocked(a4Hz)
	case StageBuildCombos:
		s.buildCombosLocked()
	case StageBuildCombosBase:
		s.buildCombosBaseLocked()
	}
	return nil
}
