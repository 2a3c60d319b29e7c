package rng

import "github.com/Conceptual-Machines/stimulus-api/internal/models"

// AssignModels picks a sound model id for every voice of a generated button.
// An empty string means no model. The result depends only on the arguments.
// voiceCount is capped at MaxPolyphony, the largest voice count a button can have.
//
//   - same: every voice gets the first selected model
//   - byIndex: the explicit mapping, then selected[i mod n], then the default
//   - roundRobin: selected[(buttonIndex+i) mod n], or the default when none are selected
func AssignModels(buttonIndex, voiceCount int, spec models.ModelAssignmentSpec, selectedModelIDs []string) []string {
	if voiceCount <= 0 {
		return []string{}
	}
	if voiceCount > MaxPolyphony {
		voiceCount = MaxPolyphony
	}
	out := make([]string, voiceCount)
	n := len(selectedModelIDs)

	switch spec.Policy {
	case models.AssignSame:
		if n > 0 {
			for i := range out {
				out[i] = selectedModelIDs[0]
			}
		}
	case models.AssignByIndex:
		for i := range out {
			switch {
			case i < len(spec.ByIndex) && spec.ByIndex[i] != "":
				out[i] = spec.ByIndex[i]
			case n > 0:
				out[i] = selectedModelIDs[i%n]
			default:
				out[i] = spec.DefaultModelID
			}
		}
	default:
		for i := range out {
			if n == 0 {
				out[i] = spec.DefaultModelID
				continue
			}
			out[i] = selectedModelIDs[((buttonIndex+i)%n+n)%n]
		}
	}
	return out
}

// AssignModelsForVoices applies the store's own assignment policy and model filter
func (s *Store) AssignModelsForVoices(buttonIndex, voiceCount int) []string {
	cfg := s.Config()
	return AssignModels(buttonIndex, voiceCount, cfg.ModelAssignment, cfg.ModelFilter.SelectedModelIDs)
}
