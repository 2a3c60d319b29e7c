package buttons

import (
	"fmt"

	"github.com/Conceptual-Machines/stimulus-api/internal/models"
	"github.com/Conceptual-Machines/stimulus-api/internal/rng"
)

const (
	defaultSizePx = 96
	defaultColor  = "#6B21A8"
	defaultX      = 40
	defaultY      = 40
)

// VoicingSource is the read side of the RNG store that buttons are generated from.
// *rng.Store satisfies it.
type VoicingSource interface {
	Config() models.RNGConfig
	Items() []models.RNGItem
	CombosBase() []models.RNGCombination
	Chords() []models.RNGChord
	ResolveComboVoicing(comboBaseID string, seed int64) ([]float64, error)
	ResolveChordVoicing(chordID string, seed int64) ([]float64, error)
}

// Generator turns RNG items, base combinations and chords into linked buttons
type Generator struct {
	src VoicingSource
}

func NewGenerator(src VoicingSource) *Generator {
	return &Generator{src: src}
}

// FromSingles builds one single-voice button per resolved item
func (g *Generator) FromSingles() []models.ButtonDefinition {
	cfg := g.src.Config()
	items := g.src.Items()

	out := make([]models.ButtonDefinition, 0, len(items))
	for idx, it := range items {
		out = append(out, newButton(
			"b-"+it.ID,
			it.Label,
			models.RNGRef{Type: models.RefSingle, ID: it.ID},
			[]float64{it.FreqHz},
			assignVoices(idx, 1, cfg),
		))
	}
	return out
}

// FromCombos builds one button per base combination, all of them when no ids are given.
// Unknown ids are skipped; output follows the store's combination order.
func (g *Generator) FromCombos(comboBaseIDs ...string) ([]models.ButtonDefinition, error) {
	cfg := g.src.Config()
	wanted := idSet(comboBaseIDs)

	out := []models.ButtonDefinition{}
	for _, c := range g.src.CombosBase() {
		if wanted != nil && !wanted[c.ID] {
			continue
		}
		freqs, err := g.src.ResolveComboVoicing(c.ID, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to voice combination %s: %w", c.ID, err)
		}
		out = append(out, newButton(
			"b-"+c.ID,
			c.Labels,
			models.RNGRef{Type: models.RefCombo, ID: c.ID},
			freqs,
			assignVoices(len(out), len(freqs), cfg),
		))
	}
	return out, nil
}

// FromChords builds one button per chord, all of them when no ids are given
func (g *Generator) FromChords(chordIDs ...string) ([]models.ButtonDefinition, error) {
	cfg := g.src.Config()
	wanted := idSet(chordIDs)

	out := []models.ButtonDefinition{}
	for _, ch := range g.src.Chords() {
		if wanted != nil && !wanted[ch.ID] {
			continue
		}
		freqs, err := g.src.ResolveChordVoicing(ch.ID, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to voice chord %s: %w", ch.ID, err)
		}
		out = append(out, newButton(
			"b-ch-"+ch.ID,
			ch.Name,
			models.RNGRef{Type: models.RefChord, ID: ch.ID},
			freqs,
			assignVoices(len(out), len(freqs), cfg),
		))
	}
	return out, nil
}

func newButton(id, label string, ref models.RNGRef, freqs []float64, voices []models.ButtonVoice) models.ButtonDefinition {
	return models.ButtonDefinition{
		ID:            id,
		Label:         label,
		LinkedFromRNG: true,
		RNGRef:        &ref,
		FreqHz:        freqs,
		Voices:        voices,
		Appearance: &models.ButtonAppearance{
			SizePx: defaultSizePx,
			Shape:  models.ShapeCircle,
			Color:  defaultColor,
		},
		Behavior: &models.ButtonBehavior{
			Trigger:       "momentary",
			ReactiveColor: &models.TimedMode{Mode: "off", DurationMs: 500},
			LightFeedback: &models.TimedMode{Mode: "off", DurationMs: 1000},
		},
		Layout: &models.ButtonLayout{X: defaultX, Y: defaultY},
	}
}

func assignVoices(buttonIndex, voiceCount int, cfg models.RNGConfig) []models.ButtonVoice {
	ids := rng.AssignModels(buttonIndex, voiceCount, cfg.ModelAssignment, cfg.ModelFilter.SelectedModelIDs)
	voices := make([]models.ButtonVoice, len(ids))
	for i, id := range ids {
		if id != "" {
			modelID := id
			voices[i].ModelID = &modelID
		}
	}
	return voices
}

// idSet returns nil for an empty list, meaning "everything"
func idSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
