package rng

import "github.com/Conceptual-Machines/stimulus-api/internal/models"

// Built-in template ids
const (
	WesternLetterTemplateID = "tpl-western-letter"
	WesternFreqTemplateID   = "tpl-western-freq-oct4"
)

// Octave bounds accepted anywhere an octave is configured
const (
	MinOctave     = 1
	MaxOctave     = 10
	DefaultOctave = 4
)

// Polyphony bounds
const (
	MinPolyphony      = 1
	MaxPolyphony      = 12
	defaultK          = 2
	defaultMaxButtons = 200
)

// Octave-4 frequencies of the 12 western pitch classes, A4 = 440
var westernOct4Freqs = []float64{
	261.625565, 277.182631, 293.664768, 311.126984, 329.627557, 349.228231,
	369.994423, 391.995436, 415.304698, 440.0, 466.163762, 493.883301,
}

// BuiltInTemplates returns fresh copies of the immutable templates
func BuiltInTemplates() map[string]models.ScaleTemplate {
	return map[string]models.ScaleTemplate{
		WesternLetterTemplateID: {
			ID:      WesternLetterTemplateID,
			Name:    "Western 12TET (Pitch Classes)",
			Type:    models.TemplateLetter,
			Letters: []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"},
			BuiltIn: true,
		},
		WesternFreqTemplateID: {
			ID:      WesternFreqTemplateID,
			Name:    "Western 12TET (Octave 4 Frequencies)",
			Type:    models.TemplateFrequency,
			FreqsHz: append([]float64(nil), westernOct4Freqs...),
			BuiltIn: true,
		},
	}
}

// DefaultConfig returns the configuration of a fresh store
func DefaultConfig() models.RNGConfig {
	return models.RNGConfig{
		TemplateID:      WesternLetterTemplateID,
		SelectedIndices: []int{},
		Octave: models.OctaveSpec{
			SingleOctaves:         []int{DefaultOctave},
			ChordOctaves:          []int{DefaultOctave},
			SameForSingleAndChord: true,
		},
		ToneShape:        models.ToneShapeSpec{Mode: "static"},
		ContourOverrides: emptyContourOverrides(),
		Duration:         models.DurationSpec{MinSec: 0.3, MaxSec: 0.5},
		Gap:              models.GapSpec{MinSec: 0.3, MaxSec: 0.5},
		OutputRate:       models.OutputRateSpec{MinPerSec: 1, MaxPerSec: 4},
		Probability:      models.ProbabilitySpec{Kind: "uniform"},
		Polyphony: models.PolyphonySpec{
			K:          defaultK,
			Source:     models.SourceCombinations,
			MaxButtons: defaultMaxButtons,
		},
		ModelFilter:     models.ModelFilter{SelectedModelIDs: []string{}},
		ModelAssignment: models.ModelAssignmentSpec{Policy: models.AssignRoundRobin},
	}
}

func emptyContourOverrides() models.ContourOverrides {
	return models.ContourOverrides{
		Single:       map[string]models.ContourCurve{},
		ChordGroup:   map[string]models.ContourCurve{},
		ChordPerNote: map[string]models.ContourCurve{},
		ComboGroup:   map[string]models.ContourCurve{},
		ComboPerNote: map[string]models.ContourCurve{},
	}
}
