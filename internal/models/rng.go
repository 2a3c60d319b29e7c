package models

// TemplateType distinguishes pitch-class vocabularies from absolute frequencies
type TemplateType string

const (
	TemplateLetter    TemplateType = "letter"
	TemplateFrequency TemplateType = "frequency"
)

// ScaleTemplate is a named pitch vocabulary
type ScaleTemplate struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Type    TemplateType `json:"type"`
	Letters []string     `json:"letters,omitempty"` // canonical pitch classes, letter templates only
	FreqsHz []float64    `json:"freqsHz,omitempty"` // absolute frequencies, frequency templates only
	BuiltIn bool         `json:"builtIn,omitempty"`
}

// Size returns the number of entries in the template's vocabulary
func (t *ScaleTemplate) Size() int {
	if t.Type == TemplateLetter {
		return len(t.Letters)
	}
	return len(t.FreqsHz)
}

// OctaveSpec holds the globally allowed octaves (1..10)
type OctaveSpec struct {
	SingleOctaves         []int `json:"singleOctaves"`
	ChordOctaves          []int `json:"chordOctaves"`
	SameForSingleAndChord bool  `json:"sameForSingleAndChord"`
}

// PolyphonySource selects what multi-voice stimuli are built from
type PolyphonySource string

const (
	SourceCombinations PolyphonySource = "combinations"
	SourceChords       PolyphonySource = "chords"
	SourceBoth         PolyphonySource = "both"
)

type PolyphonySpec struct {
	Enabled    bool            `json:"enabled"`
	K          int             `json:"k"` // 1..12
	Source     PolyphonySource `json:"source"`
	MaxButtons int             `json:"maxButtons,omitempty"`
}

// NormalizedPoint is a contour keyframe, both axes in 0..1
type NormalizedPoint struct {
	T float64 `json:"t"`
	V float64 `json:"v"`
}

// ContourShape names the interpolation of a pitch contour
type ContourShape string

const (
	ContourLinear ContourShape = "linear"
	ContourExp    ContourShape = "exp"
	ContourSine   ContourShape = "sine"
	ContourCustom ContourShape = "custom"
)

type ContourCurve struct {
	StartHz float64           `json:"startHz"`
	EndHz   float64           `json:"endHz"`
	Shape   ContourShape      `json:"shape"`
	Points  []NormalizedPoint `json:"points,omitempty"`
}

type ToneShapeSpec struct {
	Mode  string        `json:"mode"` // "static" or "contour"
	Curve *ContourCurve `json:"curve,omitempty"`
}

// ContourOverrides are keyed by item id, chord id, "chordId::memberKey",
// combo base id and "comboBaseId::noteIndex"
type ContourOverrides struct {
	Single       map[string]ContourCurve `json:"single"`
	ChordGroup   map[string]ContourCurve `json:"chordGroup"`
	ChordPerNote map[string]ContourCurve `json:"chordPerNote"`
	ComboGroup   map[string]ContourCurve `json:"comboGroup"`
	ComboPerNote map[string]ContourCurve `json:"comboPerNote"`
}

type DurationSpec struct {
	MinSec     float64 `json:"minSec"`
	MaxSec     float64 `json:"maxSec"`
	Randomized bool    `json:"randomized"`
}

type GapSpec struct {
	MinSec            float64 `json:"minSec"`
	MaxSec            float64 `json:"maxSec"`
	Randomized        bool    `json:"randomized"`
	AdvanceOnResponse bool    `json:"advanceOnResponse"`
	CutOffOnResponse  bool    `json:"cutOffOnResponse"`
}

type OutputRateSpec struct {
	MinPerSec float64 `json:"minPerSec"`
	MaxPerSec float64 `json:"maxPerSec"`
}

type ProbabilitySpec struct {
	Kind        string    `json:"kind"` // "uniform" or "custom"
	Weights     []float64 `json:"weights,omitempty"`
	RepeatCount int       `json:"repeatCount,omitempty"`
}

// ModelFilter restricts the sound models used for generation; empty means all
type ModelFilter struct {
	SelectedModelIDs []string `json:"selectedModelIds"`
}

type ModelAssignmentPolicy string

const (
	AssignSame       ModelAssignmentPolicy = "same"
	AssignRoundRobin ModelAssignmentPolicy = "roundRobin"
	AssignByIndex    ModelAssignmentPolicy = "byIndex"
)

type ModelAssignmentSpec struct {
	Policy         ModelAssignmentPolicy `json:"policy"`
	ByIndex        []string              `json:"byIndex,omitempty"` // voice 1 -> ByIndex[0]
	DefaultModelID string                `json:"defaultModelId,omitempty"`
}

// RNGConfig declares which stimuli are generated and how they sound
type RNGConfig struct {
	TemplateID      string     `json:"templateId,omitempty"`
	SelectedIndices []int      `json:"selectedIndices"`
	Octave          OctaveSpec `json:"octave"`

	ToneShape        ToneShapeSpec    `json:"toneShape"`
	ContourOverrides ContourOverrides `json:"contourOverrides"`

	Duration   DurationSpec   `json:"duration"`
	Gap        GapSpec        `json:"gap"`
	OutputRate OutputRateSpec `json:"outputRate"`

	Probability ProbabilitySpec `json:"probability"`
	Polyphony   PolyphonySpec   `json:"polyphony"`

	ModelFilter     ModelFilter         `json:"modelFilter"`
	ModelAssignment ModelAssignmentSpec `json:"modelAssignment"`

	TuningSystemID string `json:"tuningSystemId,omitempty"`
}

// RNGItem is a resolved, octave-bound pitch
type RNGItem struct {
	ID     string  `json:"id"`    // pc-<idx>-o<oct> or f-<hz>
	Label  string  `json:"label"` // "C#4" or "440.00 Hz"
	FreqHz float64 `json:"freqHz"`
}

// RNGCombination is used for both resolved and base (octave-agnostic) combos
type RNGCombination struct {
	ID      string   `json:"id"`
	ItemIDs []string `json:"itemIds"`
	Labels  string   `json:"labels"`
}

// RNGChordMember references a template pitch or carries an ad-hoc frequency
type RNGChordMember struct {
	ItemRefID string  `json:"itemRefId,omitempty"`
	FreqHz    float64 `json:"freqHz,omitempty"`
	Label     string  `json:"label,omitempty"`
}

type RNGChord struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Members []RNGChordMember `json:"members"`
}

type OctavePolicyMode string

const (
	PolicyGlobal      OctavePolicyMode = "global"
	PolicyUniform     OctavePolicyMode = "uniform"
	PolicyRelative    OctavePolicyMode = "relative"
	PolicyIndependent OctavePolicyMode = "independent"
)

// OctavePolicy is a tagged union; only the fields of Mode are meaningful.
// Use Normalized to drop the rest.
type OctavePolicy struct {
	Mode OctavePolicyMode `json:"mode"`

	// uniform
	Octaves []int `json:"octaves,omitempty"`

	// relative
	RootIndex   int   `json:"rootIndex,omitempty"` // 1-based
	RootOctaves []int `json:"rootOctaves,omitempty"`
	Offsets     []int `json:"offsets,omitempty"`

	// independent, keyed by 1-based note position
	Allowed map[int][]int `json:"allowed,omitempty"`
}

// Normalized returns a copy holding only the fields of its mode.
// An empty or unknown mode becomes global.
func (p OctavePolicy) Normalized() OctavePolicy {
	switch p.Mode {
	case PolicyUniform:
		return OctavePolicy{Mode: PolicyUniform, Octaves: cloneInts(p.Octaves)}
	case PolicyRelative:
		return OctavePolicy{
			Mode:        PolicyRelative,
			RootIndex:   p.RootIndex,
			RootOctaves: cloneInts(p.RootOctaves),
			Offsets:     cloneInts(p.Offsets),
		}
	case PolicyIndependent:
		allowed := make(map[int][]int, len(p.Allowed))
		for pos, octaves := range p.Allowed {
			allowed[pos] = cloneInts(octaves)
		}
		return OctavePolicy{Mode: PolicyIndependent, Allowed: allowed}
	default:
		return OctavePolicy{Mode: PolicyGlobal}
	}
}

func cloneInts(in []int) []int {
	if in == nil {
		return nil
	}
	out := make([]int, len(in))
	copy(out, in)
	return out
}
