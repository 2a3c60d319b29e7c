package models

// ButtonShape is the outline of a training button
type ButtonShape string

const (
	ShapeCircle ButtonShape = "circle"
	ShapeOval   ButtonShape = "oval"
	ShapeSquare ButtonShape = "square"
	ShapeRect   ButtonShape = "rect"
	ShapeCustom ButtonShape = "custom"
)

// RNGRefType tells which RNG collection a linked button follows
type RNGRefType string

const (
	RefSingle RNGRefType = "single"
	RefCombo  RNGRefType = "combo"
	RefChord  RNGRefType = "chord"
)

type ButtonEnvelope struct {
	AttackMs  float64 `json:"attackMs,omitempty"`
	ReleaseMs float64 `json:"releaseMs,omitempty"`
	Curve     string  `json:"curve,omitempty"` // "linear" or "exp"
}

// ButtonVoice binds one frequency of a button to a sound model.
// A nil ModelID means "no model assigned".
type ButtonVoice struct {
	ModelID  *string         `json:"modelId"`
	GainDb   float64         `json:"gainDb,omitempty"`
	Pan      float64         `json:"pan,omitempty"`
	Envelope *ButtonEnvelope `json:"envelope,omitempty"`
}

type ButtonBorder struct {
	Enabled   bool    `json:"enabled"`
	Color     string  `json:"color,omitempty"`
	Thickness float64 `json:"thickness,omitempty"`
}

type ButtonAppearance struct {
	SizePx    float64       `json:"sizePx,omitempty"`
	Shape     ButtonShape   `json:"shape,omitempty"`
	ShapePath string        `json:"shapePath,omitempty"`
	Color     string        `json:"color,omitempty"`
	Border    *ButtonBorder `json:"border,omitempty"`
}

type TimedMode struct {
	Mode       string `json:"mode"`
	DurationMs int    `json:"durationMs"`
}

type ButtonBehavior struct {
	Trigger       string     `json:"trigger,omitempty"`   // momentary, latch, toggle
	Retrigger     string     `json:"retrigger,omitempty"` // restart, ignore, legato
	ReactiveColor *TimedMode `json:"reactiveColor,omitempty"`
	LightFeedback *TimedMode `json:"lightFeedback,omitempty"`
}

type ButtonLayout struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	W       float64 `json:"w,omitempty"`
	H       float64 `json:"h,omitempty"`
	GroupID string  `json:"groupId,omitempty"`
}

type RNGRef struct {
	Type RNGRefType `json:"type"`
	ID   string     `json:"id"`
}

// ButtonDefinition is a playable training button; len(Voices) == len(FreqHz)
type ButtonDefinition struct {
	ID            string            `json:"id"`
	Label         string            `json:"label"`
	LinkedFromRNG bool              `json:"linkedFromRng"`
	RNGRef        *RNGRef           `json:"rngRef,omitempty"`
	FreqHz        []float64         `json:"freqHz"`
	Voices        []ButtonVoice     `json:"voices"`
	Appearance    *ButtonAppearance `json:"appearance,omitempty"`
	Behavior      *ButtonBehavior   `json:"behavior,omitempty"`
	Layout        *ButtonLayout     `json:"layout,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
}
