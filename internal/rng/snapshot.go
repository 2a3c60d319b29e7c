package rng

import "github.com/Conceptual-Machines/stimulus-api/internal/models"

// Snapshot is a deep copy of everything a Store owns.
// It is the JSON document handed to the persistence layer.
type Snapshot struct {
	Templates  map[string]models.ScaleTemplate `json:"templates"`
	Config     models.RNGConfig                `json:"config"`
	Items      []models.RNGItem                `json:"items"`
	Combos     []models.RNGCombination         `json:"combos"`
	CombosBase []models.RNGCombination         `json:"combosBase"`
	Chords     []models.RNGChord               `json:"chords"`

	ComboOctavePolicies map[string]models.OctavePolicy `json:"comboOctavePolicies"`
	ChordOctavePolicies map[string]models.OctavePolicy `json:"chordOctavePolicies"`
}

func newSnapshot() Snapshot {
	return Snapshot{
		Templates:           BuiltInTemplates(),
		Config:              DefaultConfig(),
		Items:               []models.RNGItem{},
		Combos:              []models.RNGCombination{},
		CombosBase:          []models.RNGCombination{},
		Chords:              []models.RNGChord{},
		ComboOctavePolicies: map[string]models.OctavePolicy{},
		ChordOctavePolicies: map[string]models.OctavePolicy{},
	}
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Templates:           make(map[string]models.ScaleTemplate, len(s.Templates)),
		Config:              cloneConfig(s.Config),
		Items:               append([]models.RNGItem{}, s.Items...),
		Combos:              cloneCombos(s.Combos),
		CombosBase:          cloneCombos(s.CombosBase),
		Chords:              make([]models.RNGChord, 0, len(s.Chords)),
		ComboOctavePolicies: clonePolicies(s.ComboOctavePolicies),
		ChordOctavePolicies: clonePolicies(s.ChordOctavePolicies),
	}
	for id, tpl := range s.Templates {
		out.Templates[id] = cloneTemplate(tpl)
	}
	for _, ch := range s.Chords {
		out.Chords = append(out.Chords, cloneChord(ch))
	}
	return out
}

// normalize fills nil collections and restores missing built-in templates
func (s *Snapshot) normalize() {
	if s.Templates == nil {
		s.Templates = map[string]models.ScaleTemplate{}
	}
	for id, tpl := range BuiltInTemplates() {
		s.Templates[id] = tpl
	}
	if s.Items == nil {
		s.Items = []models.RNGItem{}
	}
	if s.Combos == nil {
		s.Combos = []models.RNGCombination{}
	}
	if s.CombosBase == nil {
		s.CombosBase = []models.RNGCombination{}
	}
	if s.Chords == nil {
		s.Chords = []models.RNGChord{}
	}
	if s.ComboOctavePolicies == nil {
		s.ComboOctavePolicies = map[string]models.OctavePolicy{}
	}
	if s.ChordOctavePolicies == nil {
		s.ChordOctavePolicies = map[string]models.OctavePolicy{}
	}
	for id, p := range s.ComboOctavePolicies {
		s.ComboOctavePolicies[id] = NormalizePolicy(p)
	}
	for id, p := range s.ChordOctavePolicies {
		s.ChordOctavePolicies[id] = NormalizePolicy(p)
	}
	if s.Config.SelectedIndices == nil {
		s.Config.SelectedIndices = []int{}
	}
	if s.Config.ModelFilter.SelectedModelIDs == nil {
		s.Config.ModelFilter.SelectedModelIDs = []string{}
	}
	co := &s.Config.ContourOverrides
	if co.Single == nil {
		co.Single = map[string]models.ContourCurve{}
	}
	if co.ChordGroup == nil {
		co.ChordGroup = map[string]models.ContourCurve{}
	}
	if co.ChordPerNote == nil {
		co.ChordPerNote = map[string]models.ContourCurve{}
	}
	if co.ComboGroup == nil {
		co.ComboGroup = map[string]models.ContourCurve{}
	}
	if co.ComboPerNote == nil {
		co.ComboPerNote = map[string]models.ContourCurve{}
	}
}

func cloneTemplate(t models.ScaleTemplate) models.ScaleTemplate {
	t.Letters = append([]string(nil), t.Letters...)
	t.FreqsHz = append([]float64(nil), t.FreqsHz...)
	return t
}

func cloneChord(ch models.RNGChord) models.RNGChord {
	ch.Members = append([]models.RNGChordMember{}, ch.Members...)
	return ch
}

func cloneCombos(in []models.RNGCombination) []models.RNGCombination {
	out := make([]models.RNGCombination, len(in))
	for i, c := range in {
		c.ItemIDs = append([]string{}, c.ItemIDs...)
		out[i] = c
	}
	return out
}

func clonePolicies(in map[string]models.OctavePolicy) map[string]models.OctavePolicy {
	out := make(map[string]models.OctavePolicy, len(in))
	for id, p := range in {
		out[id] = p.Normalized()
	}
	return out
}

func cloneCurve(c models.ContourCurve) models.ContourCurve {
	c.Points = append([]models.NormalizedPoint(nil), c.Points...)
	return c
}

func cloneCurves(in map[string]models.ContourCurve) map[string]models.ContourCurve {
	out := make(map[string]models.ContourCurve, len(in))
	for k, c := range in {
		out[k] = cloneCurve(c)
	}
	return out
}

func cloneConfig(cfg models.RNGConfig) models.RNGConfig {
	cfg.SelectedIndices = append([]int{}, cfg.SelectedIndices...)
	cfg.Octave.SingleOctaves = append([]int{}, cfg.Octave.SingleOctaves...)
	cfg.Octave.ChordOctaves = append([]int{}, cfg.Octave.ChordOctaves...)
	if cfg.ToneShape.Curve != nil {
		curve := cloneCurve(*cfg.ToneShape.Curve)
		cfg.ToneShape.Curve = &curve
	}
	cfg.ContourOverrides = models.ContourOverrides{
		Single:       cloneCurves(cfg.ContourOverrides.Single),
		ChordGroup:   cloneCurves(cfg.ContourOverrides.ChordGroup),
		ChordPerNote: cloneCurves(cfg.ContourOverrides.ChordPerNote),
		ComboGroup:   cloneCurves(cfg.ContourOverrides.ComboGroup),
		ComboPerNote: cloneCurves(cfg.ContourOverrides.ComboPerNote),
	}
	cfg.Probability.Weights = append([]float64(nil), cfg.Probability.Weights...)
	cfg.ModelFilter.SelectedModelIDs = append([]string{}, cfg.ModelFilter.SelectedModelIDs...)
	cfg.ModelAssignment.ByIndex = append([]string(nil), cfg.ModelAssignment.ByIndex...)
	return cfg
}
