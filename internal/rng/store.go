package rng

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Conceptual-Machines/stimulus-api/internal/models"
	"github.com/Conceptual-Machines/stimulus-api/internal/music"
	"github.com/google/uuid"
)

var (
	ErrNoActiveTemplate = errors.New("no active template")
	ErrTemplateNotFound = errors.New("template not found")
	ErrBuiltInTemplate  = errors.New("built-in templates are immutable")
	ErrInvalidTemplate  = errors.New("invalid template")
	ErrChordNotFound    = errors.New("chord not found")
	ErrInvalidChord     = errors.New("invalid chord")
	ErrComboNotFound    = errors.New("combination not found")
)

// Store owns the RNG configuration, templates and every derived collection.
//
// It is the only writer of items, combos, chords and octave policies.
// Readers receive deep copies and may keep them.
type Store struct {
	mu    sync.RWMutex
	state Snapshot
	a4Hz  float64 // reference pitch of the last ResolveItems
}

// NewStore creates a store holding the built-in templates and default config
func NewStore() *Store {
	return &Store{state: newSnapshot(), a4Hz: music.DefaultA4Hz}
}

// NewStoreFromSnapshot creates a store restored from a persisted snapshot
func NewStoreFromSnapshot(snap Snapshot) *Store {
	s := NewStore()
	s.Restore(snap)
	return s
}

// Snapshot returns a deep copy of the whole state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Restore replaces the whole state. Built-in templates are always present afterwards.
func (s *Store) Restore(snap Snapshot) {
	next := snap.clone()
	next.normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next
}

// A4Hz returns the reference pitch used for voicing
func (s *Store) A4Hz() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.a4Hz
}

// Config returns a copy of the current configuration
func (s *Store) Config() models.RNGConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneConfig(s.state.Config)
}

// Items returns a copy of the resolved items
func (s *Store) Items() []models.RNGItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.RNGItem{}, s.state.Items...)
}

// Combos returns a copy of the resolved (octave-bound) combinations
func (s *Store) Combos() []models.RNGCombination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCombos(s.state.Combos)
}

// CombosBase returns a copy of the octave-agnostic combinations
func (s *Store) CombosBase() []models.RNGCombination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCombos(s.state.CombosBase)
}

// SetConfig replaces the configuration. A template change clears the
// selection and drops derived collections, as SetTemplate does.
func (s *Store) SetConfig(cfg models.RNGConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg = cloneConfig(cfg)
	cfg.SelectedIndices = normalizeIndices(cfg.SelectedIndices)
	if cfg.TemplateID != s.state.Config.TemplateID {
		cfg.SelectedIndices = []int{}
		s.clearDerivedLocked()
	}
	cfg.Octave = normalizeOctaveSpec(cfg.Octave)
	cfg.Polyphony = normalizePolyphony(cfg.Polyphony)
	s.state.Config = cfg
	s.state.normalize()
}

// SetSelectedIndices replaces the selection; indices are deduplicated and
// kept in template order
func (s *Store) SetSelectedIndices(indices []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Config.SelectedIndices = normalizeIndices(indices)
}

// SetOctaveSpec replaces the global octave sets
func (s *Store) SetOctaveSpec(spec models.OctaveSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Config.Octave = normalizeOctaveSpec(spec)
}

// SetPolyphony replaces the polyphony settings; k is clamped to [1, 12]
func (s *Store) SetPolyphony(spec models.PolyphonySpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Config.Polyphony = normalizePolyphony(spec)
}

// SetModelFilter replaces the selected sound models (empty = all)
func (s *Store) SetModelFilter(selectedModelIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Config.ModelFilter = models.ModelFilter{
		SelectedModelIDs: append([]string{}, selectedModelIDs...),
	}
}

// SetModelAssignment replaces the voice-to-model policy
func (s *Store) SetModelAssignment(spec models.ModelAssignmentSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec.ByIndex = append([]string(nil), spec.ByIndex...)
	s.state.Config.ModelAssignment = spec
}

func (s *Store) clearDerivedLocked() {
	s.state.Items = []models.RNGItem{}
	s.state.Combos = []models.RNGCombination{}
	s.state.CombosBase = []models.RNGCombination{}
}

func (s *Store) activeTemplateLocked() (models.ScaleTemplate, error) {
	id := s.state.Config.TemplateID
	if id == "" {
		return models.ScaleTemplate{}, ErrNoActiveTemplate
	}
	tpl, ok := s.state.Templates[id]
	if !ok {
		return models.ScaleTemplate{}, fmt.Errorf("%w: %s", ErrNoActiveTemplate, id)
	}
	return tpl, nil
}

// globalChordOctavesLocked returns the sorted chord octaves, [4] when unset
func (s *Store) globalChordOctavesLocked() []int {
	octaves := append([]int{}, s.state.Config.Octave.ChordOctaves...)
	if len(octaves) == 0 {
		return []int{DefaultOctave}
	}
	sort.Ints(octaves)
	return octaves
}

func normalizeIndices(indices []int) []int {
	seen := make(map[int]bool, len(indices))
	out := make([]int, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func normalizeOctaves(octaves []int) []int {
	seen := make(map[int]bool, len(octaves))
	out := make([]int, 0, len(octaves))
	for _, o := range octaves {
		if o < MinOctave || o > MaxOctave || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	sort.Ints(out)
	return out
}

func normalizeOctaveSpec(spec models.OctaveSpec) models.OctaveSpec {
	return models.OctaveSpec{
		SingleOctaves:         normalizeOctaves(spec.SingleOctaves),
		ChordOctaves:          normalizeOctaves(spec.ChordOctaves),
		SameForSingleAndChord: spec.SameForSingleAndChord,
	}
}

func normalizePolyphony(spec models.PolyphonySpec) models.PolyphonySpec {
	if spec.K < MinPolyphony {
		spec.K = MinPolyphony
	}
	if spec.K > MaxPolyphony {
		spec.K = MaxPolyphony
	}
	switch spec.Source {
	case models.SourceCombinations, models.SourceChords, models.SourceBoth:
	default:
		spec.Source = models.SourceCombinations
	}
	return spec
}

func newID(prefix string) string {
	return prefix + "-" + uuid.New().String()
}
