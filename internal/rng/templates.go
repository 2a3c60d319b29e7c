package rng

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Conceptual-Machines/stimulus-api/internal/models"
	"github.com/Conceptual-Machines/stimulus-api/internal/music"
)

const (
	defaultLetterTemplateName    = "Letter Template"
	defaultFrequencyTemplateName = "Frequency Template"
)

// Templates returns all templates, built-ins first, then by name
func (s *Store) Templates() []models.ScaleTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ScaleTemplate, 0, len(s.state.Templates))
	for _, tpl := range s.state.Templates {
		out = append(out, cloneTemplate(tpl))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BuiltIn != out[j].BuiltIn {
			return out[i].BuiltIn
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Template returns a single template by id
func (s *Store) Template(id string) (models.ScaleTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl, ok := s.state.Templates[id]
	if !ok {
		return models.ScaleTemplate{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return cloneTemplate(tpl), nil
}

// AddLetterTemplate stores a user pitch-class template and returns its id.
// Letters are canonicalized; an unknown spelling rejects the whole template.
func (s *Store) AddLetterTemplate(name string, letters []string) (string, error) {
	if len(letters) == 0 {
		return "", fmt.Errorf("%w: letter template needs at least one pitch class", ErrInvalidTemplate)
	}
	canonical := make([]string, len(letters))
	for i, letter := range letters {
		if _, err := music.Semitone(letter); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
		}
		canonical[i] = music.CanonicalPitchClass(letter)
	}

	id := newID("tpl-letter")
	tpl := models.ScaleTemplate{
		ID:      id,
		Name:    nameOr(name, defaultLetterTemplateName),
		Type:    models.TemplateLetter,
		Letters: canonical,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Templates[id] = tpl
	return id, nil
}

// AddFrequencyTemplate stores a user absolute-frequency template and returns its id
func (s *Store) AddFrequencyTemplate(name string, freqsHz []float64) (string, error) {
	if len(freqsHz) == 0 {
		return "", fmt.Errorf("%w: frequency template needs at least one frequency", ErrInvalidTemplate)
	}
	for _, hz := range freqsHz {
		if !validHz(hz) {
			return "", fmt.Errorf("%w: frequency %v is not a positive finite number", ErrInvalidTemplate, hz)
		}
	}

	id := newID("tpl-freq")
	tpl := models.ScaleTemplate{
		ID:      id,
		Name:    nameOr(name, defaultFrequencyTemplateName),
		Type:    models.TemplateFrequency,
		FreqsHz: append([]float64(nil), freqsHz...),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Templates[id] = tpl
	return id, nil
}

// RenameTemplate renames a user template; a blank name keeps the old one
func (s *Store) RenameTemplate(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tpl, ok := s.state.Templates[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	if tpl.BuiltIn {
		return fmt.Errorf("%w: %s", ErrBuiltInTemplate, id)
	}
	tpl.Name = nameOr(name, tpl.Name)
	s.state.Templates[id] = tpl
	return nil
}

// RemoveTemplate deletes a user template.
// Removing the active template falls back to the western letter template
// and clears the selection and all derived collections.
func (s *Store) RemoveTemplate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tpl, ok := s.state.Templates[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	if tpl.BuiltIn {
		return fmt.Errorf("%w: %s", ErrBuiltInTemplate, id)
	}
	delete(s.state.Templates, id)

	if s.state.Config.TemplateID == id {
		s.state.Config.TemplateID = WesternLetterTemplateID
	}
	s.state.Config.SelectedIndices = []int{}
	s.clearDerivedLocked()
	return nil
}

// SetTemplate activates a template (empty id deactivates).
// Selection indices are template-relative, so they are cleared together
// with items and combinations.
func (s *Store) SetTemplate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if _, ok := s.state.Templates[id]; !ok {
			return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
		}
	}
	s.state.Config.TemplateID = id
	s.state.Config.SelectedIndices = []int{}
	s.clearDerivedLocked()
	return nil
}

func nameOr(name, fallback string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return fallback
}

func validHz(hz float64) bool {
	return hz > 0 && !math.IsInf(hz, 0) && !math.IsNaN(hz)
}
