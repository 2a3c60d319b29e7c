package rng

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/stimulus-api/internal/models"
)

const defaultChordName = "Chord"

// Member bounds of a chord
const (
	MinChordMembers = 2
	MaxChordMembers = MaxPolyphony
)

// ChordPatch updates a chord; nil fields are left unchanged
type ChordPatch struct {
	Name    *string                 `json:"name,omitempty"`
	Members []models.RNGChordMember `json:"members,omitempty"`
}

// Chords returns a copy of the user-defined chords in creation order
func (s *Store) Chords() []models.RNGChord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.RNGChord, len(s.state.Chords))
	for i, ch := range s.state.Chords {
		out[i] = cloneChord(ch)
	}
	return out
}

// Chord returns a single chord by id
func (s *Store) Chord(id string) (models.RNGChord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch, ok := findChord(s.state.Chords, id)
	if !ok {
		return models.RNGChord{}, fmt.Errorf("%w: %s", ErrChordNotFound, id)
	}
	return cloneChord(ch), nil
}

// AddChord appends a chord with a fresh id and returns that id.
// Member order is kept.
func (s *Store) AddChord(name string, members []models.RNGChordMember) (string, error) {
	if err := validateChordMembers(members); err != nil {
		return "", err
	}
	chord := models.RNGChord{
		ID:      newID("chord"),
		Name:    nameOr(name, defaultChordName),
		Members: append([]models.RNGChordMember{}, members...),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Chords = append(s.state.Chords, chord)
	return chord.ID, nil
}

// UpdateChord renames a chord and/or replaces its members
func (s *Store) UpdateChord(id string, patch ChordPatch) error {
	if patch.Members != nil {
		if err := validateChordMembers(patch.Members); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, ch := range s.state.Chords {
		if ch.ID != id {
			continue
		}
		if patch.Name != nil {
			ch.Name = nameOr(*patch.Name, ch.Name)
		}
		if patch.Members != nil {
			ch.Members = append([]models.RNGChordMember{}, patch.Members...)
		}
		s.state.Chords[i] = ch
		return nil
	}
	return fmt.Errorf("%w: %s", ErrChordNotFound, id)
}

// RemoveChord deletes a chord together with its octave policy and contour overrides
func (s *Store) RemoveChord(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]models.RNGChord, 0, len(s.state.Chords))
	found := false
	for _, ch := range s.state.Chords {
		if ch.ID == id {
			found = true
			continue
		}
		kept = append(kept, ch)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrChordNotFound, id)
	}

	s.state.Chords = kept
	delete(s.state.ChordOctavePolicies, id)

	overrides := &s.state.Config.ContourOverrides
	delete(overrides.ChordGroup, id)
	prefix := id + contourKeySep
	for key := range overrides.ChordPerNote {
		if strings.HasPrefix(key, prefix) {
			delete(overrides.ChordPerNote, key)
		}
	}
	return nil
}

func validateChordMembers(members []models.RNGChordMember) error {
	if len(members) < MinChordMembers || len(members) > MaxChordMembers {
		return fmt.Errorf("%w: need %d to %d members, got %d",
			ErrInvalidChord, MinChordMembers, MaxChordMembers, len(members))
	}
	return nil
}
