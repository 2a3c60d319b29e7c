package rng

import (
	"strconv"

	"github.com/Conceptual-Machines/stimulus-api/internal/models"
)

const contourKeySep = "::"

// ChordNoteContourKey builds the per-note override key of a chord member
func ChordNoteContourKey(chordID, memberKey string) string {
	return chordID + contourKeySep + memberKey
}

// ComboNoteContourKey builds the per-note override key of a combination note
func ComboNoteContourKey(comboBaseID string, noteIndex int) string {
	return comboBaseID + contourKeySep + strconv.Itoa(noteIndex)
}

// SetSingleContour sets or, with a nil curve, clears the override of an item
func (s *Store) SetSingleContour(itemID string, curve *models.ContourCurve) {
	s.setContour(func(o *models.ContourOverrides) map[string]models.ContourCurve { return o.Single }, itemID, curve)
}

// SetChordGroupContour sets or clears the override of a whole chord
func (s *Store) SetChordGroupContour(chordID string, curve *models.ContourCurve) {
	s.setContour(func(o *models.ContourOverrides) map[string]models.ContourCurve { return o.ChordGroup }, chordID, curve)
}

// SetChordNoteContour sets or clears the override of one chord member
func (s *Store) SetChordNoteContour(chordID, memberKey string, curve *models.ContourCurve) {
	s.setContour(func(o *models.ContourOverrides) map[string]models.ContourCurve { return o.ChordPerNote },
		ChordNoteContourKey(chordID, memberKey), curve)
}

// SetComboGroupContour sets or clears the override of a whole base combination
func (s *Store) SetComboGroupContour(comboBaseID string, curve *models.ContourCurve) {
	s.setContour(func(o *models.ContourOverrides) map[string]models.ContourCurve { return o.ComboGroup }, comboBaseID, curve)
}

// SetComboNoteContour sets or clears the override of one note of a base combination
func (s *Store) SetComboNoteContour(comboBaseID string, noteIndex int, curve *models.ContourCurve) {
	s.setContour(func(o *models.ContourOverrides) map[string]models.ContourCurve { return o.ComboPerNote },
		ComboNoteContourKey(comboBaseID, noteIndex), curve)
}

// ContourOverrides returns a copy of every override map
func (s *Store) ContourOverrides() models.ContourOverrides {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneConfig(s.state.Config).ContourOverrides
}

func (s *Store) setContour(pick func(*models.ContourOverrides) map[string]models.ContourCurve, key string, curve *models.ContourCurve) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := pick(&s.state.Config.ContourOverrides)
	if curve == nil {
		delete(target, key)
		return
	}
	target[key] = cloneCurve(*curve)
}
