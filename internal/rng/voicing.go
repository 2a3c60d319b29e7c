package rng

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/stimulus-api/internal/logger"
	"github.com/Conceptual-Machines/stimulus-api/internal/models"
)

var (
	pitchTokenPattern   = regexp.MustCompile(`^pi-(\d+)$`)
	freqTokenPattern    = regexp.MustCompile(`^pf-(\d+)$`)
	pitchItemRefPattern = regexp.MustCompile(`^pc-(\d+)-o(\d+)$`)
)

const freqItemRefPrefix = "f-"

// SetComboOctavePolicy stores the octave policy of a base combination
func (s *Store) SetComboOctavePolicy(comboBaseID string, policy models.OctavePolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ComboOctavePolicies[comboBaseID] = NormalizePolicy(policy)
}

// SetChordOctavePolicy stores the octave policy of a chord
func (s *Store) SetChordOctavePolicy(chordID string, policy models.OctavePolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ChordOctavePolicies[chordID] = NormalizePolicy(policy)
}

// ComboOctavePolicy returns the policy of a base combination, global when unset
func (s *Store) ComboOctavePolicy(comboBaseID string) models.OctavePolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return policyOrGlobal(s.state.ComboOctavePolicies, comboBaseID)
}

// ChordOctavePolicy returns the policy of a chord, global when unset
func (s *Store) ChordOctavePolicy(chordID string) models.OctavePolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return policyOrGlobal(s.state.ChordOctavePolicies, chordID)
}

// ResolveComboVoicing returns the frequencies of a base combination under its
// octave policy. seed is reserved for randomized voicing and currently unused.
func (s *Store) ResolveComboVoicing(comboBaseID string, seed int64) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl, err := s.activeTemplateLocked()
	if err != nil {
		return nil, err
	}
	combo, ok := findCombo(s.state.CombosBase, comboBaseID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrComboNotFound, comboBaseID)
	}

	members := make([]VoiceMember, 0, len(combo.ItemIDs))
	for _, token := range combo.ItemIDs {
		if m, ok := comboTokenMember(tpl, token); ok {
			members = append(members, m)
		}
	}

	policy := policyOrGlobal(s.state.ComboOctavePolicies, comboBaseID)
	return ResolveVoicingAt(members, policy, s.globalChordOctavesLocked(), s.a4Hz)
}

// ResolveChordVoicing returns the frequencies of a chord under its octave
// policy. seed is reserved for randomized voicing and currently unused.
//
// Members that no longer resolve (stale item references after a template
// swap, non-positive frequencies) are dropped and the rest still sound.
func (s *Store) ResolveChordVoicing(chordID string, seed int64) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl, err := s.activeTemplateLocked()
	if err != nil {
		return nil, err
	}
	chord, ok := findChord(s.state.Chords, chordID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChordNotFound, chordID)
	}

	members := make([]VoiceMember, len(chord.Members))
	for i, cm := range chord.Members {
		m, ok := s.chordMemberLocked(tpl, cm)
		if !ok {
			logger.Debug("Dropping unresolvable chord member", logger.Fields{
				"chord_id":    chordID,
				"position":    i + 1,
				"item_ref_id": cm.ItemRefID,
				"template_id": tpl.ID,
			})
		}
		// Unresolved members stay in place with 0 Hz so positions keep
		// lining up with the policy; ResolveVoicingAt drops them.
		members[i] = m
	}

	policy := policyOrGlobal(s.state.ChordOctavePolicies, chordID)
	return ResolveVoicingAt(members, policy, s.globalChordOctavesLocked(), s.a4Hz)
}

func comboTokenMember(tpl models.ScaleTemplate, token string) (VoiceMember, bool) {
	switch tpl.Type {
	case models.TemplateLetter:
		if m := pitchTokenPattern.FindStringSubmatch(token); m != nil {
			idx, _ := strconv.Atoi(m[1])
			if idx < len(tpl.Letters) && tpl.Letters[idx] != "" {
				return VoiceMember{PitchClass: tpl.Letters[idx]}, true
			}
		}
	case models.TemplateFrequency:
		if m := freqTokenPattern.FindStringSubmatch(token); m != nil {
			idx, _ := strconv.Atoi(m[1])
			if idx < len(tpl.FreqsHz) {
				return VoiceMember{FixedHz: tpl.FreqsHz[idx]}, true
			}
		}
	}
	return VoiceMember{}, false
}

// chordMemberLocked maps a stored chord member to a voice member.
// The octave of a "pc-<idx>-o<oct>" reference is ignored; the policy decides.
func (s *Store) chordMemberLocked(tpl models.ScaleTemplate, cm models.RNGChordMember) (VoiceMember, bool) {
	if cm.FreqHz > 0 {
		return VoiceMember{FixedHz: cm.FreqHz}, true
	}
	ref := cm.ItemRefID
	switch {
	case ref == "":
	case tpl.Type == models.TemplateLetter && pitchItemRefPattern.MatchString(ref):
		m := pitchItemRefPattern.FindStringSubmatch(ref)
		idx, _ := strconv.Atoi(m[1])
		if idx < len(tpl.Letters) && tpl.Letters[idx] != "" {
			return VoiceMember{PitchClass: tpl.Letters[idx]}, true
		}
	case strings.HasPrefix(ref, freqItemRefPrefix):
		for _, item := range s.state.Items {
			if item.ID == ref {
				return VoiceMember{FixedHz: item.FreqHz}, true
			}
		}
		if hz, err := strconv.ParseFloat(strings.TrimPrefix(ref, freqItemRefPrefix), 64); err == nil && validHz(hz) {
			return VoiceMember{FixedHz: hz}, true
		}
	}
	return VoiceMember{}, false
}

func policyOrGlobal(policies map[string]models.OctavePolicy, id string) models.OctavePolicy {
	if p, ok := policies[id]; ok {
		return NormalizePolicy(p)
	}
	return models.OctavePolicy{Mode: models.PolicyGlobal}
}

func findCombo(combos []models.RNGCombination, id string) (models.RNGCombination, bool) {
	for _, c := range combos {
		if c.ID == id {
			return c, true
		}
	}
	return models.RNGCombination{}, false
}

func findChord(chords []models.RNGChord, id string) (models.RNGChord, bool) {
	for _, ch := range chords {
		if ch.ID == id {
			return ch, true
		}
	}
	return models.RNGChord{}, false
}
