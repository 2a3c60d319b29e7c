package rng

import (
	"github.com/Conceptual-Machines/stimulus-api/internal/models"
	"github.com/Conceptual-Machines/stimulus-api/internal/music"
)

// VoiceMember is one note of a combination or chord.
// PitchClass members get an octave from the policy; FixedHz members pass through.
type VoiceMember struct {
	PitchClass string
	FixedHz    float64
}

// IsFixed reports whether the member carries its own frequency
func (m VoiceMember) IsFixed() bool {
	return m.PitchClass == ""
}

// FirstOctave returns the smallest octave of a set.
// An empty set falls back to the smallest of globalAllowed, then to octave 4.
func FirstOctave(octaves, globalAllowed []int) int {
	if len(octaves) > 0 {
		return minInt(octaves)
	}
	if len(globalAllowed) > 0 {
		return minInt(globalAllowed)
	}
	return DefaultOctave
}

// ClampOctave limits an octave to [1, 10]
func ClampOctave(octave int) int {
	if octave < MinOctave {
		return MinOctave
	}
	if octave > MaxOctave {
		return MaxOctave
	}
	return octave
}

// NormalizePolicy keeps only the fields of the policy's mode and drops
// octaves outside [1, 10]. A set left empty falls back to the global set
// when the policy is applied.
func NormalizePolicy(policy models.OctavePolicy) models.OctavePolicy {
	policy = policy.Normalized()
	switch policy.Mode {
	case models.PolicyUniform:
		policy.Octaves = normalizeOctaves(policy.Octaves)
	case models.PolicyRelative:
		policy.RootOctaves = normalizeOctaves(policy.RootOctaves)
	case models.PolicyIndependent:
		for pos, octaves := range policy.Allowed {
			kept := normalizeOctaves(octaves)
			if pos < 1 || len(kept) == 0 {
				delete(policy.Allowed, pos)
				continue
			}
			policy.Allowed[pos] = kept
		}
	}
	return policy
}

// ChooseOctaves returns the octave of every member under a policy.
// Fixed members get 0. The choice is rule application, never sampling.
func ChooseOctaves(members []VoiceMember, policy models.OctavePolicy, globalAllowed []int) []int {
	policy = NormalizePolicy(policy)
	global := normalizeOctaves(globalAllowed)

	octaves := make([]int, len(members))
	switch policy.Mode {
	case models.PolicyUniform:
		o := FirstOctave(policy.Octaves, global)
		for i, m := range members {
			if !m.IsFixed() {
				octaves[i] = o
			}
		}
	case models.PolicyIndependent:
		for i, m := range members {
			if !m.IsFixed() {
				octaves[i] = FirstOctave(policy.Allowed[i+1], global)
			}
		}
	case models.PolicyRelative:
		rootIndex := policy.RootIndex
		if rootIndex < 1 || rootIndex > len(members) {
			rootIndex = 1
		}
		rootOctave := FirstOctave(policy.RootOctaves, global)
		for i, m := range members {
			if m.IsFixed() {
				continue
			}
			offset := 0
			if i+1 != rootIndex && i < len(policy.Offsets) {
				offset = policy.Offsets[i]
			}
			octaves[i] = ClampOctave(rootOctave + offset)
		}
	default:
		o := FirstOctave(nil, global)
		for i, m := range members {
			if !m.IsFixed() {
				octaves[i] = o
			}
		}
	}
	return octaves
}

// ResolveVoicing binds members to frequencies at A4 = 440 Hz.
// See ResolveVoicingAt.
func ResolveVoicing(members []VoiceMember, policy models.OctavePolicy, globalAllowed []int) ([]float64, error) {
	return ResolveVoicingAt(members, policy, globalAllowed, music.DefaultA4Hz)
}

// ResolveVoicingAt binds members to frequencies, one per member, order kept.
// Members that do not resolve to a positive finite frequency are dropped.
// An unknown pitch class is a configuration error and is returned as such.
func ResolveVoicingAt(members []VoiceMember, policy models.OctavePolicy, globalAllowed []int, a4Hz float64) ([]float64, error) {
	octaves := ChooseOctaves(members, policy, globalAllowed)
	freqs := make([]float64, 0, len(members))
	for i, m := range members {
		hz := m.FixedHz
		if !m.IsFixed() {
			var err error
			hz, err = music.NoteToHz(m.PitchClass, octaves[i], a4Hz)
			if err != nil {
				return nil, err
			}
		}
		if validHz(hz) {
			freqs = append(freqs, hz)
		}
	}
	return freqs, nil
}

func minInt(values []int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
