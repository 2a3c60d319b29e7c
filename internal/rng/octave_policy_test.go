package rng

import (
	"testing"

	"github.com/Conceptual-Machines/stimulus-api/internal/models"
	"github.com/Conceptual-Machines/stimulus-api/internal/music"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hz(t *testing.T, pc string, octave int) float64 {
	t.Helper()
	f, err := music.NoteToHz(pc, octave, 440)
	require.NoError(t, err)
	return f
}

func pcs(names ...string) []VoiceMember {
	out := make([]VoiceMember, len(names))
	for i, n := range names {
		out[i] = VoiceMember{PitchClass: n}
	}
	return out
}

func TestFirstOctave(t *testing.T) {
	assert.Equal(t, 3, FirstOctave([]int{5, 3, 7}, []int{1}))
	assert.Equal(t, 2, FirstOctave(nil, []int{6, 2}))
	assert.Equal(t, 4, FirstOctave(nil, nil))
	assert.Equal(t, 4, FirstOctave([]int{}, []int{}))
}

func TestClampOctave(t *testing.T) {
	assert.Equal(t, 1, ClampOctave(-3))
	assert.Equal(t, 1, ClampOctave(0))
	assert.Equal(t, 5, ClampOctave(5))
	assert.Equal(t, 10, ClampOctave(14))
}

func TestResolveVoicing_Global(t *testing.T) {
	freqs, err := ResolveVoicing(pcs("C", "E"), models.OctavePolicy{Mode: models.PolicyGlobal}, []int{5, 4})
	require.NoError(t, err)
	require.Len(t, freqs, 2)
	assert.InDelta(t, 261.625565, freqs[0], 1e-3)
	assert.InDelta(t, 329.627557, freqs[1], 1e-3)
}

func TestResolveVoicing_EmptyModeIsGlobal(t *testing.T) {
	freqs, err := ResolveVoicing(pcs("A"), models.OctavePolicy{}, []int{3})
	require.NoError(t, err)
	assert.Equal(t, []float64{220}, freqs)
}

func TestResolveVoicing_GlobalFallsBackToOctaveFour(t *testing.T) {
	freqs, err := ResolveVoicing(pcs("A"), models.OctavePolicy{Mode: models.PolicyGlobal}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{440}, freqs)
}

func TestResolveVoicing_Uniform(t *testing.T) {
	policy := models.OctavePolicy{Mode: models.PolicyUniform, Octaves: []int{6, 2}}
	freqs, err := ResolveVoicing(pcs("C", "G"), policy, []int{4})
	require.NoError(t, err)
	assert.Equal(t, []float64{hz(t, "C", 2), hz(t, "G", 2)}, freqs)

	// Empty octave set falls back to the global set
	policy = models.OctavePolicy{Mode: models.PolicyUniform}
	freqs, err = ResolveVoicing(pcs("C"), policy, []int{5})
	require.NoError(t, err)
	assert.Equal(t, []float64{hz(t, "C", 5)}, freqs)
}

func TestResolveVoicing_Independent(t *testing.T) {
	policy := models.OctavePolicy{
		Mode: models.PolicyIndependent,
		Allowed: map[int][]int{
			1: {3, 5},
			3: {6},
		},
	}
	freqs, err := ResolveVoicing(pcs("C", "E", "G"), policy, []int{4})
	require.NoError(t, err)
	assert.Equal(t, []float64{hz(t, "C", 3), hz(t, "E", 4), hz(t, "G", 6)}, freqs)
}

func TestResolveVoicing_Relative(t *testing.T) {
	policy := models.OctavePolicy{
		Mode:        models.PolicyRelative,
		RootIndex:   1,
		RootOctaves: []int{4},
		Offsets:     []int{0, 1, -1},
	}
	freqs, err := ResolveVoicing(pcs("C", "E", "G"), policy, []int{2})
	require.NoError(t, err)
	assert.Equal(t, []float64{hz(t, "C", 4), hz(t, "E", 5), hz(t, "G", 3)}, freqs)
}

func TestResolveVoicing_RelativeIgnoresRootOffset(t *testing.T) {
	for _, rootOffset := range []int{0, 2, -3, 9} {
		policy := models.OctavePolicy{
			Mode:        models.PolicyRelative,
			RootIndex:   2,
			RootOctaves: []int{5, 3},
			Offsets:     []int{1, rootOffset, -1},
		}
		freqs, err := ResolveVoicing(pcs("C", "E", "G"), policy, []int{4})
		require.NoError(t, err)
		require.Len(t, freqs, 3)
		assert.Equal(t, hz(t, "E", 3), freqs[1], "root offset %d must be ignored", rootOffset)
		assert.Equal(t, hz(t, "C", 4), freqs[0])
		assert.Equal(t, hz(t, "G", 2), freqs[2])
	}
}

func TestResolveVoicing_RelativeClamps(t *testing.T) {
	policy := models.OctavePolicy{
		Mode:        models.PolicyRelative,
		RootIndex:   1,
		RootOctaves: []int{9},
		Offsets:     []int{0, 4, -12},
	}
	freqs, err := ResolveVoicing(pcs("C", "D", "E"), policy, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{hz(t, "C", 9), hz(t, "D", 10), hz(t, "E", 1)}, freqs)
}

func TestResolveVoicing_RelativeRootOutOfRange(t *testing.T) {
	policy := models.OctavePolicy{
		Mode:        models.PolicyRelative,
		RootIndex:   7,
		RootOctaves: []int{4},
		Offsets:     []int{3, 1},
	}
	freqs, err := ResolveVoicing(pcs("C", "E"), policy, nil)
	require.NoError(t, err)
	// Position 1 becomes the root, so its offset is ignored
	assert.Equal(t, []float64{hz(t, "C", 4), hz(t, "E", 5)}, freqs)
}

func TestResolveVoicing_FixedMembersPassThrough(t *testing.T) {
	members := []VoiceMember{
		{FixedHz: 100},
		{PitchClass: "A"},
		{FixedHz: 0},
		{FixedHz: -5},
	}
	for _, policy := range []models.OctavePolicy{
		{Mode: models.PolicyGlobal},
		{Mode: models.PolicyUniform, Octaves: []int{5}},
		{Mode: models.PolicyIndependent, Allowed: map[int][]int{2: {3}}},
		{Mode: models.PolicyRelative, RootIndex: 2, RootOctaves: []int{2}},
	} {
		freqs, err := ResolveVoicing(members, policy, []int{4})
		require.NoError(t, err)
		require.Len(t, freqs, 2, "mode %s", policy.Mode)
		assert.Equal(t, 100.0, freqs[0])
	}
}

func TestResolveVoicing_UnknownPitchClass(t *testing.T) {
	_, err := ResolveVoicing(pcs("C", "H"), models.OctavePolicy{Mode: models.PolicyGlobal}, nil)
	assert.ErrorIs(t, err, music.ErrUnknownPitchClass)
}

func TestResolveVoicing_DropsOutOfRangePolicyOctaves(t *testing.T) {
	tests := []struct {
		name   string
		policy models.OctavePolicy
		want   []float64
	}{
		{
			name:   "uniform below range falls back to global",
			policy: models.OctavePolicy{Mode: models.PolicyUniform, Octaves: []int{0}},
			want:   []float64{hz(t, "C", 4), hz(t, "E", 4)},
		},
		{
			name:   "uniform keeps in-range entries",
			policy: models.OctavePolicy{Mode: models.PolicyUniform, Octaves: []int{-1, 11, 6}},
			want:   []float64{hz(t, "C", 6), hz(t, "E", 6)},
		},
		{
			name: "independent per position",
			policy: models.OctavePolicy{
				Mode:    models.PolicyIndependent,
				Allowed: map[int][]int{1: {-3}, 2: {40, 2}},
			},
			want: []float64{hz(t, "C", 4), hz(t, "E", 2)},
		},
		{
			name:   "relative root falls back to global",
			policy: models.OctavePolicy{Mode: models.PolicyRelative, RootIndex: 1, RootOctaves: []int{0}, Offsets: []int{0, 1}},
			want:   []float64{hz(t, "C", 4), hz(t, "E", 5)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			freqs, err := ResolveVoicing(pcs("C", "E"), tt.policy, []int{4})
			require.NoError(t, err)
			assert.Equal(t, tt.want, freqs)
		})
	}
}

func TestNormalizePolicy(t *testing.T) {
	p := NormalizePolicy(models.OctavePolicy{
		Mode:    models.PolicyIndependent,
		Octaves: []int{3},
		Allowed: map[int][]int{0: {4}, 1: {12}, 2: {5, 5, 3}},
	})
	assert.Nil(t, p.Octaves)
	assert.Equal(t, map[int][]int{2: {3, 5}}, p.Allowed)

	p = NormalizePolicy(models.OctavePolicy{Mode: models.PolicyRelative, RootOctaves: []int{0, 10, 7}, Offsets: []int{-20}})
	assert.Equal(t, []int{7, 10}, p.RootOctaves)
	assert.Equal(t, []int{-20}, p.Offsets)
}
