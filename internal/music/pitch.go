package music

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// DefaultA4Hz is the concert pitch reference used when callers pass zero
const DefaultA4Hz = 440.0

// MIDI reference note for A4
const midiA4 = 69

// ErrUnknownPitchClass is returned when a name cannot be mapped to one of the 12 pitch classes
var ErrUnknownPitchClass = errors.New("unknown pitch class")

// PitchClassNames lists the canonical sharp-based spelling, C first
var PitchClassNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var pitchClassSemitones = map[string]int{
	"C": 0, "C#": 1, "D": 2, "D#": 3, "E": 4, "F": 5,
	"F#": 6, "G": 7, "G#": 8, "A": 9, "A#": 10, "B": 11,
}

// Flat spellings after uppercasing ("Db" -> "DB")
var flatAliases = map[string]string{
	"DB": "C#", "EB": "D#", "GB": "F#", "AB": "G#", "BB": "A#",
}

// CanonicalPitchClass normalizes a pitch-class spelling.
// "db", "D♭" and "C♯" all become "C#". The result is not validated;
// use Semitone for that.
func CanonicalPitchClass(name string) string {
	s := strings.ToUpper(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "♯", "#")
	s = strings.ReplaceAll(s, "♭", "B")
	if alias, ok := flatAliases[s]; ok {
		return alias
	}
	return s
}

// Semitone returns the distance from C (0..11) of a pitch class
func Semitone(pitchClass string) (int, error) {
	semitone, ok := pitchClassSemitones[CanonicalPitchClass(pitchClass)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPitchClass, pitchClass)
	}
	return semitone, nil
}

// IsPitchClass reports whether name canonicalizes to a known pitch class
func IsPitchClass(name string) bool {
	_, err := Semitone(name)
	return err == nil
}

// MIDINumber converts a pitch class and octave to a MIDI note number.
// Formula: (octave + 1) * 12 + semitone, so C-1 = 0 and C4 = 60.
func MIDINumber(pitchClass string, octave int) (int, error) {
	semitone, err := Semitone(pitchClass)
	if err != nil {
		return 0, err
	}
	return (octave+1)*12 + semitone, nil
}

// MIDIToHz converts a MIDI note number to Hz in 12-TET
func MIDIToHz(midi int, a4Hz float64) float64 {
	if a4Hz <= 0 {
		a4Hz = DefaultA4Hz
	}
	return a4Hz * math.Pow(2, float64(midi-midiA4)/12)
}

// NoteToHz resolves a pitch class in a given octave to a frequency.
// A non-positive a4Hz falls back to DefaultA4Hz.
func NoteToHz(pitchClass string, octave int, a4Hz float64) (float64, error) {
	midi, err := MIDINumber(pitchClass, octave)
	if err != nil {
		return 0, err
	}
	return MIDIToHz(midi, a4Hz), nil
}
