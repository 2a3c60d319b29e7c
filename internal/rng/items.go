package rng

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/stimulus-api/internal/models"
	"github.com/Conceptual-Machines/stimulus-api/internal/music"
)

// Token prefixes of octave-agnostic combination members
const (
	pitchIndexToken = "pi-"
	freqIndexToken  = "pf-"
	baseComboPrefix = "base-"
	comboIDSep      = "__"
	comboLabelSep   = " + "
)

// ResolveItems replaces the items with the octave-bound pitches of the
// current selection. Letter templates emit one item per selected index and
// effective octave; frequency templates emit one item per selected index.
// On error the previous items are kept.
func (s *Store) ResolveItems(a4Hz float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveItemsLocked(a4Hz)
}

func (s *Store) resolveItemsLocked(a4Hz float64) error {
	if a4Hz <= 0 {
		a4Hz = music.DefaultA4Hz
	}
	tpl, err := s.activeTemplateLocked()
	if err != nil {
		return err
	}

	cfg := s.state.Config
	items := make([]models.RNGItem, 0)

	switch tpl.Type {
	case models.TemplateLetter:
		octaves := effectiveOctaves(cfg)
		for _, idx := range cfg.SelectedIndices {
			if idx < 0 || idx >= len(tpl.Letters) {
				continue
			}
			pc := tpl.Letters[idx]
			for _, octave := range octaves {
				if octave < MinOctave || octave > MaxOctave {
					continue
				}
				hz, err := music.NoteToHz(pc, octave, a4Hz)
				if err != nil {
					return fmt.Errorf("template %s index %d: %w", tpl.ID, idx, err)
				}
				items = append(items, models.RNGItem{
					ID:     pitchItemID(idx, octave),
					Label:  fmt.Sprintf("%s%d", pc, octave),
					FreqHz: hz,
				})
			}
		}
	case models.TemplateFrequency:
		for _, idx := range cfg.SelectedIndices {
			if idx < 0 || idx >= len(tpl.FreqsHz) {
				continue
			}
			hz := tpl.FreqsHz[idx]
			items = append(items, models.RNGItem{
				ID:     freqItemID(hz),
				Label:  freqLabel(hz),
				FreqHz: hz,
			})
		}
	}

	s.state.Items = items
	s.a4Hz = a4Hz
	return nil
}

// BuildCombos replaces the resolved combinations: k-subsets of the current
// items, octaves already bound. Empty unless polyphony is enabled.
func (s *Store) BuildCombos() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildCombosLocked()
}

func (s *Store) buildCombosLocked() {
	poly := s.state.Config.Polyphony
	if !poly.Enabled {
		s.state.Combos = []models.RNGCombination{}
		return
	}

	items := s.state.Items
	lex := music.CombinationsLex(len(items), poly.K)
	combos := make([]models.RNGCombination, 0, len(lex))
	for _, ix := range lex {
		if len(ix) == 0 {
			continue
		}
		ids := make([]string, len(ix))
		labels := make([]string, len(ix))
		for j, i := range ix {
			ids[j] = items[i].ID
			labels[j] = items[i].Label
		}
		combos = append(combos, models.RNGCombination{
			ID:      strings.Join(ids, comboIDSep),
			ItemIDs: ids,
			Labels:  strings.Join(labels, comboLabelSep),
		})
	}
	s.state.Combos = combos
}

// BuildCombosBase replaces the octave-agnostic combinations of the selection.
// Octaves are bound later, per combination, by its octave policy.
func (s *Store) BuildCombosBase() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildCombosBaseLocked()
}

func (s *Store) buildCombosBaseLocked() {
	s.state.CombosBase = []models.RNGCombination{}

	cfg := s.state.Config
	if !cfg.Polyphony.Enabled {
		return
	}
	tpl, err := s.activeTemplateLocked()
	if err != nil {
		return
	}

	var tokens, labels []string
	for _, idx := range cfg.SelectedIndices {
		if idx < 0 || idx >= tpl.Size() {
			continue
		}
		if tpl.Type == models.TemplateLetter {
			tokens = append(tokens, fmt.Sprintf("%s%d", pitchIndexToken, idx))
			labels = append(labels, tpl.Letters[idx])
		} else {
			tokens = append(tokens, fmt.Sprintf("%s%d", freqIndexToken, idx))
			labels = append(labels, freqLabel(tpl.FreqsHz[idx]))
		}
	}

	k := cfg.Polyphony.K
	if k < 1 || k > len(tokens) {
		return
	}

	lex := music.CombinationsLex(len(tokens), k)
	combos := make([]models.RNGCombination, 0, len(lex))
	for _, ix := range lex {
		ids := make([]string, len(ix))
		names := make([]string, len(ix))
		for j, i := range ix {
			ids[j] = tokens[i]
			names[j] = labels[i]
		}
		combos = append(combos, models.RNGCombination{
			ID:      baseComboPrefix + strings.Join(ids, comboIDSep),
			ItemIDs: ids,
			Labels:  strings.Join(names, comboLabelSep),
		})
	}
	s.state.CombosBase = combos
}

// effectiveOctaves picks the octave set used for single items
func effectiveOctaves(cfg models.RNGConfig) []int {
	if cfg.Octave.SameForSingleAndChord || !cfg.Polyphony.Enabled {
		return cfg.Octave.SingleOctaves
	}
	return cfg.Octave.ChordOctaves
}

func pitchItemID(idx, octave int) string {
	return fmt.Sprintf("pc-%d-o%d", idx, octave)
}

func freqItemID(hz float64) string {
	return fmt.Sprintf("f-%.5f", hz)
}

func freqLabel(hz float64) string {
	return fmt.Sprintf("%.2f Hz", hz)
}
