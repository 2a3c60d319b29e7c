package buttons

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Conceptual-Machines/stimulus-api/internal/logger"
	"github.com/Conceptual-Machines/stimulus-api/internal/models"
	"github.com/google/uuid"
)

// GenerateMode decides whether freshly generated buttons replace or extend the board
type GenerateMode string

const (
	ModeReplace GenerateMode = "replace"
	ModeAppend  GenerateMode = "append"
)

const exportVersion = 1

const (
	minButtonSize = 24
	maxButtonSize = 384
)

var (
	ErrButtonNotFound = errors.New("button not found")
	ErrInvalidMode    = errors.New("invalid generate mode")
	ErrInvalidImport  = errors.New("invalid button import")
)

// Board is the ordered set of training buttons.
// While linked, buttons generated from the RNG follow its changes through RefreshLinked.
type Board struct {
	mu      sync.RWMutex
	buttons []models.ButtonDefinition
	mode    GenerateMode
	linked  bool
	now     func() time.Time
}

func NewBoard() *Board {
	return &Board{
		buttons: []models.ButtonDefinition{},
		mode:    ModeReplace,
		linked:  true,
		now:     time.Now,
	}
}

// Buttons returns a deep copy of the board
func (b *Board) Buttons() []models.ButtonDefinition {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneButtons(b.buttons)
}

// Button returns a single button by id
func (b *Board) Button(id string) (models.ButtonDefinition, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, btn := range b.buttons {
		if btn.ID == id {
			return cloneButton(btn), nil
		}
	}
	return models.ButtonDefinition{}, fmt.Errorf("%w: %s", ErrButtonNotFound, id)
}

func (b *Board) Linked() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.linked
}

func (b *Board) Mode() GenerateMode {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mode
}

func (b *Board) SetGenerateMode(mode GenerateMode) error {
	if mode != ModeReplace && mode != ModeAppend {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mode = mode
	return nil
}

// Apply merges freshly generated buttons according to the generate mode
// and turns linking back on. In append mode a fresh button whose id is
// already on the board gets a suffixed id.
func (b *Board) Apply(fresh []models.ButtonDefinition) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := cloneButtons(fresh)
	taken := make(map[string]bool, len(b.buttons)+len(next))
	if b.mode == ModeAppend {
		for _, btn := range b.buttons {
			taken[btn.ID] = true
		}
	}
	renameCollisions(next, taken, func(old string) string {
		return old + "-" + uuid.New().String()[:8]
	})

	if b.mode == ModeAppend {
		next = append(b.buttons, next...)
	}
	b.buttons = next
	b.linked = true
}

// LayoutOptions configures OptimizeLayout; nil fields take the defaults
type LayoutOptions struct {
	StartX  *float64 `json:"startX,omitempty"`
	StartY  *float64 `json:"startY,omitempty"`
	Gap     *float64 `json:"gap,omitempty"`
	MaxCols *int     `json:"maxCols,omitempty"`
}

// OptimizeLayout arranges the buttons on a row-major grid.
// Each cell is sized by its own button, clamped to [24, 384] px.
func (b *Board) OptimizeLayout(opts LayoutOptions) {
	startX := floatOr(opts.StartX, defaultX)
	startY := floatOr(opts.StartY, defaultY)
	gap := floatOr(opts.Gap, 16)
	maxCols := 6
	if opts.MaxCols != nil {
		maxCols = *opts.MaxCols
	}
	if maxCols < 1 {
		maxCols = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	col, row := 0, 0
	for i := range b.buttons {
		btn := &b.buttons[i]
		size := float64(defaultSizePx)
		if btn.Appearance != nil && btn.Appearance.SizePx > 0 {
			size = btn.Appearance.SizePx
		}
		size = math.Max(minButtonSize, math.Min(maxButtonSize, size))

		layout := models.ButtonLayout{}
		if btn.Layout != nil {
			layout = *btn.Layout
		}
		layout.X = startX + float64(col)*(size+gap)
		layout.Y = startY + float64(row)*(size+gap)
		btn.Layout = &layout

		col++
		if col >= maxCols {
			col = 0
			row++
		}
	}
}

// Snapshot freezes the board: every button stops following the RNG
func (b *Board) Snapshot() {
	b.SetLinked(false)
}

// SetLinked sets the board-level flag and the flag of every button
func (b *Board) SetLinked(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.linked = on
	for i := range b.buttons {
		b.buttons[i].LinkedFromRNG = on
	}
}

// ButtonPatch updates a button; nil fields are left unchanged
type ButtonPatch struct {
	Label         *string                  `json:"label,omitempty"`
	LinkedFromRNG *bool                    `json:"linkedFromRng,omitempty"`
	FreqHz        []float64                `json:"freqHz,omitempty"`
	Voices        []models.ButtonVoice     `json:"voices,omitempty"`
	Appearance    *models.ButtonAppearance `json:"appearance,omitempty"`
	Behavior      *models.ButtonBehavior   `json:"behavior,omitempty"`
	Layout        *models.ButtonLayout     `json:"layout,omitempty"`
	Tags          []string                 `json:"tags,omitempty"`
}

func (b *Board) Update(id string, patch ButtonPatch) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.buttons {
		if b.buttons[i].ID != id {
			continue
		}
		btn := &b.buttons[i]
		if patch.Label != nil {
			btn.Label = *patch.Label
		}
		if patch.LinkedFromRNG != nil {
			btn.LinkedFromRNG = *patch.LinkedFromRNG
		}
		if patch.FreqHz != nil {
			btn.FreqHz = append([]float64{}, patch.FreqHz...)
		}
		if patch.Voices != nil {
			btn.Voices = cloneVoices(patch.Voices)
		}
		if patch.Appearance != nil {
			btn.Appearance = cloneAppearance(patch.Appearance)
		}
		if patch.Behavior != nil {
			btn.Behavior = cloneBehavior(patch.Behavior)
		}
		if patch.Layout != nil {
			layout := *patch.Layout
			btn.Layout = &layout
		}
		if patch.Tags != nil {
			btn.Tags = append([]string{}, patch.Tags...)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrButtonNotFound, id)
}

func (b *Board) Remove(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.buttons {
		if b.buttons[i].ID == id {
			b.buttons = append(b.buttons[:i], b.buttons[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrButtonNotFound, id)
}

func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buttons = []models.ButtonDefinition{}
}

// Export is the exchange format of a board
type Export struct {
	Version    int                       `json:"version"`
	ExportedAt time.Time                 `json:"exportedAt"`
	Buttons    []models.ButtonDefinition `json:"buttons"`
}

// ExportJSON serializes the board as indented JSON
func (b *Board) ExportJSON() ([]byte, error) {
	b.mu.RLock()
	data := Export{
		Version:    exportVersion,
		ExportedAt: b.now().UTC(),
		Buttons:    cloneButtons(b.buttons),
	}
	b.mu.RUnlock()

	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON accepts a bare array of buttons or an Export wrapper.
// In append mode ids that collide with existing buttons are renamed to
// b-import-<uuid>; ids repeated inside the payload are renamed in both modes.
// It returns the number of imported buttons.
func (b *Board) ImportJSON(data []byte, mode GenerateMode) (int, error) {
	if mode == "" {
		mode = ModeAppend
	}
	if mode != ModeReplace && mode != ModeAppend {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	incoming, err := decodeImport(data)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	taken := make(map[string]bool, len(b.buttons)+len(incoming))
	if mode == ModeAppend {
		for _, btn := range b.buttons {
			taken[btn.ID] = true
		}
	}
	renameCollisions(incoming, taken, func(string) string {
		return "b-import-" + uuid.New().String()
	})

	if mode == ModeAppend {
		b.buttons = append(b.buttons, incoming...)
	} else {
		b.buttons = incoming
	}
	return len(incoming), nil
}

// renameCollisions gives every button whose id is empty or already taken
// the id returned by rename, then marks it taken
func renameCollisions(btns []models.ButtonDefinition, taken map[string]bool, rename func(old string) string) {
	for i := range btns {
		id := btns[i].ID
		for id == "" || taken[id] {
			id = rename(btns[i].ID)
		}
		if id != btns[i].ID {
			logger.Debug("Renaming duplicate button", logger.Fields{
				"button_id": btns[i].ID,
				"new_id":    id,
			})
			btns[i].ID = id
		}
		taken[id] = true
	}
}

func decodeImport(data []byte) ([]models.ButtonDefinition, error) {
	var list []models.ButtonDefinition
	if err := json.Unmarshal(data, &list); err == nil {
		return nonNil(list), nil
	}

	var wrapper struct {
		Buttons []models.ButtonDefinition `json:"buttons"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}
	return nonNil(wrapper.Buttons), nil
}

// RefreshLinked re-resolves the frequencies of every linked button.
// A button whose reference no longer voices to anything is left unchanged.
// Voices are padded with unassigned voices or truncated to the new count.
// It returns the number of buttons that changed.
func (b *Board) RefreshLinked(src VoicingSource) int {
	b.mu.RLock()
	if !b.linked || len(b.buttons) == 0 {
		b.mu.RUnlock()
		return 0
	}
	current := cloneButtons(b.buttons)
	b.mu.RUnlock()

	// Voicing happens outside the board lock; the store has its own
	items := make(map[string]float64)
	for _, it := range src.Items() {
		items[it.ID] = it.FreqHz
	}

	fresh := make(map[string][]float64)
	for _, btn := range current {
		if !btn.LinkedFromRNG || btn.RNGRef == nil {
			continue
		}
		freqs, ok := resolveRef(src, items, *btn.RNGRef)
		if !ok {
			continue
		}
		fresh[btn.ID] = freqs
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.linked {
		return 0
	}

	changed := 0
	for i := range b.buttons {
		btn := &b.buttons[i]
		freqs, ok := fresh[btn.ID]
		if !ok || !btn.LinkedFromRNG {
			continue
		}
		btn.FreqHz = freqs
		btn.Voices = fitVoices(btn.Voices, len(freqs))
		changed++
	}
	return changed
}

func resolveRef(src VoicingSource, items map[string]float64, ref models.RNGRef) ([]float64, bool) {
	var (
		freqs []float64
		err   error
	)
	switch ref.Type {
	case models.RefSingle:
		hz, ok := items[ref.ID]
		if !ok {
			return nil, false
		}
		return []float64{hz}, true
	case models.RefCombo:
		freqs, err = src.ResolveComboVoicing(ref.ID, 0)
	case models.RefChord:
		freqs, err = src.ResolveChordVoicing(ref.ID, 0)
	default:
		return nil, false
	}
	if err != nil {
		logger.Debug("Linked button no longer resolves", logger.Fields{
			"ref_type": string(ref.Type),
			"ref_id":   ref.ID,
			"error":    err.Error(),
		})
		return nil, false
	}
	return freqs, len(freqs) > 0
}

func fitVoices(voices []models.ButtonVoice, n int) []models.ButtonVoice {
	out := make([]models.ButtonVoice, n)
	copy(out, voices)
	return out
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func nonNil(in []models.ButtonDefinition) []models.ButtonDefinition {
	if in == nil {
		return []models.ButtonDefinition{}
	}
	return in
}
