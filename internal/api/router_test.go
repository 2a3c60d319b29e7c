package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Conceptual-Machines/stimulus-api/internal/api/handlers"
	"github.com/Conceptual-Machines/stimulus-api/internal/buttons"
	"github.com/Conceptual-Machines/stimulus-api/internal/config"
	"github.com/Conceptual-Machines/stimulus-api/internal/metrics"
	"github.com/Conceptual-Machines/stimulus-api/internal/models"
	"github.com/Conceptual-Machines/stimulus-api/internal/rng"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *rng.Store, *buttons.Board) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := rng.NewStore()
	board := buttons.NewBoard()
	router := SetupRouter(Dependencies{
		Config: &config.Config{
			Environment:       "test",
			StateTag:          "test-state",
			A4Hz:              440,
			PreviewSampleRate: 8000,
			AuthMode:          "none",
		},
		Store:    store,
		Board:    board,
		Recorder: metrics.NewRecorder(nil),
		Version:  "test",
	})
	return router, store, board
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// setupTriad selects C, E and G with pairs enabled
func setupTriad(t *testing.T, r http.Handler) {
	t.Helper()
	w := doJSON(t, r, http.MethodPut, "/api/v1/rng/selection", gin.H{"indices": []int{7, 0, 4, 4}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPut, "/api/v1/rng/polyphony", models.PolyphonySpec{
		Enabled: true,
		K:       2,
		Source:  models.SourceCombinations,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHealthWithoutDatabase(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":{"status":"disabled"}}`, w.Body.String())
}

func TestRoutesRequiringDatabaseAreAbsent(t *testing.T) {
	r, _, _ := newTestRouter(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/rng/save"},
		{http.MethodPost, "/api/v1/rng/load"},
		{http.MethodGet, "/api/v1/sounds"},
		{http.MethodPost, "/api/v1/sounds"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := doJSON(t, r, tt.method, tt.path, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestSelectionAndCombinations(t *testing.T) {
	r, _, _ := newTestRouter(t)
	setupTriad(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/v1/rng/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[rng.Snapshot](t, w)
	assert.Equal(t, []int{0, 4, 7}, state.Config.SelectedIndices)

	w = doJSON(t, r, http.MethodGet, "/api/v1/rng/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[handlers.PageResponse[models.RNGItem]](t, w)
	require.Equal(t, 3, items.Total)
	assert.Equal(t, "pc-0-o4", items.Results[0].ID)
	assert.Equal(t, "G4", items.Results[2].Label)

	w = doJSON(t, r, http.MethodGet, "/api/v1/rng/combos/base", nil)
	require.Equal(t, http.StatusOK, w.Code)
	base := decode[handlers.PageResponse[models.RNGCombination]](t, w)
	require.Equal(t, 3, base.Total)
	labels := make([]string, len(base.Results))
	for i, c := range base.Results {
		labels[i] = c.Labels
	}
	assert.Equal(t, []string{"C + E", "C + G", "E + G"}, labels)
	assert.Equal(t, "base-pi-0__pi-4", base.Results[0].ID)

	w = doJSON(t, r, http.MethodGet, "/api/v1/rng/combos/base?page=1&perPage=2", nil)
	page := decode[handlers.PageResponse[models.RNGCombination]](t, w)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "E + G", page.Results[0].Labels)

	w = doJSON(t, r, http.MethodGet, "/api/v1/rng/combos", nil)
	combos := decode[handlers.PageResponse[models.RNGCombination]](t, w)
	assert.Equal(t, 3, combos.Total)
	assert.Equal(t, "C4 + E4", combos.Results[0].Labels)
}

func TestComboVoicingAndPolicy(t *testing.T) {
	r, _, _ := newTestRouter(t)
	setupTriad(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/v1/rng/combos/base/base-pi-0__pi-4/voicing", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	voicing := decode[handlers.VoicingResponse](t, w)
	require.Len(t, voicing.FreqsHz, 2)
	assert.InDelta(t, 261.63, voicing.FreqsHz[0], 0.01)
	assert.InDelta(t, 329.63, voicing.FreqsHz[1], 0.01)
	assert.Equal(t, models.PolicyGlobal, voicing.Policy.Mode)

	w = doJSON(t, r, http.MethodPut, "/api/v1/rng/combos/base/base-pi-0__pi-4/policy", models.OctavePolicy{
		Mode:    models.PolicyUniform,
		Octaves: []int{5, 3},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/v1/rng/combos/base/base-pi-0__pi-4/voicing", nil)
	voicing = decode[handlers.VoicingResponse](t, w)
	require.Len(t, voicing.FreqsHz, 2)
	assert.InDelta(t, 130.81, voicing.FreqsHz[0], 0.01)
	assert.InDelta(t, 164.81, voicing.FreqsHz[1], 0.01)

	w = doJSON(t, r, http.MethodGet, "/api/v1/rng/combos/base/base-nope/voicing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTemplates(t *testing.T) {
	r, _, _ := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"rename built-in", http.MethodPatch, "/api/v1/templates/" + rng.WesternLetterTemplateID, gin.H{"name": "x"}, http.StatusForbidden},
		{"delete built-in", http.MethodDelete, "/api/v1/templates/" + rng.WesternFreqTemplateID, nil, http.StatusForbidden},
		{"get unknown", http.MethodGet, "/api/v1/templates/tpl-nope", nil, http.StatusNotFound},
		{"select unknown", http.MethodPut, "/api/v1/rng/template", gin.H{"templateId": "tpl-nope"}, http.StatusNotFound},
		{"create bad letter", http.MethodPost, "/api/v1/templates", gin.H{"type": "letter", "letters": []string{"H"}}, http.StatusBadRequest},
		{"create unknown type", http.MethodPost, "/api/v1/templates", gin.H{"type": "midi"}, http.StatusBadRequest},
		{"create without type", http.MethodPost, "/api/v1/templates", gin.H{"name": "x"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/templates", gin.H{
		"name":    "Pentatonic",
		"type":    "frequency",
		"freqsHz": []float64{220, 330},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tpl := decode[models.ScaleTemplate](t, w)
	assert.Equal(t, "Pentatonic", tpl.Name)
	assert.False(t, tpl.BuiltIn)

	w = doJSON(t, r, http.MethodPut, "/api/v1/rng/template", gin.H{"templateId": tpl.ID})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPut, "/api/v1/rng/selection", gin.H{"indices": []int{1, 0}})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[handlers.ConfigResponse](t, w)
	assert.Equal(t, 2, resp.Rebuild.Items)

	w = doJSON(t, r, http.MethodPatch, "/api/v1/templates/"+tpl.ID, gin.H{"name": "Fifths"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Fifths", decode[models.ScaleTemplate](t, w).Name)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/templates/"+tpl.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = decode[handlers.ConfigResponse](t, w)
	assert.Equal(t, rng.WesternLetterTemplateID, resp.Config.TemplateID)
}

func TestNoActiveTemplate(t *testing.T) {
	r, _, _ := newTestRouter(t)
	setupTriad(t, r)

	w := doJSON(t, r, http.MethodPut, "/api/v1/rng/template", gin.H{"templateId": ""})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[handlers.ConfigResponse](t, w)
	assert.Equal(t, rng.RebuildReport{}, resp.Rebuild)

	w = doJSON(t, r, http.MethodGet, "/api/v1/rng/combos/base/base-pi-0__pi-4/voicing", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestChordsAndButtons(t *testing.T) {
	r, _, board := newTestRouter(t)
	setupTriad(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/chords", gin.H{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/chords", gin.H{
		"name": "C major",
		"members": []models.RNGChordMember{
			{ItemRefID: "pc-0-o4"},
			{ItemRefID: "pc-4-o4"},
			{ItemRefID: "pc-7-o4"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	chord := decode[models.RNGChord](t, w)

	w = doJSON(t, r, http.MethodPost, "/api/v1/chords", gin.H{
		"name":    "lonely",
		"members": []models.RNGChordMember{{ItemRefID: "pc-0-o4"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, r, http.MethodPatch, "/api/v1/chords/"+chord.ID, gin.H{
		"members": []models.RNGChordMember{{ItemRefID: "pc-0-o4"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/chords/"+chord.ID+"/voicing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	voicing := decode[handlers.VoicingResponse](t, w)
	require.Len(t, voicing.FreqsHz, 3)
	assert.InDelta(t, 392.0, voicing.FreqsHz[2], 0.01)

	w = doJSON(t, r, http.MethodPost, "/api/v1/buttons/generate", gin.H{"source": "combos"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	boardResp := decode[handlers.BoardResponse](t, w)
	assert.True(t, boardResp.Linked)
	require.Len(t, boardResp.Buttons, 3)
	assert.Equal(t, "b-base-pi-0__pi-4", boardResp.Buttons[0].ID)

	w = doJSON(t, r, http.MethodPost, "/api/v1/buttons/generate", gin.H{"source": "chords", "mode": "append"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	boardResp = decode[handlers.BoardResponse](t, w)
	require.Len(t, boardResp.Buttons, 4)
	assert.Equal(t, "b-ch-"+chord.ID, boardResp.Buttons[3].ID)
	assert.Equal(t, "C major", boardResp.Buttons[3].Label)

	// Moving the chord up an octave refreshes its linked button
	w = doJSON(t, r, http.MethodPut, "/api/v1/chords/"+chord.ID+"/policy", models.OctavePolicy{
		Mode:    models.PolicyUniform,
		Octaves: []int{5},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	btn, err := board.Button("b-ch-" + chord.ID)
	require.NoError(t, err)
	require.Len(t, btn.FreqHz, 3)
	assert.InDelta(t, 523.25, btn.FreqHz[0], 0.01)

	// Generating the same combinations again in append mode keeps ids unique
	w = doJSON(t, r, http.MethodPost, "/api/v1/buttons/generate", gin.H{"source": "combos", "mode": "append"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	boardResp = decode[handlers.BoardResponse](t, w)
	require.Len(t, boardResp.Buttons, 7)
	seen := map[string]bool{}
	for _, b := range boardResp.Buttons {
		assert.False(t, seen[b.ID], "duplicate id %s", b.ID)
		seen[b.ID] = true
	}
	assert.True(t, strings.HasPrefix(boardResp.Buttons[4].ID, "b-base-pi-0__pi-4-"))

	w = doJSON(t, r, http.MethodPost, "/api/v1/buttons/generate", gin.H{"source": "combos", "mode": "merge"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/chords/"+chord.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/v1/chords/"+chord.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestButtonExportImport(t *testing.T) {
	r, _, _ := newTestRouter(t)
	setupTriad(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/buttons/generate", gin.H{"source": "singles"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/buttons/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	exported := w.Body.Bytes()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/buttons/import", bytes.NewReader(exported))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var imported struct {
		Imported int                       `json:"imported"`
		Buttons  []models.ButtonDefinition `json:"buttons"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &imported))
	assert.Equal(t, 3, imported.Imported)
	assert.Len(t, imported.Buttons, 6)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/buttons/import?mode=replace", strings.NewReader("{not json"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/buttons/layout", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPatch, "/api/v1/buttons/b-nope", gin.H{"label": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/buttons/link", gin.H{"linked": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[handlers.BoardResponse](t, w).Linked)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/buttons", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/v1/buttons", nil)
	assert.Empty(t, decode[handlers.BoardResponse](t, w).Buttons)
}

func TestPreview(t *testing.T) {
	r, _, _ := newTestRouter(t)
	setupTriad(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/preview", gin.H{"comboBaseId": "base-pi-0__pi-4", "durationMs": 100})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "audio/wav", w.Header().Get("Content-Type"))
	assert.Equal(t, "RIFF", string(w.Body.Bytes()[:4]))

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"nothing to render", gin.H{}, http.StatusBadRequest},
		{"above nyquist", gin.H{"frequencies": []float64{6000}}, http.StatusBadRequest},
		{"unknown chord", gin.H{"chordId": "chord-nope"}, http.StatusNotFound},
		{"negative duration", gin.H{"frequencies": []float64{440}, "durationMs": -1}, http.StatusBadRequest},
		{"too many voices", gin.H{"frequencies": make([]float64, 13)}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/v1/preview", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestAssign(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPut, "/api/v1/rng/models", gin.H{"selectedModelIds": []string{"A", "B"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tests := []struct {
		name string
		body interface{}
		want []string
	}{
		{"store policy", gin.H{"buttonIndex": 1, "voiceCount": 3}, []string{"B", "A", "B"}},
		{"policy override", gin.H{"buttonIndex": 1, "voiceCount": 2, "policy": gin.H{"policy": "same"}}, []string{"A", "A"}},
		{"models override", gin.H{"buttonIndex": 0, "voiceCount": 2, "selectedModelIds": []string{"X"}}, []string{"X", "X"}},
		{"no voices", gin.H{"buttonIndex": 0, "voiceCount": 0}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/v1/assign", tt.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var resp struct {
				ModelIDs []string `json:"modelIds"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.ModelIDs)
		})
	}
}

func TestAssign_RejectsOversizedVoiceCount(t *testing.T) {
	r, _, _ := newTestRouter(t)

	for _, count := range []int64{13, 1 << 36, -1} {
		w := doJSON(t, r, http.MethodPost, "/api/v1/assign", gin.H{"buttonIndex": 0, "voiceCount": count})
		assert.Equal(t, http.StatusBadRequest, w.Code, "voiceCount %d", count)

		w = doJSON(t, r, http.MethodPost, "/api/v1/assign", gin.H{
			"voiceCount":       count,
			"selectedModelIds": []string{"X"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "voiceCount %d with override", count)
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/assign", gin.H{"buttonIndex": 0, "voiceCount": 12, "selectedModelIds": []string{"X"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		ModelIDs []string `json:"modelIds"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.ModelIDs, 12)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)
	setupTriad(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[handlers.MetricsResponse](t, w)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, 3, resp.Stimulus.Items)
	assert.Equal(t, 3, resp.Stimulus.CombosBase)
}
