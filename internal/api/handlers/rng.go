package handlers

import (
	"net/http"
	"strconv"

	"github.com/Conceptual-Machines/stimulus-api/internal/models"
	"github.com/Conceptual-Machines/stimulus-api/internal/music"
	"github.com/Conceptual-Machines/stimulus-api/internal/rng"
	"github.com/Conceptual-Machines/stimulus-api/internal/services"
	"github.com/gin-gonic/gin"
)

const defaultPerPage = 100

// RNGHandler exposes the stimulus configuration and its derived collections
type RNGHandler struct {
	store     *rng.Store
	rebuilder *Rebuilder
	state     *services.StateService // nil without a database
	stateTag  string
}

func NewRNGHandler(store *rng.Store, rebuilder *Rebuilder, state *services.StateService, stateTag string) *RNGHandler {
	return &RNGHandler{store: store, rebuilder: rebuilder, state: state, stateTag: stateTag}
}

type ConfigResponse struct {
	Config  models.RNGConfig  `json:"config"`
	Rebuild rng.RebuildReport `json:"rebuild"`
}

type SetTemplateRequest struct {
	TemplateID *string `json:"templateId" binding:"required"`
}

type SetSelectionRequest struct {
	Indices []int `json:"indices" binding:"required"`
}

type SetModelsRequest struct {
	SelectedModelIDs []string                    `json:"selectedModelIds"`
	Assignment       *models.ModelAssignmentSpec `json:"assignment,omitempty"`
}

// ContourRequest sets an override; a null curve clears it.
// NoteIndex targets one note instead of the whole combination.
type ContourRequest struct {
	Curve     *models.ContourCurve `json:"curve"`
	NoteIndex *int                 `json:"noteIndex,omitempty"`
}

type VoicingResponse struct {
	ID      string              `json:"id"`
	FreqsHz []float64           `json:"freqsHz"`
	Policy  models.OctavePolicy `json:"policy"`
}

type PageResponse[T any] struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Results []T `json:"results"`
}

// GetState returns the whole store
func (h *RNGHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot())
}

func (h *RNGHandler) SetConfig(c *gin.Context) {
	var cfg models.RNGConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		respondBadRequest(c, err)
		return
	}
	h.store.SetConfig(cfg)
	h.respondRebuilt(c)
}

func (h *RNGHandler) SetTemplate(c *gin.Context) {
	var req SetTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.store.SetTemplate(*req.TemplateID); err != nil {
		respondError(c, err)
		return
	}
	h.respondRebuilt(c)
}

func (h *RNGHandler) SetSelection(c *gin.Context) {
	var req SetSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	h.store.SetSelectedIndices(req.Indices)
	h.respondRebuilt(c)
}

func (h *RNGHandler) SetOctaves(c *gin.Context) {
	var spec models.OctaveSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		respondBadRequest(c, err)
		return
	}
	h.store.SetOctaveSpec(spec)
	h.respondRebuilt(c)
}

func (h *RNGHandler) SetPolyphony(c *gin.Context) {
	var spec models.PolyphonySpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		respondBadRequest(c, err)
		return
	}
	h.store.SetPolyphony(spec)
	h.respondRebuilt(c)
}

// SetModels updates the model filter and, when given, the assignment policy
func (h *RNGHandler) SetModels(c *gin.Context) {
	var req SetModelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	h.store.SetModelFilter(req.SelectedModelIDs)
	if req.Assignment != nil {
		h.store.SetModelAssignment(*req.Assignment)
	}
	c.JSON(http.StatusOK, gin.H{"config": h.store.Config()})
}

func (h *RNGHandler) Rebuild(c *gin.Context) {
	h.respondRebuilt(c)
}

func (h *RNGHandler) GetItems(c *gin.Context) {
	respondPage(c, h.store.Items())
}

func (h *RNGHandler) GetCombos(c *gin.Context) {
	respondPage(c, h.store.Combos())
}

func (h *RNGHandler) GetCombosBase(c *gin.Context) {
	respondPage(c, h.store.CombosBase())
}

func (h *RNGHandler) GetComboVoicing(c *gin.Context) {
	id := c.Param("id")
	freqs, err := h.store.ResolveComboVoicing(id, seedParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, VoicingResponse{ID: id, FreqsHz: freqs, Policy: h.store.ComboOctavePolicy(id)})
}

func (h *RNGHandler) SetComboPolicy(c *gin.Context) {
	id := c.Param("id")
	var policy models.OctavePolicy
	if err := c.ShouldBindJSON(&policy); err != nil {
		respondBadRequest(c, err)
		return
	}
	h.store.SetComboOctavePolicy(id, policy)
	// Items are unaffected; the rebuild refreshes linked buttons
	if _, err := h.rebuilder.Rebuild(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "policy": h.store.ComboOctavePolicy(id)})
}

func (h *RNGHandler) SetComboContour(c *gin.Context) {
	id := c.Param("id")
	var req ContourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if req.NoteIndex != nil {
		h.store.SetComboNoteContour(id, *req.NoteIndex, req.Curve)
	} else {
		h.store.SetComboGroupContour(id, req.Curve)
	}
	c.JSON(http.StatusOK, h.store.ContourOverrides())
}

func (h *RNGHandler) SetItemContour(c *gin.Context) {
	var req ContourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	h.store.SetSingleContour(c.Param("id"), req.Curve)
	c.JSON(http.StatusOK, h.store.ContourOverrides())
}

// Save persists the whole store under the configured tag
func (h *RNGHandler) Save(c *gin.Context) {
	if err := h.state.Save(c.Request.Context(), h.stateTag, h.store.Snapshot()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": h.stateTag, "saved": true})
}

// Load replaces the store with the persisted snapshot and rebuilds
func (h *RNGHandler) Load(c *gin.Context) {
	snap, err := h.state.Load(c.Request.Context(), h.stateTag)
	if err != nil {
		respondError(c, err)
		return
	}
	h.store.Restore(snap)
	h.respondRebuilt(c)
}

func (h *RNGHandler) respondRebuilt(c *gin.Context) {
	report, err := h.rebuilder.Rebuild(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ConfigResponse{Config: h.store.Config(), Rebuild: report})
}

func respondPage[T any](c *gin.Context, items []T) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", strconv.Itoa(defaultPerPage)))
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if page < 0 {
		page = 0
	}
	c.JSON(http.StatusOK, PageResponse[T]{
		Total:   len(items),
		Page:    page,
		PerPage: perPage,
		Results: music.Page(items, page, perPage),
	})
}

func seedParam(c *gin.Context) int64 {
	seed, _ := strconv.ParseInt(c.Query("seed"), 10, 64)
	return seed
}
