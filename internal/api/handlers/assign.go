package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/stimulus-api/internal/models"
	"github.com/Conceptual-Machines/stimulus-api/internal/rng"
	"github.com/gin-gonic/gin"
)

type AssignHandler struct {
	store *rng.Store
}

func NewAssignHandler(store *rng.Store) *AssignHandler {
	return &AssignHandler{store: store}
}

// AssignRequest asks for the models of one button. Policy and
// SelectedModelIDs override the store's own settings when present.
type AssignRequest struct {
	ButtonIndex      int                         `json:"buttonIndex"`
	VoiceCount       int                         `json:"voiceCount" binding:"min=0,max=12"`
	Policy           *models.ModelAssignmentSpec `json:"policy,omitempty"`
	SelectedModelIDs []string                    `json:"selectedModelIds,omitempty"`
}

func (h *AssignHandler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if req.Policy == nil && req.SelectedModelIDs == nil {
		c.JSON(http.StatusOK, gin.H{"modelIds": h.store.AssignModelsForVoices(req.ButtonIndex, req.VoiceCount)})
		return
	}

	cfg := h.store.Config()
	spec := cfg.ModelAssignment
	if req.Policy != nil {
		spec = *req.Policy
	}
	selected := cfg.ModelFilter.SelectedModelIDs
	if req.SelectedModelIDs != nil {
		selected = req.SelectedModelIDs
	}

	c.JSON(http.StatusOK, gin.H{
		"modelIds": rng.AssignModels(req.ButtonIndex, req.VoiceCount, spec, selected),
	})
}
