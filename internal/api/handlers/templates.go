package handlers

import (
	"fmt"
	"net/http"

	"github.com/Conceptual-Machines/stimulus-api/internal/models"
	"github.com/Conceptual-Machines/stimulus-api/internal/rng"
	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	store     *rng.Store
	rebuilder *Rebuilder
}

func NewTemplateHandler(store *rng.Store, rebuilder *Rebuilder) *TemplateHandler {
	return &TemplateHandler{store: store, rebuilder: rebuilder}
}

type CreateTemplateRequest struct {
	Name    string              `json:"name"`
	Type    models.TemplateType `json:"type" binding:"required"`
	Letters []string            `json:"letters"`
	FreqsHz []float64           `json:"freqsHz"`
}

type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *TemplateHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.store.Templates()})
}

func (h *TemplateHandler) Get(c *gin.Context) {
	tpl, err := h.store.Template(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	var (
		id  string
		err error
	)
	switch req.Type {
	case models.TemplateLetter:
		id, err = h.store.AddLetterTemplate(req.Name, req.Letters)
	case models.TemplateFrequency:
		id, err = h.store.AddFrequencyTemplate(req.Name, req.FreqsHz)
	default:
		err = fmt.Errorf("%w: unknown type %q", rng.ErrInvalidTemplate, req.Type)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	tpl, err := h.store.Template(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (h *TemplateHandler) Rename(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	id := c.Param("id")
	if err := h.store.RenameTemplate(id, req.Name); err != nil {
		respondError(c, err)
		return
	}
	h.Get(c)
}

// Delete removes a user template; removing the active one falls back to the
// built-in letter template and rebuilds
func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.store.RemoveTemplate(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	report, err := h.rebuilder.Rebuild(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ConfigResponse{Config: h.store.Config(), Rebuild: report})
}
