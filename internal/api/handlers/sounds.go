package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/stimulus-api/internal/services"
	"github.com/gin-gonic/gin"
)

type SoundHandler struct {
	sounds *services.SoundBankService
}

func NewSoundHandler(sounds *services.SoundBankService) *SoundHandler {
	return &SoundHandler{sounds: sounds}
}

type CreateSoundRequest struct {
	Name   string   `json:"name" binding:"required"`
	Tags   []string `json:"tags,omitempty"`
	Source string   `json:"source,omitempty"`
}

func (h *SoundHandler) List(c *gin.Context) {
	sounds, err := h.sounds.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sounds": sounds})
}

func (h *SoundHandler) Create(c *gin.Context) {
	var req CreateSoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	sound, err := h.sounds.Add(c.Request.Context(), req.Name, req.Tags, req.Source)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sound)
}

func (h *SoundHandler) Rename(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	sound, err := h.sounds.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sound)
}

func (h *SoundHandler) Delete(c *gin.Context) {
	if err := h.sounds.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
