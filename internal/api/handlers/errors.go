package handlers

import (
	"errors"
	"net/http"

	"github.com/Conceptual-Machines/stimulus-api/internal/buttons"
	"github.com/Conceptual-Machines/stimulus-api/internal/logger"
	"github.com/Conceptual-Machines/stimulus-api/internal/music"
	"github.com/Conceptual-Machines/stimulus-api/internal/preview"
	"github.com/Conceptual-Machines/stimulus-api/internal/rng"
	"github.com/Conceptual-Machines/stimulus-api/internal/services"
	"github.com/gin-gonic/gin"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, music.ErrUnknownPitchClass),
		errors.Is(err, rng.ErrInvalidTemplate),
		errors.Is(err, rng.ErrInvalidChord),
		errors.Is(err, buttons.ErrInvalidMode),
		errors.Is(err, buttons.ErrInvalidImport),
		errors.Is(err, preview.ErrNoVoices),
		errors.Is(err, preview.ErrInvalidVoice),
		errors.Is(err, preview.ErrInvalidOptions),
		errors.Is(err, services.ErrInvalidSoundName):
		return http.StatusBadRequest
	case errors.Is(err, rng.ErrTemplateNotFound),
		errors.Is(err, rng.ErrChordNotFound),
		errors.Is(err, rng.ErrComboNotFound),
		errors.Is(err, buttons.ErrButtonNotFound),
		errors.Is(err, services.ErrStateNotFound),
		errors.Is(err, services.ErrSoundNotFound):
		return http.StatusNotFound
	case errors.Is(err, rng.ErrBuiltInTemplate):
		return http.StatusForbidden
	case errors.Is(err, rng.ErrNoActiveTemplate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...}; server errors are logged and reported
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", err, logger.WithContext(c))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}
