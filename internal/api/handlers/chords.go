package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/stimulus-api/internal/models"
	"github.com/Conceptual-Machines/stimulus-api/internal/rng"
	"github.com/gin-gonic/gin"
)

type ChordHandler struct {
	store     *rng.Store
	rebuilder *Rebuilder
}

func NewChordHandler(store *rng.Store, rebuilder *Rebuilder) *ChordHandler {
	return &ChordHandler{store: store, rebuilder: rebuilder}
}

type CreateChordRequest struct {
	Name    string                  `json:"name"`
	Members []models.RNGChordMember `json:"members" binding:"required,min=2,max=12"`
}

// ChordContourRequest sets a chord override; a null curve clears it.
// MemberKey targets one member instead of the whole chord.
type ChordContourRequest struct {
	Curve     *models.ContourCurve `json:"curve"`
	MemberKey *string              `json:"memberKey,omitempty"`
}

func (h *ChordHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chords": h.store.Chords()})
}

func (h *ChordHandler) Get(c *gin.Context) {
	chord, err := h.store.Chord(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chord)
}

func (h *ChordHandler) Create(c *gin.Context) {
	var req CreateChordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	id, err := h.store.AddChord(req.Name, req.Members)
	if err != nil {
		respondError(c, err)
		return
	}

	chord, err := h.store.Chord(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, chord)
}

func (h *ChordHandler) Update(c *gin.Context) {
	var patch rng.ChordPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, err)
		return
	}
	id := c.Param("id")
	if err := h.store.UpdateChord(id, patch); err != nil {
		respondError(c, err)
		return
	}
	if !h.rebuild(c) {
		return
	}
	h.Get(c)
}

func (h *ChordHandler) Delete(c *gin.Context) {
	if err := h.store.RemoveChord(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChordHandler) GetVoicing(c *gin.Context) {
	id := c.Param("id")
	freqs, err := h.store.ResolveChordVoicing(id, seedParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, VoicingResponse{ID: id, FreqsHz: freqs, Policy: h.store.ChordOctavePolicy(id)})
}

func (h *ChordHandler) SetPolicy(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.store.Chord(id); err != nil {
		respondError(c, err)
		return
	}
	var policy models.OctavePolicy
	if err := c.ShouldBindJSON(&policy); err != nil {
		respondBadRequest(c, err)
		return
	}
	h.store.SetChordOctavePolicy(id, policy)
	if !h.rebuild(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "policy": h.store.ChordOctavePolicy(id)})
}

func (h *ChordHandler) SetContour(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.store.Chord(id); err != nil {
		respondError(c, err)
		return
	}
	var req ChordContourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if req.MemberKey != nil {
		h.store.SetChordNoteContour(id, *req.MemberKey, req.Curve)
	} else {
		h.store.SetChordGroupContour(id, req.Curve)
	}
	c.JSON(http.StatusOK, h.store.ContourOverrides())
}

// rebuild refreshes linked chord buttons; it reports false after writing an error
func (h *ChordHandler) rebuild(c *gin.Context) bool {
	if _, err := h.rebuilder.Rebuild(c.Request.Context()); err != nil {
		respondError(c, err)
		return false
	}
	return true
}
