package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/stimulus-api/internal/buttons"
	"github.com/Conceptual-Machines/stimulus-api/internal/models"
	"github.com/Conceptual-Machines/stimulus-api/internal/rng"
	"github.com/gin-gonic/gin"
)

const maxImportBytes = 4 << 20

// Button sources accepted by Generate
const (
	SourceSingles = "singles"
	SourceCombos  = "combos"
	SourceChords  = "chords"
)

type ButtonHandler struct {
	generator *buttons.Generator
	board     *buttons.Board
}

func NewButtonHandler(store *rng.Store, board *buttons.Board) *ButtonHandler {
	return &ButtonHandler{generator: buttons.NewGenerator(store), board: board}
}

type BoardResponse struct {
	Linked  bool                      `json:"linked"`
	Mode    buttons.GenerateMode      `json:"mode"`
	Buttons []models.ButtonDefinition `json:"buttons"`
}

type GenerateRequest struct {
	Source string               `json:"source" binding:"required,oneof=singles combos chords"`
	IDs    []string             `json:"ids,omitempty"`
	Mode   buttons.GenerateMode `json:"mode,omitempty"`
}

type LinkRequest struct {
	Linked *bool `json:"linked" binding:"required"`
}

func (h *ButtonHandler) List(c *gin.Context) {
	h.respondBoard(c)
}

// Generate builds buttons from the RNG and merges them by the generate mode
func (h *ButtonHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if req.Mode != "" {
		if err := h.board.SetGenerateMode(req.Mode); err != nil {
			respondError(c, err)
			return
		}
	}

	var (
		fresh []models.ButtonDefinition
		err   error
	)
	switch req.Source {
	case SourceSingles:
		fresh = h.generator.FromSingles()
	case SourceCombos:
		fresh, err = h.generator.FromCombos(req.IDs...)
	case SourceChords:
		fresh, err = h.generator.FromChords(req.IDs...)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	h.board.Apply(fresh)
	h.respondBoard(c)
}

func (h *ButtonHandler) Layout(c *gin.Context) {
	var opts buttons.LayoutOptions
	if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, err)
		return
	}
	h.board.OptimizeLayout(opts)
	h.respondBoard(c)
}

// Link toggles following the RNG; unlinking freezes a snapshot of the board
func (h *ButtonHandler) Link(c *gin.Context) {
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if *req.Linked {
		h.board.SetLinked(true)
	} else {
		h.board.Snapshot()
	}
	h.respondBoard(c)
}

func (h *ButtonHandler) Update(c *gin.Context) {
	var patch buttons.ButtonPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, err)
		return
	}
	id := c.Param("id")
	if err := h.board.Update(id, patch); err != nil {
		respondError(c, err)
		return
	}
	btn, err := h.board.Button(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, btn)
}

func (h *ButtonHandler) Delete(c *gin.Context) {
	if err := h.board.Remove(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ButtonHandler) Clear(c *gin.Context) {
	h.board.Clear()
	c.Status(http.StatusNoContent)
}

func (h *ButtonHandler) Export(c *gin.Context) {
	data, err := h.board.ExportJSON()
	if err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("buttons-%s.json", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", data)
}

// Import reads a raw JSON body; ?mode=replace|append, append by default
func (h *ButtonHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	n, err := h.board.ImportJSON(data, buttons.GenerateMode(c.Query("mode")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n, "buttons": h.board.Buttons()})
}

func (h *ButtonHandler) respondBoard(c *gin.Context) {
	c.JSON(http.StatusOK, BoardResponse{
		Linked:  h.board.Linked(),
		Mode:    h.board.Mode(),
		Buttons: h.board.Buttons(),
	})
}
