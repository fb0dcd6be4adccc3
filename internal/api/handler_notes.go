package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"guiche-backend/internal/mw"
	"guiche-backend/internal/notes"
)

type noteRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

// ListNotes returns the subject's notes.
func (h *Handler) ListNotes(c *gin.Context) {
	list, err := h.deps.Notes.List(c.Request.Context(), mw.Subject(c))
	if err != nil {
		log.Printf("notes: listing: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notes"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// AddNote appends a note to the subject's list.
func (h *Handler) AddNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	note, err := h.deps.Notes.Add(c.Request.Context(), mw.Subject(c), req.Title, req.Content)
	if err != nil {
		if errors.Is(err, notes.ErrLimitReached) {
			c.JSON(http.StatusConflict, gin.H{"error": "note limit reached"})
			return
		}
		log.Printf("notes: adding: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save note"})
		return
	}
	c.JSON(http.StatusCreated, note)
}

// UpdateNote replaces the title and content of one of the subject's notes.
func (h *Handler) UpdateNote(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	err := h.deps.Notes.Update(c.Request.Context(), mw.Subject(c), id, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, notes.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
			return
		}
		log.Printf("notes: updating %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save note"})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteNote removes one of the subject's notes.
func (h *Handler) DeleteNote(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	err := h.deps.Notes.Delete(c.Request.Context(), mw.Subject(c), id)
	if err != nil {
		if errors.Is(err, notes.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
			return
		}
		log.Printf("notes: deleting %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete note"})
		return
	}
	c.Status(http.StatusNoContent)
}
