package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"guiche-backend/internal/upstream"
)

type statusRequest struct {
	Status upstream.Status `json:"status" binding:"required"`
}

func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return 0, false
	}
	return id, true
}

// UpdateItemStatus forwards a ticket status change to the upstream API.
func (h *Handler) UpdateItemStatus(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	switch req.Status {
	case upstream.StatusWaiting, upstream.StatusInService, upstream.StatusDone:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	if err := h.deps.Upstream.UpdateItemStatus(c.Request.Context(), id, req.Status); err != nil {
		log.Printf("items: updating status of %d: %v", id, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream update failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateItemDetails forwards a room/kind/notes change to the upstream API.
func (h *Handler) UpdateItemDetails(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	var details upstream.DetailsUpdate
	if err := c.ShouldBindJSON(&details); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.deps.Upstream.UpdateItemDetails(c.Request.Context(), id, details); err != nil {
		log.Printf("items: updating details of %d: %v", id, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream update failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
