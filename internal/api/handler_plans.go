package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"guiche-backend/internal/upstream"
)

// ListPlans returns the insurance plans from the upstream API.
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.deps.Upstream.ListPlans(c.Request.Context())
	if err != nil {
		log.Printf("plans: listing: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream listing failed"})
		return
	}
	c.JSON(http.StatusOK, plans)
}

// CreatePlan creates an insurance plan upstream.
func (h *Handler) CreatePlan(c *gin.Context) {
	var plan upstream.Plan
	if err := c.ShouldBindJSON(&plan); err != nil || plan.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	created, err := h.deps.Upstream.CreatePlan(c.Request.Context(), plan)
	if err != nil {
		log.Printf("plans: creating %q: %v", plan.Name, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream create failed"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdatePlan updates an insurance plan upstream.
func (h *Handler) UpdatePlan(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	var plan upstream.Plan
	if err := c.ShouldBindJSON(&plan); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.deps.Upstream.UpdatePlan(c.Request.Context(), id, plan); err != nil {
		log.Printf("plans: updating %d: %v", id, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream update failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeletePlan deletes an insurance plan upstream.
func (h *Handler) DeletePlan(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	if err := h.deps.Upstream.DeletePlan(c.Request.Context(), id); err != nil {
		log.Printf("plans: deleting %d: %v", id, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
