package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"guiche-backend/internal/store"
)

type subscriptionRequest struct {
	Endpoint string   `json:"endpoint" binding:"required"`
	Keys     keysBody `json:"keys" binding:"required"`
	Codes    []string `json:"codes"`
}

type keysBody struct {
	P256DH string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

// PutSubscription registers (or updates) a push subscription and the ticket
// codes it watches.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint and keys are required"})
		return
	}

	sub := store.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.Keys.P256DH,
		Auth:     req.Keys.Auth,
	}
	if err := h.deps.Store.SaveSubscription(c.Request.Context(), sub, req.Codes); err != nil {
		log.Printf("subscriptions: saving %q: %v", req.Endpoint, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save subscription"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSubscription returns the codes a subscription watches.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	codes, err := h.deps.Store.SubscriptionCodes(c.Request.Context(), endpoint)
	if err != nil {
		log.Printf("subscriptions: loading %q: %v", endpoint, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscription"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"endpoint": endpoint, "codes": codes})
}

// DeleteSubscription removes a push subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	if err := h.deps.Store.DeleteSubscription(c.Request.Context(), endpoint); err != nil {
		log.Printf("subscriptions: deleting %q: %v", endpoint, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete subscription"})
		return
	}
	c.Status(http.StatusNoContent)
}
