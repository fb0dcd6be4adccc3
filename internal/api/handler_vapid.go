package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetVAPIDPublicKey returns the public key browsers need to subscribe for
// push notifications.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.deps.WebPush == nil || h.deps.WebPush.VAPIDPublicKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "push notifications are not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": h.deps.WebPush.VAPIDPublicKey})
}
