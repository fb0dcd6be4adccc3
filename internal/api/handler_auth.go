package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"guiche-backend/internal/mw"
)

type loginRequest struct {
	Name   string `json:"name" binding:"required"`
	Secret string `json:"secret" binding:"required"`
}

// Login validates the credentials against the upstream API and opens a
// session for the subject. Presence reporting is best effort.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and secret are required"})
		return
	}

	role, err := h.deps.Upstream.ValidateUser(c.Request.Context(), req.Name, req.Secret)
	if err != nil {
		log.Printf("login: validating %q upstream: %v", req.Name, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "validation unavailable"})
		return
	}
	if role == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := h.deps.Sessions.Login(c.Request.Context(), req.Name, role); err != nil {
		log.Printf("login: storing session for %q: %v", req.Name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open session"})
		return
	}

	if err := h.deps.Upstream.SetOnline(c.Request.Context(), req.Name); err != nil {
		log.Printf("login: reporting %q online: %v", req.Name, err)
	}

	c.JSON(http.StatusOK, gin.H{"name": req.Name, "role": role})
}

// Logout tears down the subject's session and clears any cached access
// grants. It never fails from the caller's point of view.
func (h *Handler) Logout(c *gin.Context) {
	subject := mw.Subject(c)
	if subject == "" {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.deps.Gate.Logout(c.Request.Context(), subject); err != nil {
		log.Printf("logout: clearing session for %q: %v", subject, err)
	}
	c.Status(http.StatusNoContent)
}
