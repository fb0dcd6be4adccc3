package mw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"guiche-backend/internal/gate"
)

// SubjectHeader carries the session subject name on every request, the server
// counterpart of the browser reading its stored identity before each call.
const SubjectHeader = "X-Subject-Name"

// subjectKey is the gin context key the gated subject name is stored under.
const subjectKey = "subject"

// AccessGate protects a route group with the access gate, keyed by the group's
// static page profile. Denials answer 403; the client reacts by tearing the
// session down and returning to the entry page.
func AccessGate(g *gate.Gate, pageProfile string) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetHeader(SubjectHeader)
		if !g.CheckAccess(c.Request.Context(), subject, pageProfile) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Set(subjectKey, subject)
		c.Next()
	}
}

// Subject returns the gated subject name for the request, falling back to the
// header for ungated routes.
func Subject(c *gin.Context) string {
	if subject, ok := c.Get(subjectKey); ok {
		return subject.(string)
	}
	return c.GetHeader(SubjectHeader)
}
