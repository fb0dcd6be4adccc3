package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"guiche-backend/internal/liveview"
	"guiche-backend/internal/upstream"
)

// GetDashboard returns the live queue for a staff member's day. The first
// request for a given scope starts a dedicated poller; repeat requests keep
// it alive and idle scopes are torn down automatically.
func (h *Handler) GetDashboard(c *gin.Context) {
	staff := c.Query("staff")
	if staff == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "staff is required"})
		return
	}
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	scope := upstream.Scope{Date: date, Staff: staff}
	current, history := h.deps.Dashboards.View(scope).Snapshot()

	items := make([]gin.H, 0, len(current))
	for _, item := range current {
		items = append(items, dashboardItem(item))
	}
	recent := make([]gin.H, 0, len(history))
	for _, item := range history {
		recent = append(recent, dashboardItem(item))
	}

	c.JSON(http.StatusOK, gin.H{
		"date":         date,
		"staff":        staff,
		"items":        items,
		"recentlyLeft": recent,
	})
}

func dashboardItem(item upstream.QueueItem) gin.H {
	return gin.H{
		"id":              item.ID,
		"code":            item.Code,
		"room":            item.Room,
		"scheduledMoment": item.ScheduledMoment,
		"status":          item.Status,
		"kind":            item.Kind,
		"notes":           item.Notes,
		"category":        string(liveview.CategoryForCode(item.Code)),
	}
}
