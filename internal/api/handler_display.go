package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"guiche-backend/internal/liveview"
	"guiche-backend/internal/upstream"
)

// placeholderCode marks an empty slot on the waiting-room screen.
const placeholderCode = "---"

type displaySlot struct {
	Code        string `json:"code"`
	Room        string `json:"room"`
	Category    string `json:"category"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

func slotFor(item upstream.QueueItem) displaySlot {
	return displaySlot{
		Code:     item.Code,
		Room:     item.Room,
		Category: string(liveview.CategoryForCode(item.Code)),
	}
}

func placeholderSlot() displaySlot {
	return displaySlot{
		Code:        placeholderCode,
		Category:    string(liveview.CategoryForCode(placeholderCode)),
		Placeholder: true,
	}
}

// GetDisplay returns the waiting-room screen state: the ticket being served,
// the upcoming slots padded to a fixed width, the recently called tickets and
// the footer info.
func (h *Handler) GetDisplay(c *gin.Context) {
	current, history := h.deps.Display.Snapshot()

	nowServing := placeholderSlot()
	if len(current) > 0 {
		nowServing = slotFor(current[0])
	}

	next := make([]displaySlot, 0, h.deps.DisplaySlots)
	if len(current) > 1 {
		for _, item := range current[1:] {
			if len(next) == h.deps.DisplaySlots {
				break
			}
			next = append(next, slotFor(item))
		}
	}
	for len(next) < h.deps.DisplaySlots {
		next = append(next, placeholderSlot())
	}

	recent := make([]displaySlot, 0, len(history))
	for _, item := range history {
		recent = append(recent, slotFor(item))
	}

	resp := gin.H{
		"nowServing": nowServing,
		"next":       next,
		"history":    recent,
	}
	if h.deps.LocalInfo != nil {
		resp["localInfo"] = h.deps.LocalInfo.Snapshot()
	}

	c.JSON(http.StatusOK, resp)
}

// GetDisplayHistory returns the recently called tickets along with the
// archived call/leave transitions.
func (h *Handler) GetDisplayHistory(c *gin.Context) {
	_, history := h.deps.Display.Snapshot()

	recent := make([]displaySlot, 0, len(history))
	for _, item := range history {
		recent = append(recent, slotFor(item))
	}

	resp := gin.H{"history": recent}
	if h.deps.Store != nil {
		events, err := h.deps.Store.RecentTicketEvents(c.Request.Context(), 50)
		if err != nil {
			log.Printf("display history: loading ticket events: %v", err)
		} else {
			resp["events"] = events
		}
	}

	c.JSON(http.StatusOK, resp)
}
