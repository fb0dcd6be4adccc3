package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"guiche-backend/config"
	"guiche-backend/internal/gate"
	"guiche-backend/internal/mw"
)

// Page profile tags for the access gate. Static identifiers of the page
// groups, deliberately not derived from request paths.
const (
	ProfileMedic        = "medic"
	ProfileReceptionist = "recepcionist"
	ProfileNotes        = "notes"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, h *Handler, g *gate.Gate) *gin.Engine {
	r := gin.Default()

	limit := rate.Limit(cfg.RateLimitPerSec)
	if limit <= 0 {
		limit = rate.Limit(10)
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 5
	}
	rateLimiter := mw.RateLimiter(limit, burst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)

		// The waiting-room display is public, like the physical screen it feeds.
		api.GET("/display", h.GetDisplay)
		api.GET("/display/history", caching, h.GetDisplayHistory)

		api.GET("/vapid_public_key", caching, h.GetVAPIDPublicKey)
		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)

		medic := api.Group("", mw.AccessGate(g, ProfileMedic))
		{
			medic.GET("/dashboard", h.GetDashboard)
			medic.PUT("/items/:id/status", h.UpdateItemStatus)
			medic.PUT("/items/:id/details", h.UpdateItemDetails)
		}

		reception := api.Group("", mw.AccessGate(g, ProfileReceptionist))
		{
			reception.GET("/plans", h.ListPlans)
			reception.POST("/plans", h.CreatePlan)
			reception.PUT("/plans/:id", h.UpdatePlan)
			reception.DELETE("/plans/:id", h.DeletePlan)
		}

		noteRoutes := api.Group("", mw.AccessGate(g, ProfileNotes))
		{
			noteRoutes.GET("/notes", h.ListNotes)
			noteRoutes.POST("/notes", h.AddNote)
			noteRoutes.PUT("/notes/:id", h.UpdateNote)
			noteRoutes.DELETE("/notes/:id", h.DeleteNote)
		}
	}

	return r
}
