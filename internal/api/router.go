package api

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"equipment-tracker-backend/config"
	"equipment-tracker-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	responses := mw.NewResponseCache(cfg.CacheTTL())
	caching := responses.Cache()

	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(rateLimiter, responses.Invalidate())
	{
		api.GET("/meta", caching, h.GetMeta)

		api.GET("/equipment", caching, h.ListEquipment)
		api.POST("/equipment", h.CreateEquipment)
		api.GET("/equipment/:id", caching, h.GetEquipment)
		api.PUT("/equipment/:id", h.EditEquipment)
		api.DELETE("/equipment/:id", h.DeleteEquipment)
		api.POST("/equipment/:id/inspection", h.InspectEquipment)
		api.POST("/equipment/:id/replace", h.ReplaceEquipment)

		api.GET("/stats", caching, h.GetStats)

		checklist := api.Group("/locations/:location/checklist")
		checklist.GET("", caching, h.GetChecklist)
		checklist.PUT("", h.SaveChecklist)
		checklist.POST("/items", h.AddChecklistItem)
		checklist.PATCH("/items/:item_id", h.PatchChecklistItem)
		checklist.POST("/items/:item_id/toggle", h.ToggleChecklistItem)
		checklist.DELETE("/items/:item_id", h.DeleteChecklistItem)
		checklist.POST("/reset", h.ResetChecklist)

		// Not cached: the body carries the generation time.
		api.GET("/report", h.GetReport)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
