package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"equipment-tracker-backend/internal/checklist"
	"equipment-tracker-backend/internal/equipment"
	"equipment-tracker-backend/internal/inspection"
	"equipment-tracker-backend/internal/metrics"
	"equipment-tracker-backend/internal/model"
	"equipment-tracker-backend/internal/report"
)

// Services are the core components the handlers delegate to.
// Metrics, DB and Webpush may be nil.
type Services struct {
	Repository *equipment.Repository
	Engine     *inspection.Engine
	Checklists *checklist.Store
	Reports    *report.Generator
	Metrics    *metrics.Metrics
	DB         *gorm.DB
	Webpush    *webpush.Options
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	repo       *equipment.Repository
	engine     *inspection.Engine
	checklists *checklist.Store
	reports    *report.Generator
	metrics    *metrics.Metrics
	db         *gorm.DB
	webpush    *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s Services) *Handler {
	h := &Handler{
		repo:       s.Repository,
		engine:     s.Engine,
		checklists: s.Checklists,
		reports:    s.Reports,
		metrics:    s.Metrics,
		db:         s.DB,
		webpush:    s.Webpush,
	}
	h.observeEquipment()
	return h
}

// observeEquipment refreshes the status gauges after a mutation.
func (h *Handler) observeEquipment() {
	if h.metrics == nil || h.repo == nil {
		return
	}
	h.metrics.ObserveEquipment(h.repo.All(), h.repo.Locations())
}

// writeError maps core errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalid):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, equipment.ErrNotFound), errors.Is(err, checklist.ErrItemNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
