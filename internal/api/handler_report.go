package api

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"equipment-tracker-backend/internal/model"
)

// GetReport renders the report for the requested locations, defaulting to every site.
// Unknown locations are rejected.
func (h *Handler) GetReport(c *gin.Context) {
	known := h.repo.Locations()
	locations := c.QueryArray("location")
	if len(locations) == 0 {
		locations = known
	}
	for _, loc := range locations {
		if !slices.Contains(known, loc) {
			writeError(c, fmt.Errorf("%w: unknown location %q", model.ErrInvalid, loc))
			return
		}
	}
	msg := h.reports.Compose(c.Request.Context(), h.repo.All(), locations)
	if h.metrics != nil {
		h.metrics.ReportGenerated()
	}
	if c.Query("format") == "text" {
		c.Header("X-Report-Subject", msg.Subject)
		c.String(http.StatusOK, msg.Body)
		return
	}
	c.JSON(http.StatusOK, msg)
}
