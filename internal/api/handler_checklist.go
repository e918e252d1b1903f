package api

import (
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"equipment-tracker-backend/internal/model"
	"equipment-tracker-backend/internal/report"
)

// checklistResponse is a maintenance record with its computed progress.
type checklistResponse struct {
	model.MaintenanceRecord
	Progress report.Progress `json:"progress"`
}

func newChecklistResponse(r model.MaintenanceRecord) checklistResponse {
	return checklistResponse{MaintenanceRecord: r, Progress: report.Completion(r.ChecklistItems)}
}

type saveChecklistRequest struct {
	ChecklistItems []model.ChecklistItem `json:"checklistItems"`
	Notes          string                `json:"notes"`
}

type addItemRequest struct {
	Label string `json:"label" binding:"required"`
}

type patchItemRequest struct {
	Completed *bool   `json:"completed"`
	Label     *string `json:"label"`
}

// checklistLocation returns the :location param, aborting when it is not a configured site.
func (h *Handler) checklistLocation(c *gin.Context) (string, bool) {
	location := c.Param("location")
	locations := h.repo.Locations()
	if len(locations) > 0 && !slices.Contains(locations, location) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown location"})
		return "", false
	}
	return location, true
}

// GetChecklist returns the stored record or the default checklist.
func (h *Handler) GetChecklist(c *gin.Context) {
	location, ok := h.checklistLocation(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newChecklistResponse(h.checklists.GetOrDefault(c.Request.Context(), location)))
}

// SaveChecklist replaces the checklist and notes for a location.
func (h *Handler) SaveChecklist(c *gin.Context) {
	location, ok := h.checklistLocation(c)
	if !ok {
		return
	}
	var req saveChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	record, err := h.checklists.Save(c.Request.Context(), location, req.ChecklistItems, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChecklistResponse(record))
}

// AddChecklistItem appends a new unchecked item.
func (h *Handler) AddChecklistItem(c *gin.Context) {
	location, ok := h.checklistLocation(c)
	if !ok {
		return
	}
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	record, item, err := h.checklists.AddItem(c.Request.Context(), location, req.Label)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"record": newChecklistResponse(record), "item": item})
}

// PatchChecklistItem sets the completion flag and/or label of an item.
func (h *Handler) PatchChecklistItem(c *gin.Context) {
	location, ok := h.checklistLocation(c)
	if !ok {
		return
	}
	var req patchItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Completed == nil && req.Label == nil {
		badRequest(c, errors.New("completed or label is required"))
		return
	}

	ctx := c.Request.Context()
	itemID := c.Param("item_id")
	var (
		record model.MaintenanceRecord
		err    error
	)
	if req.Label != nil {
		if record, err = h.checklists.RenameItem(ctx, location, itemID, *req.Label); err != nil {
			writeError(c, err)
			return
		}
	}
	if req.Completed != nil {
		if record, err = h.checklists.SetItemCompleted(ctx, location, itemID, *req.Completed); err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, newChecklistResponse(record))
}

// ToggleChecklistItem flips the completion flag of an item.
func (h *Handler) ToggleChecklistItem(c *gin.Context) {
	location, ok := h.checklistLocation(c)
	if !ok {
		return
	}
	record, err := h.checklists.ToggleItem(c.Request.Context(), location, c.Param("item_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChecklistResponse(record))
}

// DeleteChecklistItem removes an item.
func (h *Handler) DeleteChecklistItem(c *gin.Context) {
	location, ok := h.checklistLocation(c)
	if !ok {
		return
	}
	record, err := h.checklists.DeleteItem(c.Request.Context(), location, c.Param("item_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChecklistResponse(record))
}

// ResetChecklist restores the default items, keeping the notes.
func (h *Handler) ResetChecklist(c *gin.Context) {
	location, ok := h.checklistLocation(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newChecklistResponse(h.checklists.Reset(c.Request.Context(), location)))
}
