package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"equipment-tracker-backend/internal/model"
	"equipment-tracker-backend/internal/parse"
	"equipment-tracker-backend/internal/query"
)

// draftRequest is the body of the add, edit and replace forms.
type draftRequest struct {
	Name         string `json:"name"`
	Model        string `json:"model"`
	SerialNumber string `json:"serialNumber"`
	Category     string `json:"category"`
	Location     string `json:"location"`
	Notes        string `json:"notes"`
}

// draft normalises the category spelling; validation is left to the core.
func (r draftRequest) draft() model.Draft {
	category := model.Category(r.Category)
	if c, err := parse.Category(r.Category); err == nil {
		category = c
	}
	return model.Draft{
		Name:         r.Name,
		Model:        r.Model,
		SerialNumber: r.SerialNumber,
		Category:     category,
		Location:     r.Location,
		Notes:        r.Notes,
	}
}

type inspectionRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

type replaceRequest struct {
	draftRequest
	Confirm bool `json:"confirm"`
}

var errReplaceNotConfirmed = fmt.Errorf("%w: replacement must be confirmed", model.ErrInvalid)

// GetMeta returns the fixed enumerations and configured locations.
func (h *Handler) GetMeta(c *gin.Context) {
	statuses := make([]gin.H, 0, len(model.Statuses()))
	for _, s := range model.Statuses() {
		statuses = append(statuses, gin.H{"value": s, "label": s.Label()})
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": model.Categories(),
		"statuses":   statuses,
		"locations":  h.repo.Locations(),
	})
}

// ListEquipment handles GET /api/equipment with optional filters.
func (h *Handler) ListEquipment(c *gin.Context) {
	var criteria query.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		badRequest(c, err)
		return
	}
	if err := normaliseCriteria(&criteria); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, query.Filter(h.repo.All(), criteria))
}

func normaliseCriteria(criteria *query.Criteria) error {
	if criteria.Status != "" && criteria.Status != query.All {
		s, err := parse.Status(criteria.Status)
		if err != nil {
			return err
		}
		criteria.Status = string(s)
	}
	if criteria.Category != "" && criteria.Category != query.All {
		cat, err := parse.Category(criteria.Category)
		if err != nil {
			return err
		}
		criteria.Category = string(cat)
	}
	return nil
}

// GetEquipment handles GET /api/equipment/:id.
func (h *Handler) GetEquipment(c *gin.Context) {
	id, err := parse.ID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	e, err := h.repo.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// CreateEquipment handles POST /api/equipment.
func (h *Handler) CreateEquipment(c *gin.Context) {
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := h.repo.Add(req.draft())
	if err != nil {
		writeError(c, err)
		return
	}
	h.observeEquipment()
	c.JSON(http.StatusCreated, e)
}

// EditEquipment handles PUT /api/equipment/:id. Status and lastChecked are kept.
func (h *Handler) EditEquipment(c *gin.Context) {
	id, err := parse.ID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := h.repo.Edit(id, req.draft())
	if err != nil {
		writeError(c, err)
		return
	}
	h.observeEquipment()
	c.JSON(http.StatusOK, e)
}

// DeleteEquipment handles DELETE /api/equipment/:id.
func (h *Handler) DeleteEquipment(c *gin.Context) {
	id, err := parse.ID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.repo.Delete(id); err != nil {
		writeError(c, err)
		return
	}
	h.observeEquipment()
	c.Status(http.StatusNoContent)
}

// InspectEquipment handles POST /api/equipment/:id/inspection.
func (h *Handler) InspectEquipment(c *gin.Context) {
	id, err := parse.ID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	var req inspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	status, err := parse.Status(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	e, err := h.engine.Inspect(id, status, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	h.observeEquipment()
	c.JSON(http.StatusOK, e)
}

// ReplaceEquipment handles POST /api/equipment/:id/replace.
// The body must carry confirm=true; replacement resets the status history.
func (h *Handler) ReplaceEquipment(c *gin.Context) {
	id, err := parse.ID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	var req replaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.Confirm {
		writeError(c, errReplaceNotConfirmed)
		return
	}
	e, err := h.engine.Replace(id, req.draft())
	if err != nil {
		writeError(c, err)
		return
	}
	h.observeEquipment()
	c.JSON(http.StatusOK, e)
}

// GetStats handles GET /api/stats?location=.
func (h *Handler) GetStats(c *gin.Context) {
	list := h.repo.All()
	location := c.Query("location")
	if location != "" && location != query.All {
		list = query.ForLocation(list, location)
	}
	c.JSON(http.StatusOK, gin.H{
		"byStatus":   query.CountsByStatus(list),
		"byCategory": query.CountsByCategory(list),
	})
}
