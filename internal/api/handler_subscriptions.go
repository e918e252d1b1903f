package api

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"equipment-tracker-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint  string   `json:"endpoint" binding:"required"`
	P256DH    string   `json:"p256dh" binding:"required"`
	Auth      string   `json:"auth" binding:"required"`
	Locations []string `json:"locations"`
}

func (h *Handler) requireDB(c *gin.Context) bool {
	if h.db == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "subscriptions are not available"})
		return false
	}
	return true
}

// PutSubscription handles the creation or replacement of a subscription.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	known := h.repo.Locations()
	for _, loc := range req.Locations {
		if len(known) > 0 && !slices.Contains(known, loc) {
			writeError(c, fmt.Errorf("%w: unknown location %q", model.ErrInvalid, loc))
			return
		}
	}
	if !h.requireDB(c) {
		return
	}

	subscription := model.PushSubscription{
		Endpoint:  req.Endpoint,
		P256DH:    req.P256DH,
		Auth:      req.Auth,
		Locations: req.Locations,
	}
	err := h.db.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "locations"}),
	}).Create(&subscription).Error
	if err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !h.requireDB(c) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(&model.PushSubscription{Endpoint: req.Endpoint}).Error; err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSubscription returns the locations a subscription is alerted for.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}
	if !h.requireDB(c) {
		return
	}

	var subscription model.PushSubscription
	if err := h.db.WithContext(c.Request.Context()).First(&subscription, "endpoint = ?", endpoint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		} else {
			writeError(c, err)
		}
		return
	}

	locations := subscription.Locations
	if locations == nil {
		locations = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

// GetVAPIDPublicKey returns the VAPID public key to the client.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vapid keys are not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
