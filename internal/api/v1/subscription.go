package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seatbill/seatbill/internal/api/dto"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/geo"
	"github.com/seatbill/seatbill/internal/logger"
	"github.com/seatbill/seatbill/internal/service"
)

type SubscriptionHandler struct {
	service service.SubscriptionService
	geo     geo.Resolver
	log     *logger.Logger
}

func NewSubscriptionHandler(service service.SubscriptionService, geo geo.Resolver, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, geo: geo, log: log}
}

// PurchaseSubscription buys a monthly block for an organization.
func (h *SubscriptionHandler) PurchaseSubscription(c *gin.Context) {
	var req dto.PurchaseSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	geoInfo := h.geo.Resolve(c.Request.Context(), c.ClientIP())

	resp, err := h.service.PurchaseBlock(c.Request.Context(), &req, geoInfo)
	if err != nil {
		h.log.Error("Failed to purchase subscription", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// PreviewSubscription computes the payment breakdown without persisting.
func (h *SubscriptionHandler) PreviewSubscription(c *gin.Context) {
	var req dto.PreviewSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.PreviewBlockPurchase(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to preview subscription purchase", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// StartTrial provisions a trial subscription.
func (h *SubscriptionHandler) StartTrial(c *gin.Context) {
	var req dto.StartTrialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.StartTrial(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to start trial", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// RenewSubscription schedules the next monthly block at the current seats.
func (h *SubscriptionHandler) RenewSubscription(c *gin.Context) {
	orgID := c.Param("org_id")

	resp, err := h.service.RenewSubscription(c.Request.Context(), orgID)
	if err != nil {
		h.log.Error("Failed to renew subscription", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetCurrentSubscription returns the organization's live snapshot.
func (h *SubscriptionHandler) GetCurrentSubscription(c *gin.Context) {
	orgID := c.Param("org_id")

	resp, err := h.service.GetCurrentSubscription(c.Request.Context(), orgID)
	if err != nil {
		h.log.Error("Failed to get current subscription", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListBlockHistory returns the organization's block ledger, newest first.
func (h *SubscriptionHandler) ListBlockHistory(c *gin.Context) {
	orgID := c.Param("org_id")

	resp, err := h.service.ListBlockHistory(c.Request.Context(), orgID)
	if err != nil {
		h.log.Error("Failed to list block history", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
