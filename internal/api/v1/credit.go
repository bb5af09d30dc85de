package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seatbill/seatbill/internal/api/dto"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/logger"
	"github.com/seatbill/seatbill/internal/service"
)

type CreditHandler struct {
	service service.CreditService
	log     *logger.Logger
}

func NewCreditHandler(service service.CreditService, log *logger.Logger) *CreditHandler {
	return &CreditHandler{service: service, log: log}
}

// GetBalance returns the organization's credit balance.
func (h *CreditHandler) GetBalance(c *gin.Context) {
	orgID := c.Param("org_id")

	balance, err := h.service.Balance(c.Request.Context(), orgID)
	if err != nil {
		h.log.Error("Failed to get credit balance", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.CreditBalanceResponse{
		OrgID:   orgID,
		Balance: balance,
	})
}

// TopUp adds credit to the organization's ledger.
func (h *CreditHandler) TopUp(c *gin.Context) {
	var req dto.TopUpCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	txn, err := h.service.TopUp(c.Request.Context(), req.OrgID, req.Amount)
	if err != nil {
		h.log.Error("Failed to top up credit", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, txn)
}

// ListTransactions returns the organization's ledger entries, newest first.
func (h *CreditHandler) ListTransactions(c *gin.Context) {
	orgID := c.Param("org_id")

	txns, err := h.service.List(c.Request.Context(), orgID)
	if err != nil {
		h.log.Error("Failed to list credit transactions", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, txns)
}
