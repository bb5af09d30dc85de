package dto

import (
	"time"

	"github.com/seatbill/seatbill/internal/domain/payment"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
)

// PaymentResponse mirrors a payment row.
type PaymentResponse struct {
	ID                  string              `json:"id"`
	OrgID               string              `json:"org_id"`
	SubscriptionID      string              `json:"subscription_id"`
	PeriodStart         time.Time           `json:"period_start"`
	PeriodEnd           time.Time           `json:"period_end"`
	PaidAt              *time.Time          `json:"paid_at,omitempty"`
	Amount              decimal.Decimal     `json:"amount"`
	PaymentStatus       types.PaymentStatus `json:"payment_status"`
	Auto                bool                `json:"auto"`
	Geo                 types.GeoInfo       `json:"geo"`
	CreditTransactionID *string             `json:"credit_transaction_id,omitempty"`
	PaymentMethodID     *string             `json:"payment_method_id,omitempty"`
	ReceiptNumber       *string             `json:"receipt_number,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
}

func NewPaymentResponse(p *payment.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}
	return &PaymentResponse{
		ID:                  p.ID,
		OrgID:               p.OrgID,
		SubscriptionID:      p.SubscriptionID,
		PeriodStart:         p.PeriodStart,
		PeriodEnd:           p.PeriodEnd,
		PaidAt:              p.PaidAt,
		Amount:              p.Amount,
		PaymentStatus:       p.PaymentStatus,
		Auto:                p.Auto,
		Geo:                 p.Geo,
		CreditTransactionID: p.CreditTransactionID,
		PaymentMethodID:     p.PaymentMethodID,
		ReceiptNumber:       p.ReceiptNumber,
		CreatedAt:           p.CreatedAt,
	}
}

// PurchaseSubscriptionResponse is the outcome of a purchase: the created
// payment with the breakdown that produced it.
type PurchaseSubscriptionResponse struct {
	Payment   *PaymentResponse `json:"payment"`
	Breakdown PaymentBreakdown `json:"breakdown"`
	BlockID   string           `json:"block_id"`
}

// TopUpCreditRequest adds credit to an organization's ledger.
type TopUpCreditRequest struct {
	OrgID  string          `json:"org_id" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// CreditBalanceResponse reports the current ledger balance.
type CreditBalanceResponse struct {
	OrgID   string          `json:"org_id"`
	Balance decimal.Decimal `json:"balance"`
}
