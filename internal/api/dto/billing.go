package dto

import (
	"github.com/shopspring/decimal"
)

// PaymentBreakdown is the full payment calculation for a prospective
// subscription block. The same structure is returned for true purchases
// and for pure previews; the caller decides whether to persist.
type PaymentBreakdown struct {
	SeatPrice                   decimal.Decimal `json:"seat_price"`
	Refundable                  decimal.Decimal `json:"refundable"`
	FullPriceBeforeDiscount     decimal.Decimal `json:"full_price_before_discount"`
	FullPriceAfterDiscount      decimal.Decimal `json:"full_price_after_discount"`
	IsValidPromotionCode        bool            `json:"is_valid_promotion_code"`
	PromotionDiscountPercentage decimal.Decimal `json:"promotion_discount_percentage"`
	CreditBalanceBefore         decimal.Decimal `json:"credit_balance_before"`
	CreditBalanceAfter          decimal.Decimal `json:"credit_balance_after"`
	Deduction                   decimal.Decimal `json:"deduction"`
	Payable                     decimal.Decimal `json:"payable"`
	PaymentMethodID             *string         `json:"payment_method_id,omitempty"`
	GatewayMethodID             *string         `json:"gateway_method_id,omitempty"`
}
