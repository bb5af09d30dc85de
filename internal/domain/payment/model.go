package payment

import (
	"time"

	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
)

// Payment records a payable subscription transition. It is created once per
// transition and immutable afterwards except for the status/paid-at
// transition driven by the external charge executor.
type Payment struct {
	ID                  string              `db:"id" json:"id"`
	OrgID               string              `db:"org_id" json:"org_id"`
	PeriodStart         time.Time           `db:"period_start" json:"period_start"`
	PeriodEnd           time.Time           `db:"period_end" json:"period_end"`
	PaidAt              *time.Time          `db:"paid_at" json:"paid_at,omitempty"`
	Amount              decimal.Decimal     `db:"amount" json:"amount"`
	PaymentStatus       types.PaymentStatus `db:"payment_status" json:"payment_status"`
	Auto                bool                `db:"auto" json:"auto"`
	Geo                 types.GeoInfo       `db:"geo" json:"geo"`
	CreditTransactionID *string             `db:"credit_transaction_id" json:"credit_transaction_id,omitempty"`
	SubscriptionID      string              `db:"subscription_id" json:"subscription_id"`
	PaymentMethodID     *string             `db:"payment_method_id" json:"payment_method_id,omitempty"`
	ReceiptNumber       *string             `db:"receipt_number" json:"receipt_number,omitempty"`

	types.BaseModel
}

func (p *Payment) TableName() string {
	return "payments"
}

func (p *Payment) Validate() error {
	if p.OrgID == "" {
		return ierr.NewError("org_id is required").
			WithHint("Payment must belong to an organization").
			Mark(ierr.ErrValidation)
	}
	if err := p.PaymentStatus.Validate(); err != nil {
		return err
	}
	if p.Amount.LessThan(decimal.Zero) {
		return ierr.NewError("payment amount cannot be negative").
			WithReportableDetails(map[string]any{
				"amount": p.Amount,
			}).
			Mark(ierr.ErrSystem)
	}
	if p.SubscriptionID == "" {
		return ierr.NewError("subscription_id is required").
			WithHint("Payment must link to a subscription").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsPaid reports whether the payment has settled.
func (p *Payment) IsPaid() bool {
	return p.PaymentStatus == types.PaymentStatusPaid
}

// MarkVoided cancels a payment that never settled. Voided payments must
// not be picked up by the charge executor.
func (p *Payment) MarkVoided() {
	p.PaymentStatus = types.PaymentStatusVoided
}

// MarkPaid stamps the payment as settled at the given time and assigns its
// receipt number.
func (p *Payment) MarkPaid(at time.Time) {
	p.PaymentStatus = types.PaymentStatusPaid
	p.PaidAt = &at
	receipt := at.Format("20060102-") + types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_RECEIPT)
	p.ReceiptNumber = &receipt
}
