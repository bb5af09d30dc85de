package subscription

import (
	"time"

	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
)

// Subscription represents one organization-period relationship. It is
// created by billing transitions and mutated only by them.
type Subscription struct {
	ID        string                      `db:"id" json:"id"`
	OrgID     string                      `db:"org_id" json:"org_id"`
	Type      types.SubscriptionBlockType `db:"type" json:"type"`
	StartDate time.Time                   `db:"start_date" json:"start_date"`
	EndDate   time.Time                   `db:"end_date" json:"end_date"`
	Recurring bool                        `db:"recurring" json:"recurring"`
	SubStatus types.SubscriptionStatus    `db:"sub_status" json:"sub_status"`

	types.BaseModel
}

func (s *Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) Validate() error {
	if s.OrgID == "" {
		return ierr.NewError("org_id is required").
			WithHint("Subscription must belong to an organization").
			Mark(ierr.ErrValidation)
	}
	if err := s.Type.Validate(); err != nil {
		return err
	}
	if err := s.SubStatus.Validate(); err != nil {
		return err
	}
	if s.EndDate.Before(s.StartDate) {
		return ierr.NewError("subscription end date cannot be before start date").
			WithReportableDetails(map[string]any{
				"start_date": s.StartDate,
				"end_date":   s.EndDate,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Block is an immutable-once-paid unit of subscription time with its own
// seat count and price. EndingAt is inclusive: the block covers that day.
type Block struct {
	ID             string                         `db:"id" json:"id"`
	OrgID          string                         `db:"org_id" json:"org_id"`
	SubscriptionID string                         `db:"subscription_id" json:"subscription_id"`
	Type           types.SubscriptionBlockType    `db:"type" json:"type"`
	Seats          int64                          `db:"seats" json:"seats"`
	PricePerSeat   decimal.Decimal                `db:"price_per_seat" json:"price_per_seat"`
	PromotionCode  *string                        `db:"promotion_code" json:"promotion_code,omitempty"`
	StartedAt      time.Time                      `db:"started_at" json:"started_at"`
	EndingAt       time.Time                      `db:"ending_at" json:"ending_at"`
	StartingMode   types.SubscriptionStartingMode `db:"starting_mode" json:"starting_mode"`
	PaymentID      *string                        `db:"payment_id" json:"payment_id,omitempty"`

	types.BaseModel
}

func (b *Block) TableName() string {
	return "subscription_blocks"
}

// IsPaid reports whether a payment has been attached to this block. A paid
// block must never be re-paid or refunded as if unpaid.
func (b *Block) IsPaid() bool {
	return b.PaymentID != nil && *b.PaymentID != ""
}

// PromotionCodeValue returns the stored promotion code or "".
func (b *Block) PromotionCodeValue() string {
	if b.PromotionCode == nil {
		return ""
	}
	return *b.PromotionCode
}

func (b *Block) Validate() error {
	if b.OrgID == "" {
		return ierr.NewError("org_id is required").
			WithHint("Block must belong to an organization").
			Mark(ierr.ErrValidation)
	}
	if err := b.Type.Validate(); err != nil {
		return err
	}
	if err := b.StartingMode.Validate(); err != nil {
		return err
	}
	if b.Seats <= 0 {
		return ierr.NewError("seats must be greater than 0").
			WithHint("Seats must be a positive integer").
			WithReportableDetails(map[string]any{
				"seats": b.Seats,
			}).
			Mark(ierr.ErrValidation)
	}
	if b.EndingAt.Before(b.StartedAt) {
		return ierr.NewError("block ending date cannot be before start date").
			WithReportableDetails(map[string]any{
				"started_at": b.StartedAt,
				"ending_at":  b.EndingAt,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
