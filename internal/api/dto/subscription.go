package dto

import (
	"time"

	"github.com/seatbill/seatbill/internal/domain/subscription"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
)

// PurchaseSubscriptionRequest represents a request to purchase a monthly
// subscription block for an organization.
type PurchaseSubscriptionRequest struct {
	OrgID         string                         `json:"org_id" binding:"required"`
	Seats         int64                          `json:"seats" binding:"required"`
	PromotionCode string                         `json:"promotion_code,omitempty"`
	StartingMode  types.SubscriptionStartingMode `json:"starting_mode,omitempty"`
}

func (r *PurchaseSubscriptionRequest) Validate() error {
	if r.OrgID == "" {
		return ierr.NewError("org_id is required").
			WithHint("Organization ID is required").
			Mark(ierr.ErrValidation)
	}
	if r.Seats <= 0 {
		return ierr.NewError("seats must be greater than 0").
			WithHint("Seats must be a positive integer").
			WithReportableDetails(map[string]any{
				"seats": r.Seats,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.StartingMode == "" {
		r.StartingMode = types.StartingModeImmediate
	}
	return r.StartingMode.Validate()
}

// PreviewSubscriptionRequest represents a request to preview the payment
// breakdown of a prospective purchase without writing anything.
type PreviewSubscriptionRequest struct {
	OrgID         string `json:"org_id" binding:"required"`
	Seats         int64  `json:"seats" binding:"required"`
	PromotionCode string `json:"promotion_code,omitempty"`
}

func (r *PreviewSubscriptionRequest) Validate() error {
	if r.OrgID == "" {
		return ierr.NewError("org_id is required").
			WithHint("Organization ID is required").
			Mark(ierr.ErrValidation)
	}
	if r.Seats <= 0 {
		return ierr.NewError("seats must be greater than 0").
			WithHint("Seats must be a positive integer").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// StartTrialRequest provisions a trial subscription for a new organization.
type StartTrialRequest struct {
	OrgID string `json:"org_id" binding:"required"`
	Seats int64  `json:"seats" binding:"required"`
}

func (r *StartTrialRequest) Validate() error {
	if r.OrgID == "" {
		return ierr.NewError("org_id is required").
			WithHint("Organization ID is required").
			Mark(ierr.ErrValidation)
	}
	if r.Seats <= 0 {
		return ierr.NewError("seats must be greater than 0").
			WithHint("Seats must be a positive integer").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PurchasePreviewResponse is the preview payload: the payment breakdown
// plus the seat bounds the UI needs to render the seat picker.
type PurchasePreviewResponse struct {
	PaymentBreakdown
	MinSeats    int64 `json:"min_seats"`
	SeatsBefore int64 `json:"seats_before"`
	SeatsAfter  int64 `json:"seats_after"`
}

// CurrentSubscriptionResponse mirrors the derived current-subscription
// snapshot for an organization.
type CurrentSubscriptionResponse struct {
	OrgID          string                      `json:"org_id"`
	SubscriptionID string                      `json:"subscription_id"`
	HeadBlockID    string                      `json:"head_block_id"`
	Type           types.SubscriptionBlockType `json:"type"`
	Seats          int64                       `json:"seats"`
	OccupiedSeats  int64                       `json:"occupied_seats"`
	PricePerSeat   decimal.Decimal             `json:"price_per_seat"`
	PromotionCode  *string                     `json:"promotion_code,omitempty"`
	StartedAt      time.Time                   `json:"started_at"`
	EndingAt       time.Time                   `json:"ending_at"`
}

func NewCurrentSubscriptionResponse(snap *subscription.CurrentSnapshot) *CurrentSubscriptionResponse {
	if snap == nil {
		return nil
	}
	return &CurrentSubscriptionResponse{
		OrgID:          snap.OrgID,
		SubscriptionID: snap.SubscriptionID,
		HeadBlockID:    snap.HeadBlockID,
		Type:           snap.Type,
		Seats:          snap.Seats,
		OccupiedSeats:  snap.OccupiedSeats,
		PricePerSeat:   snap.PricePerSeat,
		PromotionCode:  snap.PromotionCode,
		StartedAt:      snap.StartedAt,
		EndingAt:       snap.EndingAt,
	}
}

// SubscriptionResponse mirrors a subscription row.
type SubscriptionResponse struct {
	ID        string                      `json:"id"`
	OrgID     string                      `json:"org_id"`
	Type      types.SubscriptionBlockType `json:"type"`
	StartDate time.Time                   `json:"start_date"`
	EndDate   time.Time                   `json:"end_date"`
	Recurring bool                        `json:"recurring"`
	SubStatus types.SubscriptionStatus    `json:"sub_status"`
}

func NewSubscriptionResponse(sub *subscription.Subscription) *SubscriptionResponse {
	if sub == nil {
		return nil
	}
	return &SubscriptionResponse{
		ID:        sub.ID,
		OrgID:     sub.OrgID,
		Type:      sub.Type,
		StartDate: sub.StartDate,
		EndDate:   sub.EndDate,
		Recurring: sub.Recurring,
		SubStatus: sub.SubStatus,
	}
}

// BlockHistoryItem is one row of an organization's subscription history,
// ordered by start date, with the payment attached when the block was paid.
type BlockHistoryItem struct {
	ID            string                         `json:"id"`
	Type          types.SubscriptionBlockType    `json:"type"`
	Seats         int64                          `json:"seats"`
	PricePerSeat  decimal.Decimal                `json:"price_per_seat"`
	PromotionCode *string                        `json:"promotion_code,omitempty"`
	StartedAt     time.Time                      `json:"started_at"`
	EndingAt      time.Time                      `json:"ending_at"`
	StartingMode  types.SubscriptionStartingMode `json:"starting_mode"`
	Payment       *PaymentResponse               `json:"payment,omitempty"`
}

func NewBlockHistoryItem(b *subscription.Block, p *PaymentResponse) *BlockHistoryItem {
	return &BlockHistoryItem{
		ID:            b.ID,
		Type:          b.Type,
		Seats:         b.Seats,
		PricePerSeat:  b.PricePerSeat,
		PromotionCode: b.PromotionCode,
		StartedAt:     b.StartedAt,
		EndingAt:      b.EndingAt,
		StartingMode:  b.StartingMode,
		Payment:       p,
	}
}
