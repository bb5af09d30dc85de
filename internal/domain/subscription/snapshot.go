package subscription

import (
	"time"

	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
)

// CurrentSnapshot is the derived view of an organization's live
// subscription state: the head (latest alive) block plus its subscription.
// It is recomputed from the ledger of blocks inside each transaction and is
// never persisted.
type CurrentSnapshot struct {
	OrgID          string                      `db:"org_id" json:"org_id"`
	SubscriptionID string                      `db:"subscription_id" json:"subscription_id"`
	HeadBlockID    string                      `db:"head_block_id" json:"head_block_id"`
	Type           types.SubscriptionBlockType `db:"type" json:"type"`
	Seats          int64                       `db:"seats" json:"seats"`
	OccupiedSeats  int64                       `db:"occupied_seats" json:"occupied_seats"`
	PricePerSeat   decimal.Decimal             `db:"price_per_seat" json:"price_per_seat"`
	PromotionCode  *string                     `db:"promotion_code" json:"promotion_code,omitempty"`
	StartedAt      time.Time                   `db:"started_at" json:"started_at"`
	EndingAt       time.Time                   `db:"ending_at" json:"ending_at"`
}

// HasAliveBlock reports whether the snapshot points at a block that has not
// fully elapsed as of now.
func (s *CurrentSnapshot) HasAliveBlock(now time.Time) bool {
	if s == nil || s.HeadBlockID == "" {
		return false
	}
	endOfDay := time.Date(s.EndingAt.Year(), s.EndingAt.Month(), s.EndingAt.Day(), 23, 59, 59, 0, time.UTC)
	return !endOfDay.Before(now)
}
