package promotion

import (
	"time"

	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
)

// Code is a promotion code granting a percentage discount. A code with a
// nil OrgID is global; otherwise it can only be used by the owning
// organization. Codes are read-only at calculation time.
type Code struct {
	ID            string          `db:"id" json:"id"`
	Code          string          `db:"code" json:"code"`
	OrgID         *string         `db:"org_id" json:"org_id,omitempty"`
	PercentageOff decimal.Decimal `db:"percentage_off" json:"percentage_off"`
	EndingAt      time.Time       `db:"ending_at" json:"ending_at"`

	types.BaseModel
}

func (c *Code) TableName() string {
	return "promotion_codes"
}

// UsableBy reports whether the code is valid for orgID as of asOf: not
// expired, and either global or owned by the requesting organization.
func (c *Code) UsableBy(orgID string, asOf time.Time) bool {
	if c.EndingAt.Before(asOf) {
		return false
	}
	if c.OrgID != nil && *c.OrgID != orgID {
		return false
	}
	return true
}

func (c *Code) Validate() error {
	if c.Code == "" {
		return ierr.NewError("code is required").
			WithHint("Promotion code string cannot be empty").
			Mark(ierr.ErrValidation)
	}
	if c.PercentageOff.LessThanOrEqual(decimal.Zero) || c.PercentageOff.GreaterThan(decimal.NewFromInt(1)) {
		return ierr.NewError("percentage off must be in (0, 1]").
			WithHint("Promotion discount must be greater than 0 and at most 1").
			WithReportableDetails(map[string]any{
				"percentage_off": c.PercentageOff,
			}).
			Mark(ierr.ErrValidation)
	}
	if c.EndingAt.IsZero() {
		return ierr.NewError("ending_at is required").
			WithHint("Promotion code must carry an expiry").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DiscountInfo is the result of resolving a promotion code. Valid is false
// for missing, unknown, expired, or foreign codes; resolution misses are
// not errors so callers can flag "invalid code" without failing the whole
// calculation.
type DiscountInfo struct {
	Percentage decimal.Decimal `json:"percentage"`
	Valid      bool            `json:"valid"`
}
