package paymentmethod

import (
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
)

// PaymentMethod is an organization's stored charge instrument. The engine
// only resolves the primary method; capturing funds against
// GatewayMethodID is the external charge executor's job.
type PaymentMethod struct {
	ID              string `db:"id" json:"id"`
	OrgID           string `db:"org_id" json:"org_id"`
	Primary         bool   `db:"is_primary" json:"is_primary"`
	CardLast4       string `db:"card_last4" json:"card_last4"`
	GatewayMethodID string `db:"gateway_method_id" json:"gateway_method_id"`

	types.BaseModel
}

func (m *PaymentMethod) TableName() string {
	return "payment_methods"
}

func (m *PaymentMethod) Validate() error {
	if m.OrgID == "" {
		return ierr.NewError("org_id is required").
			WithHint("Payment method must belong to an organization").
			Mark(ierr.ErrValidation)
	}
	if m.GatewayMethodID == "" {
		return ierr.NewError("gateway_method_id is required").
			WithHint("Payment method must carry the gateway handle").
			Mark(ierr.ErrValidation)
	}
	return nil
}
