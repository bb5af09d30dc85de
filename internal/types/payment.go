package types

import (
	"database/sql/driver"
	"encoding/json"

	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/samber/lo"
)

// PaymentStatus is the lifecycle status of a payment record.
// Downstream reporting depends on these exact values.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
	// PaymentStatusVoided marks a pending payment whose block was
	// cancelled before anything was collected for it.
	PaymentStatusVoided PaymentStatus = "voided"
)

var PaymentStatusValues = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusVoided,
}

func (s PaymentStatus) Validate() error {
	if !lo.Contains(PaymentStatusValues, s) {
		return ierr.NewError("invalid payment status").
			WithHint("Payment status must be pending, paid, failed, or voided").
			WithReportableDetails(map[string]any{
				"allowed_values": PaymentStatusValues,
				"provided_value": s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (s PaymentStatus) String() string {
	return string(s)
}

// CreditTransactionType tags ledger entries. The sign convention is carried
// by the amount itself (negative = debit); the type records why the entry
// exists.
type CreditTransactionType string

const (
	CreditTransactionTypeUserPay CreditTransactionType = "user-pay"
	CreditTransactionTypeRefund  CreditTransactionType = "refund"
	CreditTransactionTypeTopUp   CreditTransactionType = "top-up"
)

var CreditTransactionTypeValues = []CreditTransactionType{
	CreditTransactionTypeUserPay,
	CreditTransactionTypeRefund,
	CreditTransactionTypeTopUp,
}

func (t CreditTransactionType) Validate() error {
	if !lo.Contains(CreditTransactionTypeValues, t) {
		return ierr.NewError("invalid credit transaction type").
			WithHint("Credit transaction type must be user-pay, refund, or top-up").
			WithReportableDetails(map[string]any{
				"allowed_values": CreditTransactionTypeValues,
				"provided_value": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (t CreditTransactionType) String() string {
	return string(t)
}

// GeoInfo captures where a payment was initiated from. Stored as jsonb.
type GeoInfo struct {
	IP          string `json:"ip,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Region      string `json:"region,omitempty"`
	City        string `json:"city,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

func (g GeoInfo) Value() (driver.Value, error) {
	return json.Marshal(g)
}

func (g *GeoInfo) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return ierr.NewError("geo info must be stored as jsonb").
			Mark(ierr.ErrDatabase)
	}
	return json.Unmarshal(b, g)
}
