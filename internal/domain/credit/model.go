package credit

import (
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
)

// Transaction is one entry in an organization's append-only credit ledger.
// Negative amounts are debits (spend), positive amounts are credits
// (refunds, top-ups). Entries are never mutated or deleted; the
// organization's balance is the running sum.
type Transaction struct {
	ID     string                      `db:"id" json:"id"`
	OrgID  string                      `db:"org_id" json:"org_id"`
	Amount decimal.Decimal             `db:"amount" json:"amount"`
	Type   types.CreditTransactionType `db:"type" json:"type"`

	types.BaseModel
}

func (t *Transaction) TableName() string {
	return "credit_transactions"
}

func (t *Transaction) Validate() error {
	if t.OrgID == "" {
		return ierr.NewError("org_id is required").
			WithHint("Credit transaction must belong to an organization").
			Mark(ierr.ErrValidation)
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if t.Amount.IsZero() {
		return ierr.NewError("credit transaction amount cannot be zero").
			WithHint("A ledger entry must move a non-zero amount").
			Mark(ierr.ErrValidation)
	}
	return nil
}
