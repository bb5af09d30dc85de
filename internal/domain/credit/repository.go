package credit

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for credit ledger persistence.
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	Get(ctx context.Context, id string) (*Transaction, error)
	List(ctx context.Context, orgID string) ([]*Transaction, error)

	// Balance sums all transaction amounts for the organization; 0 when
	// the organization has no transactions. Must run inside the same
	// transaction as any subsequent debit to avoid read-then-write races.
	Balance(ctx context.Context, orgID string) (decimal.Decimal, error)
}
