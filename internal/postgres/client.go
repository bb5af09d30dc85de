package postgres

import "context"

// IClient is the transaction-control surface services depend on. The real
// DB implements it; tests substitute a lightweight client.
type IClient interface {
	// WithTx wraps the given function in a transaction
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ IClient = (*DB)(nil)
