package testutil

import (
	"context"

	"github.com/seatbill/seatbill/internal/logger"
	"github.com/seatbill/seatbill/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

// txSnapshotter captures and restores a store's full state so a failed
// transaction leaves no partial writes behind.
type txSnapshotter interface {
	TxSnapshot() any
	TxRestore(snapshot any)
}

// MockPostgresClient satisfies postgres.IClient without a real database.
// WithTx snapshots every registered store before running the closure and
// restores them all on error, mirroring rollback semantics.
type MockPostgresClient struct {
	logger *logger.Logger
	stores []txSnapshotter
}

func NewMockPostgresClient(logger *logger.Logger, stores ...txSnapshotter) postgres.IClient {
	return &MockPostgresClient{
		logger: logger,
		stores: stores,
	}
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshots := make([]any, len(c.stores))
	for i, store := range c.stores {
		snapshots[i] = store.TxSnapshot()
	}
	if err := fn(ctx); err != nil {
		for i, store := range c.stores {
			store.TxRestore(snapshots[i])
		}
		return err
	}
	return nil
}
