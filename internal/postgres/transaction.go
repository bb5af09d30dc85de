package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
)

// TxKey is the context key type for storing the active transaction
type TxKey struct{}

// Tx carries the active sqlx transaction plus a unique ID for tracing.
type Tx struct {
	Tx Querier
	ID string
}

// GetTx retrieves a transaction from the context if it exists
func GetTx(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(TxKey{}).(*Tx)
	return tx, ok
}

// WithTx executes fn inside a database transaction at read-committed
// isolation. A nested call reuses the transaction already in the context,
// so the outermost caller owns commit and rollback. Any error returned by
// fn rolls the whole transaction back; nothing fn wrote is observable by
// concurrent readers.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := GetTx(ctx); ok {
		return fn(ctx)
	}

	sqlxTx, err := db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to begin transaction").
			Mark(ierr.ErrDatabase)
	}

	tx := &Tx{Tx: sqlxTx, ID: types.GenerateUUID()}
	txCtx := context.WithValue(ctx, TxKey{}, tx)

	db.logger.Debugw("starting transaction", "tx_id", tx.ID)

	defer func() {
		if r := recover(); r != nil {
			db.logger.Errorw("rolling back transaction due to panic",
				"tx_id", tx.ID,
				"panic", r,
			)
			_ = sqlxTx.Rollback()
			panic(r)
		}
	}()

	if err := fn(txCtx); err != nil {
		db.logger.Errorw("rolling back transaction",
			"tx_id", tx.ID,
			"error", err,
		)
		if rbErr := sqlxTx.Rollback(); rbErr != nil {
			return ierr.WithError(err).
				WithHintf("failed to rollback transaction: %v", rbErr).
				Mark(ierr.ErrDatabase)
		}
		return err
	}

	if err := sqlxTx.Commit(); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to commit transaction").
			Mark(ierr.ErrDatabase)
	}

	db.logger.Debugw("committed transaction", "tx_id", tx.ID)
	return nil
}

// IsRetryableTxError reports whether the error is a serialization failure or
// deadlock that is safe to retry, because the failed transaction committed
// nothing.
func IsRetryableTxError(err error) bool {
	var pqErr *pq.Error
	if !ierr.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "40001", "40P01": // serialization_failure, deadlock_detected
		return true
	}
	return false
}
