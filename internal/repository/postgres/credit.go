package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/seatbill/seatbill/internal/domain/credit"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/logger"
	"github.com/seatbill/seatbill/internal/postgres"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
)

type creditRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCreditRepository(db *postgres.DB, logger *logger.Logger) credit.Repository {
	return &creditRepository{
		db:     db,
		logger: logger,
	}
}

func (r *creditRepository) Create(ctx context.Context, txn *credit.Transaction) error {
	query := `
		INSERT INTO credit_transactions (
			id, org_id, amount, type,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :org_id, :amount, :type,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, txn); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create credit transaction").
			WithReportableDetails(map[string]any{
				"transaction_id": txn.ID,
				"org_id":         txn.OrgID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *creditRepository) Get(ctx context.Context, id string) (*credit.Transaction, error) {
	query := `
		SELECT * FROM credit_transactions
		WHERE id = $1 AND status = $2`

	var txn credit.Transaction
	err := r.db.GetQuerier(ctx).GetContext(ctx, &txn, query, id, types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewErrorf("credit transaction %s not found", id).
				WithHint("Credit transaction not found").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get credit transaction").
			WithReportableDetails(map[string]any{
				"transaction_id": id,
			}).
			Mark(ierr.ErrDatabase)
	}
	return &txn, nil
}

func (r *creditRepository) List(ctx context.Context, orgID string) ([]*credit.Transaction, error) {
	query := `
		SELECT * FROM credit_transactions
		WHERE org_id = $1 AND status = $2
		ORDER BY created_at DESC`

	txns := make([]*credit.Transaction, 0)
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &txns, query, orgID, types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list credit transactions").
			WithReportableDetails(map[string]any{
				"org_id": orgID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return txns, nil
}

func (r *creditRepository) Balance(ctx context.Context, orgID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM credit_transactions
		WHERE org_id = $1 AND status = $2`

	var balance decimal.Decimal
	err := r.db.GetQuerier(ctx).GetContext(ctx, &balance, query, orgID, types.StatusPublished)
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHint("Failed to compute credit balance").
			WithReportableDetails(map[string]any{
				"org_id": orgID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return balance, nil
}
