package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/seatbill/seatbill/internal/domain/payment"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/logger"
	"github.com/seatbill/seatbill/internal/postgres"
	"github.com/seatbill/seatbill/internal/types"
)

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			id, org_id, period_start, period_end, paid_at, amount,
			payment_status, auto, geo, credit_transaction_id, subscription_id,
			payment_method_id, receipt_number,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :org_id, :period_start, :period_end, :paid_at, :amount,
			:payment_status, :auto, :geo, :credit_transaction_id, :subscription_id,
			:payment_method_id, :receipt_number,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create payment").
			WithReportableDetails(map[string]any{
				"payment_id": p.ID,
				"org_id":     p.OrgID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	query := `SELECT * FROM payments WHERE id = $1 AND status = $2`

	var p payment.Payment
	err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, id, types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewErrorf("payment %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	query := `
		UPDATE payments SET
			paid_at = :paid_at,
			payment_status = :payment_status,
			receipt_number = :receipt_number,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payment").
			WithReportableDetails(map[string]any{
				"payment_id": p.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ierr.NewErrorf("payment %s not found", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *paymentRepository) ListByOrg(ctx context.Context, orgID string) ([]*payment.Payment, error) {
	query := `
		SELECT * FROM payments
		WHERE org_id = $1 AND status = $2
		ORDER BY created_at DESC`

	payments := make([]*payment.Payment, 0)
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &payments, query, orgID, types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payments").
			WithReportableDetails(map[string]any{
				"org_id": orgID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return payments, nil
}
