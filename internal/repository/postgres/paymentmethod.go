package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/seatbill/seatbill/internal/domain/paymentmethod"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/logger"
	"github.com/seatbill/seatbill/internal/postgres"
	"github.com/seatbill/seatbill/internal/types"
)

type paymentMethodRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentMethodRepository(db *postgres.DB, logger *logger.Logger) paymentmethod.Repository {
	return &paymentMethodRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentMethodRepository) Create(ctx context.Context, m *paymentmethod.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (
			id, org_id, is_primary, card_last4, gateway_method_id,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :org_id, :is_primary, :card_last4, :gateway_method_id,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create payment method").
			WithReportableDetails(map[string]any{
				"payment_method_id": m.ID,
				"org_id":            m.OrgID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *paymentMethodRepository) GetPrimary(ctx context.Context, orgID string) (*paymentmethod.PaymentMethod, error) {
	query := `
		SELECT * FROM payment_methods
		WHERE org_id = $1 AND is_primary = true AND status = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var m paymentmethod.PaymentMethod
	err := r.db.GetQuerier(ctx).GetContext(ctx, &m, query, orgID, types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get primary payment method").
			WithReportableDetails(map[string]any{
				"org_id": orgID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return &m, nil
}
