package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/seatbill/seatbill/internal/domain/promotion"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/logger"
	"github.com/seatbill/seatbill/internal/postgres"
	"github.com/seatbill/seatbill/internal/types"
)

type promotionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPromotionRepository(db *postgres.DB, logger *logger.Logger) promotion.Repository {
	return &promotionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *promotionRepository) Create(ctx context.Context, code *promotion.Code) error {
	query := `
		INSERT INTO promotion_codes (
			id, code, org_id, percentage_off, ending_at,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :code, :org_id, :percentage_off, :ending_at,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, code); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create promotion code").
			WithReportableDetails(map[string]any{
				"code": code.Code,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *promotionRepository) GetByCode(ctx context.Context, code string) (*promotion.Code, error) {
	query := `SELECT * FROM promotion_codes WHERE code = $1 AND status = $2`

	var promo promotion.Code
	err := r.db.GetQuerier(ctx).GetContext(ctx, &promo, query, code, types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewErrorf("promotion code %s not found", code).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get promotion code").
			Mark(ierr.ErrDatabase)
	}
	return &promo, nil
}
