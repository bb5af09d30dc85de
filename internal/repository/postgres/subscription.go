package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/seatbill/seatbill/internal/domain/subscription"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/logger"
	"github.com/seatbill/seatbill/internal/postgres"
	"github.com/seatbill/seatbill/internal/types"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *subscriptionRepository) CreateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, org_id, type, start_date, end_date, recurring, sub_status,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :org_id, :type, :start_date, :end_date, :recurring, :sub_status,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
				"org_id":          sub.OrgID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) GetSubscription(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `SELECT * FROM subscriptions WHERE id = $1 AND status = $2`

	var sub subscription.Subscription
	err := r.db.GetQuerier(ctx).GetContext(ctx, &sub, query, id, types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewErrorf("subscription %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

func (r *subscriptionRepository) UpdateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions SET
			end_date = :end_date,
			recurring = :recurring,
			sub_status = :sub_status,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ierr.NewErrorf("subscription %s not found", sub.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) CreateBlock(ctx context.Context, block *subscription.Block) error {
	query := `
		INSERT INTO subscription_blocks (
			id, org_id, subscription_id, type, seats, price_per_seat,
			promotion_code, started_at, ending_at, starting_mode, payment_id,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :org_id, :subscription_id, :type, :seats, :price_per_seat,
			:promotion_code, :started_at, :ending_at, :starting_mode, :payment_id,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription block").
			WithReportableDetails(map[string]any{
				"block_id": block.ID,
				"org_id":   block.OrgID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) GetBlock(ctx context.Context, id string) (*subscription.Block, error) {
	query := `SELECT * FROM subscription_blocks WHERE id = $1 AND status = $2`

	var block subscription.Block
	err := r.db.GetQuerier(ctx).GetContext(ctx, &block, query, id, types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewErrorf("subscription block %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription block").
			Mark(ierr.ErrDatabase)
	}
	return &block, nil
}

func (r *subscriptionRepository) UpdateBlock(ctx context.Context, block *subscription.Block) error {
	query := `
		UPDATE subscription_blocks SET
			seats = :seats,
			ending_at = :ending_at,
			payment_id = :payment_id,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, block)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription block").
			WithReportableDetails(map[string]any{
				"block_id": block.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ierr.NewErrorf("subscription block %s not found", block.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) ListBlocks(ctx context.Context, orgID string) ([]*subscription.Block, error) {
	query := `
		SELECT * FROM subscription_blocks
		WHERE org_id = $1 AND status = $2
		ORDER BY started_at DESC, created_at DESC`

	blocks := make([]*subscription.Block, 0)
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &blocks, query, orgID, types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscription blocks").
			WithReportableDetails(map[string]any{
				"org_id": orgID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return blocks, nil
}

// snapshotQuery derives the head block view. Occupied seats count live seat
// assignments so the caller can enforce the lower bound on seat changes.
const snapshotQuery = `
	SELECT
		b.org_id,
		s.id AS subscription_id,
		b.id AS head_block_id,
		b.type,
		b.seats,
		COALESCE((
			SELECT COUNT(*)
			FROM org_seat_assignments a
			WHERE a.org_id = b.org_id AND a.status = 'published'
		), 0) AS occupied_seats,
		b.price_per_seat,
		b.promotion_code,
		b.started_at,
		b.ending_at
	FROM subscription_blocks b
	JOIN subscriptions s ON s.id = b.subscription_id
	WHERE b.org_id = $1
		AND b.status = 'published'
		AND s.status = 'published'
	ORDER BY b.started_at DESC, b.created_at DESC
	LIMIT 1`

func (r *subscriptionRepository) GetCurrentSnapshot(ctx context.Context, orgID string, forUpdate bool) (*subscription.CurrentSnapshot, error) {
	query := snapshotQuery
	if forUpdate {
		query += `
	FOR UPDATE OF b, s`
	}

	var snap subscription.CurrentSnapshot
	err := r.db.GetQuerier(ctx).GetContext(ctx, &snap, query, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get current subscription snapshot").
			WithReportableDetails(map[string]any{
				"org_id": orgID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return &snap, nil
}
