package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/seatbill/seatbill/internal/domain/subscription"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"org_id", "subscription_id", "head_block_id", "type", "seats",
		"occupied_seats", "price_per_seat", "promotion_code", "started_at", "ending_at",
	})
}

func TestSubscriptionRepository_GetCurrentSnapshot(t *testing.T) {
	db, mock, log := newMockRepoDB(t)
	repo := NewSubscriptionRepository(db, log)

	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM subscription_blocks b\s+JOIN subscriptions s`).
		WithArgs("org_1").
		WillReturnRows(snapshotRows().
			AddRow("org_1", "subs_1", "blk_1", "monthly", 3, 2, "39", nil, start, end))

	snap, err := repo.GetCurrentSnapshot(context.Background(), "org_1", false)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "blk_1", snap.HeadBlockID)
	assert.Equal(t, types.SubscriptionBlockTypeMonthly, snap.Type)
	assert.Equal(t, int64(3), snap.Seats)
	assert.Equal(t, int64(2), snap.OccupiedSeats)
	assert.Nil(t, snap.PromotionCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepository_GetCurrentSnapshotLocksRows(t *testing.T) {
	db, mock, log := newMockRepoDB(t)
	repo := NewSubscriptionRepository(db, log)

	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

	// The locking variant must carry the FOR UPDATE clause.
	mock.ExpectQuery(`FOR UPDATE OF b, s`).
		WithArgs("org_1").
		WillReturnRows(snapshotRows().
			AddRow("org_1", "subs_1", "blk_1", "monthly", 2, 0, "39", nil, start, end))

	snap, err := repo.GetCurrentSnapshot(context.Background(), "org_1", true)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepository_GetCurrentSnapshotAbsent(t *testing.T) {
	db, mock, log := newMockRepoDB(t)
	repo := NewSubscriptionRepository(db, log)

	mock.ExpectQuery(`FROM subscription_blocks b`).
		WithArgs("org_none").
		WillReturnRows(snapshotRows())

	snap, err := repo.GetCurrentSnapshot(context.Background(), "org_none", false)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSubscriptionRepository_UpdateBlockNotFound(t *testing.T) {
	db, mock, log := newMockRepoDB(t)
	repo := NewSubscriptionRepository(db, log)

	mock.ExpectExec(`UPDATE subscription_blocks`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	block := &subscription.Block{
		ID:             "blk_missing",
		OrgID:          "org_1",
		SubscriptionID: "subs_1",
		Type:           types.SubscriptionBlockTypeMonthly,
		Seats:          2,
		PricePerSeat:   decimal.NewFromInt(39),
		StartedAt:      time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndingAt:       time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		StartingMode:   types.StartingModeImmediate,
		BaseModel:      types.GetDefaultBaseModel(context.Background()),
	}
	err := repo.UpdateBlock(context.Background(), block)
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}
