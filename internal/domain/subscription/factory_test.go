package subscription

import (
	"testing"
	"time"

	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewBlock_ImmediateStartsToday(t *testing.T) {
	now := time.Date(2025, 4, 8, 14, 27, 0, 0, time.UTC)

	block := NewBlock(nil, types.SubscriptionBlockTypeMonthly, types.StartingModeImmediate, now)

	assert.Equal(t, time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC), block.StartedAt)
	assert.Equal(t, time.Date(2025, 5, 7, 0, 0, 0, 0, time.UTC), block.EndingAt)
	assert.NotEmpty(t, block.ID)
	assert.Equal(t, types.SubscriptionBlockTypeMonthly, block.Type)
}

func TestNewBlock_ScheduledTilesAfterHead(t *testing.T) {
	now := time.Date(2025, 4, 8, 9, 0, 0, 0, time.UTC)
	snap := &CurrentSnapshot{
		HeadBlockID: "blk_head",
		Type:        types.SubscriptionBlockTypeMonthly,
		StartedAt:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndingAt:    time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
	}

	block := NewBlock(snap, types.SubscriptionBlockTypeMonthly, types.StartingModeScheduled, now)

	// Day after the head block ends, no gap and no overlap.
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), block.StartedAt)
	assert.Equal(t, time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), block.EndingAt)
}

func TestNewBlock_ScheduledWithDeadHeadStartsToday(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	snap := &CurrentSnapshot{
		HeadBlockID: "blk_head",
		Type:        types.SubscriptionBlockTypeMonthly,
		StartedAt:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndingAt:    time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
	}

	block := NewBlock(snap, types.SubscriptionBlockTypeMonthly, types.StartingModeScheduled, now)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), block.StartedAt)
}

func TestNewBlock_MonthEndClamping(t *testing.T) {
	// Starting Jan 31, one month minus a day lands on Mar 2 in a non-leap
	// year by Go date normalization (Jan 31 + 1 month = Mar 3).
	now := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)

	block := NewBlock(nil, types.SubscriptionBlockTypeMonthly, types.StartingModeImmediate, now)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), block.StartedAt)
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), block.EndingAt)
}

func TestHasAliveBlock(t *testing.T) {
	snap := &CurrentSnapshot{
		HeadBlockID: "blk_1",
		EndingAt:    time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
	}

	// Alive through the whole of its last day.
	assert.True(t, snap.HasAliveBlock(time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, snap.HasAliveBlock(time.Date(2025, 4, 30, 23, 0, 0, 0, time.UTC)))
	assert.False(t, snap.HasAliveBlock(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)))

	var nilSnap *CurrentSnapshot
	assert.False(t, nilSnap.HasAliveBlock(time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)))
}

func TestBlockValidate(t *testing.T) {
	valid := &Block{
		ID:             "blk_1",
		OrgID:          "org_1",
		SubscriptionID: "subs_1",
		Type:           types.SubscriptionBlockTypeMonthly,
		Seats:          2,
		PricePerSeat:   decimal.NewFromInt(39),
		StartedAt:      time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndingAt:       time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		StartingMode:   types.StartingModeImmediate,
	}
	assert.NoError(t, valid.Validate())

	noSeats := *valid
	noSeats.Seats = 0
	assert.Error(t, noSeats.Validate())

	badType := *valid
	badType.Type = "yearly"
	assert.Error(t, badType.Validate())
}
