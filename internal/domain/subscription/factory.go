package subscription

import (
	"time"

	"github.com/seatbill/seatbill/internal/types"
)

// NewBlock constructs a transient, unsaved block descriptor from the
// organization's current subscription state. The caller fills in seats,
// price and promotion code before use.
//
// An immediate block starts today; a scheduled block starts the day after
// the current head block ends, so consecutive blocks tile without gaps or
// overlaps. Monthly blocks always span one calendar month minus a day.
func NewBlock(snap *CurrentSnapshot, blockType types.SubscriptionBlockType, mode types.SubscriptionStartingMode, now time.Time) *Block {
	startedAt := dateOf(now)
	if snap.HasAliveBlock(now) && mode == types.StartingModeScheduled {
		startedAt = dateOf(snap.EndingAt.AddDate(0, 0, 1))
	}

	endingAt := startedAt.AddDate(0, 1, -1)

	return &Block{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_BLOCK),
		Type:         blockType,
		StartedAt:    startedAt,
		EndingAt:     endingAt,
		StartingMode: mode,
	}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
