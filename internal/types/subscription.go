package types

import (
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionBlockType describes what kind of time a subscription block
// represents. Trial and overdue-peace-period blocks are fixed-duration and
// are never paid for.
type SubscriptionBlockType string

const (
	SubscriptionBlockTypeTrial              SubscriptionBlockType = "trial"
	SubscriptionBlockTypeMonthly            SubscriptionBlockType = "monthly"
	SubscriptionBlockTypeOverduePeacePeriod SubscriptionBlockType = "overdue_peace_period"
)

var SubscriptionBlockTypeValues = []SubscriptionBlockType{
	SubscriptionBlockTypeTrial,
	SubscriptionBlockTypeMonthly,
	SubscriptionBlockTypeOverduePeacePeriod,
}

func (t SubscriptionBlockType) Validate() error {
	if !lo.Contains(SubscriptionBlockTypeValues, t) {
		return ierr.NewError("invalid subscription block type").
			WithHint("Block type must be trial, monthly, or overdue_peace_period").
			WithReportableDetails(map[string]any{
				"allowed_values": SubscriptionBlockTypeValues,
				"provided_value": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (t SubscriptionBlockType) String() string {
	return string(t)
}

// IsPayable reports whether blocks of this type ever carry a payment.
func (t SubscriptionBlockType) IsPayable() bool {
	return t == SubscriptionBlockTypeMonthly
}

// SubscriptionStartingMode determines when a newly purchased block takes
// effect: immediately (replacing and refunding the current block) or
// scheduled to begin after the current block naturally ends.
type SubscriptionStartingMode string

const (
	StartingModeImmediate SubscriptionStartingMode = "immediate"
	StartingModeScheduled SubscriptionStartingMode = "scheduled"
)

var SubscriptionStartingModeValues = []SubscriptionStartingMode{
	StartingModeImmediate,
	StartingModeScheduled,
}

func (m SubscriptionStartingMode) Validate() error {
	if !lo.Contains(SubscriptionStartingModeValues, m) {
		return ierr.NewError("invalid starting mode").
			WithHint("Starting mode must be immediate or scheduled").
			WithReportableDetails(map[string]any{
				"allowed_values": SubscriptionStartingModeValues,
				"provided_value": m,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (m SubscriptionStartingMode) String() string {
	return string(m)
}

// SubscriptionStatus tracks the lifecycle of a subscription row.
type SubscriptionStatus string

const (
	SubscriptionStatusProvisioning SubscriptionStatus = "provisioning"
	SubscriptionStatusActive       SubscriptionStatus = "active"
	SubscriptionStatusEnded        SubscriptionStatus = "ended"
)

var SubscriptionStatusValues = []SubscriptionStatus{
	SubscriptionStatusProvisioning,
	SubscriptionStatusActive,
	SubscriptionStatusEnded,
}

func (s SubscriptionStatus) Validate() error {
	if !lo.Contains(SubscriptionStatusValues, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Subscription status must be provisioning, active, or ended").
			WithReportableDetails(map[string]any{
				"allowed_values": SubscriptionStatusValues,
				"provided_value": s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (s SubscriptionStatus) String() string {
	return string(s)
}
