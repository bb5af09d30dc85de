package proration

import (
	"context"
	"fmt"
	"time"

	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
)

// Calculator computes the unused-value refund for a subscription block.
type Calculator interface {
	// RefundableAmount returns the refund owed for the block if it were
	// cancelled or replaced at params.AsOf. Pure; no side effects.
	RefundableAmount(ctx context.Context, params RefundParams) (decimal.Decimal, error)
}

// NewCalculator creates the day-based refund calculator.
func NewCalculator() Calculator {
	return &dayBasedCalculator{}
}

// RefundParams holds all necessary input for calculating the refundable
// value of the currently active block.
type RefundParams struct {
	BlockType    types.SubscriptionBlockType
	StartedAt    time.Time // first day of the block
	EndingAt     time.Time // last day of the block, inclusive
	Seats        int64
	PricePerSeat decimal.Decimal
	// DiscountPercentage is the promotion discount applied when the block
	// was purchased, in [0, 1]. Refunds reflect what was actually paid.
	DiscountPercentage decimal.Decimal
	AsOf               time.Time
}

// dayBasedCalculator implements the day-based proration logic. The day the
// change happens on is treated as consumed: it stays with the old block and
// is never refunded.
type dayBasedCalculator struct{}

func (c *dayBasedCalculator) RefundableAmount(ctx context.Context, params RefundParams) (decimal.Decimal, error) {
	if err := validateParams(params); err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHintf("invalid refund params: %v", err).
			Mark(ierr.ErrValidation)
	}

	// Trial and overdue-peace-period blocks are unpaid fixed-duration
	// blocks with no refundable value.
	if !params.BlockType.IsPayable() {
		return decimal.Zero, nil
	}

	totalDays := DaysBetween(params.StartedAt, params.EndingAt) + 1
	if totalDays <= 0 {
		return decimal.Zero, ierr.NewError("invalid block period").
			WithHintf("total days is zero or negative (%v to %v)", params.StartedAt, params.EndingAt).
			Mark(ierr.ErrValidation)
	}

	remainingDays := DaysBetween(params.AsOf, params.EndingAt)
	if remainingDays <= 0 {
		// The block has fully elapsed, or today is its last day.
		return decimal.Zero, nil
	}
	if remainingDays > totalDays {
		// An as-of before the block start must not inflate the ratio; the
		// block's full value is the ceiling.
		remainingDays = totalDays
	}

	effectivePricePerSeat := params.PricePerSeat.Mul(decimal.NewFromInt(1).Sub(params.DiscountPercentage))

	// floor(price * remaining / total * seats): no sub-unit refunds.
	refundable := effectivePricePerSeat.
		Mul(decimal.NewFromInt(int64(remainingDays))).
		Div(decimal.NewFromInt(int64(totalDays))).
		Mul(decimal.NewFromInt(params.Seats)).
		Floor()

	if refundable.LessThan(decimal.Zero) {
		return decimal.Zero, nil
	}

	return refundable, nil
}

// DaysBetween counts the whole calendar days from start to end, comparing
// UTC day boundaries. Same-day inputs yield 0.
func DaysBetween(start, end time.Time) int {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(endDay.Sub(startDay) / (24 * time.Hour))
}

// validateParams checks if essential parameters are provided.
func validateParams(params RefundParams) error {
	if err := params.BlockType.Validate(); err != nil {
		return err
	}
	if params.StartedAt.IsZero() || params.EndingAt.IsZero() {
		return fmt.Errorf("block start and ending dates are required")
	}
	if params.EndingAt.Before(params.StartedAt) {
		return fmt.Errorf("block ending date cannot be before start date")
	}
	if params.AsOf.IsZero() {
		return fmt.Errorf("as-of time is required")
	}
	if params.Seats <= 0 {
		return fmt.Errorf("seats must be positive")
	}
	if params.PricePerSeat.LessThan(decimal.Zero) {
		return fmt.Errorf("price per seat cannot be negative")
	}
	if params.DiscountPercentage.LessThan(decimal.Zero) || params.DiscountPercentage.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("discount percentage must be in [0, 1]")
	}
	return nil
}
