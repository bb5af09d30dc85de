package service

import (
	"context"
	"time"

	"github.com/seatbill/seatbill/internal/api/dto"
	"github.com/seatbill/seatbill/internal/domain/proration"
	"github.com/seatbill/seatbill/internal/domain/subscription"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
)

// RefundOptions controls whether a computed refund is written to the
// credit ledger or only reported.
type RefundOptions struct {
	Apply bool
}

// BlockPaymentOptions tunes the payment calculation. When RefundApplied is
// set the refund has already been posted to the ledger by the caller and
// is part of the current balance; otherwise the calculation computes the
// prospective refund itself.
type BlockPaymentOptions struct {
	RefundApplied *decimal.Decimal
	AsOf          time.Time
}

// BillingService calculates refunds and block payments. Refund application
// and payment calculation are the two money-moving building blocks of a
// subscription transition; orchestration (locking, block creation, the
// actual debit) lives in SubscriptionService.
type BillingService interface {
	// RefundableForCurrentBlock computes the unused-value refund for the
	// organization's current block as of now. With opts.Apply it also
	// posts the refund as a positive ledger entry. A nil snapshot, an
	// elapsed block, or a non-payable block yields zero.
	RefundableForCurrentBlock(ctx context.Context, snap *subscription.CurrentSnapshot, now time.Time, opts RefundOptions) (decimal.Decimal, error)

	// CalculateBlockPayment produces the full payment breakdown for the
	// prospective block: discount resolution, proration refund, and
	// credit-first allocation between ledger deduction and card payable.
	CalculateBlockPayment(ctx context.Context, snap *subscription.CurrentSnapshot, block *subscription.Block, opts BlockPaymentOptions) (*dto.PaymentBreakdown, error)
}

type billingService struct {
	ServiceParams
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{
		ServiceParams: params,
	}
}

func (s *billingService) RefundableForCurrentBlock(ctx context.Context, snap *subscription.CurrentSnapshot, now time.Time, opts RefundOptions) (decimal.Decimal, error) {
	if snap == nil || !snap.HasAliveBlock(now) {
		return decimal.Zero, nil
	}
	if !snap.Type.IsPayable() {
		return decimal.Zero, nil
	}

	block, err := s.SubRepo.GetBlock(ctx, snap.HeadBlockID)
	if err != nil {
		return decimal.Zero, err
	}

	// A block that has not started yet has no consumed value to prorate.
	// Cancelling it reverses what was collected instead; that path lives
	// in the transition orchestrator.
	if block.StartedAt.After(now) {
		return decimal.Zero, nil
	}

	// The discount baked into the refund is the one the block was bought
	// with, resolved as of the block's start so a since-expired code still
	// counts.
	discountService := NewDiscountService(s.ServiceParams)
	discount, err := discountService.Resolve(ctx, block.PromotionCodeValue(), block.OrgID, block.StartedAt)
	if err != nil {
		return decimal.Zero, err
	}

	refundable, err := s.RefundCalculator.RefundableAmount(ctx, proration.RefundParams{
		BlockType:          block.Type,
		StartedAt:          block.StartedAt,
		EndingAt:           block.EndingAt,
		Seats:              block.Seats,
		PricePerSeat:       block.PricePerSeat,
		DiscountPercentage: discount.Percentage,
		AsOf:               now,
	})
	if err != nil {
		return decimal.Zero, err
	}

	if opts.Apply && refundable.GreaterThan(decimal.Zero) {
		creditService := NewCreditService(s.ServiceParams)
		txn, err := creditService.Post(ctx, block.OrgID, refundable, types.CreditTransactionTypeRefund)
		if err != nil {
			return decimal.Zero, err
		}
		s.Logger.Infow("applied proration refund",
			"org_id", block.OrgID,
			"block_id", block.ID,
			"transaction_id", txn.ID,
			"refundable", refundable,
		)
	}

	return refundable, nil
}

func (s *billingService) CalculateBlockPayment(ctx context.Context, snap *subscription.CurrentSnapshot, block *subscription.Block, opts BlockPaymentOptions) (*dto.PaymentBreakdown, error) {
	if block == nil {
		return nil, ierr.NewError("block is required").
			Mark(ierr.ErrValidation)
	}
	if block.Seats <= 0 {
		return nil, ierr.NewError("seats must be greater than 0").
			WithHint("Cannot bill a block with no seats").
			WithReportableDetails(map[string]any{
				"block_id": block.ID,
				"seats":    block.Seats,
			}).
			Mark(ierr.ErrValidation)
	}
	if block.IsPaid() {
		return nil, ierr.NewError("block is already paid").
			WithHint("A block can be billed at most once").
			WithReportableDetails(map[string]any{
				"block_id":   block.ID,
				"payment_id": block.PaymentID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	if !block.Type.IsPayable() {
		return nil, ierr.NewError("block type is not payable").
			WithHintf("Blocks of type %s carry no charge", block.Type).
			Mark(ierr.ErrInvalidOperation)
	}

	now := opts.AsOf
	if now.IsZero() {
		now = time.Now().UTC()
	}

	discountService := NewDiscountService(s.ServiceParams)
	discount, err := discountService.Resolve(ctx, block.PromotionCodeValue(), block.OrgID, now)
	if err != nil {
		return nil, err
	}

	fullBefore := block.PricePerSeat.
		Mul(decimal.NewFromInt(block.Seats)).
		Round(2)
	fullAfter := block.PricePerSeat.
		Mul(decimal.NewFromInt(1).Sub(discount.Percentage)).
		Mul(decimal.NewFromInt(block.Seats)).
		Round(2)

	balance, err := s.CreditRepo.Balance(ctx, block.OrgID)
	if err != nil {
		return nil, err
	}

	var refundable, balanceBefore decimal.Decimal
	if opts.RefundApplied != nil {
		// The refund is already in the ledger; unwind it for reporting so
		// the breakdown shows the pre-transition balance.
		refundable = *opts.RefundApplied
		balanceBefore = balance.Sub(refundable)
	} else {
		refundable, err = s.RefundableForCurrentBlock(ctx, snap, now, RefundOptions{Apply: false})
		if err != nil {
			return nil, err
		}
		balanceBefore = balance
	}

	available := balanceBefore.Add(refundable)

	var deduction, payable decimal.Decimal
	if available.GreaterThanOrEqual(fullAfter) {
		deduction = fullAfter
		payable = decimal.Zero
	} else {
		deduction = available
		payable = fullAfter.Sub(available)
	}

	breakdown := &dto.PaymentBreakdown{
		SeatPrice:                   block.PricePerSeat,
		Refundable:                  refundable,
		FullPriceBeforeDiscount:     fullBefore,
		FullPriceAfterDiscount:      fullAfter,
		IsValidPromotionCode:        discount.Valid,
		PromotionDiscountPercentage: discount.Percentage,
		CreditBalanceBefore:         balanceBefore,
		CreditBalanceAfter:          available.Sub(deduction),
		Deduction:                   deduction,
		Payable:                     payable,
	}

	if method, err := s.PaymentMethodRepo.GetPrimary(ctx, block.OrgID); err != nil {
		return nil, err
	} else if method != nil {
		breakdown.PaymentMethodID = &method.ID
		breakdown.GatewayMethodID = &method.GatewayMethodID
	}

	return breakdown, nil
}
