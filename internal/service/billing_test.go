package service

import (
	"testing"
	"time"

	"github.com/seatbill/seatbill/internal/domain/credit"
	"github.com/seatbill/seatbill/internal/domain/paymentmethod"
	"github.com/seatbill/seatbill/internal/domain/promotion"
	"github.com/seatbill/seatbill/internal/domain/proration"
	"github.com/seatbill/seatbill/internal/domain/subscription"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/testutil"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingService
	params  ServiceParams
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func prorationCalculator() proration.Calculator {
	return proration.NewCalculator()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *BillingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		DB:                s.GetDB(),
		RefundCalculator:  prorationCalculator(),
		SubRepo:           s.GetStores().SubscriptionRepo,
		CreditRepo:        s.GetStores().CreditRepo,
		PromotionRepo:     s.GetStores().PromotionRepo,
		PaymentRepo:       s.GetStores().PaymentRepo,
		PaymentMethodRepo: s.GetStores().PaymentMethodRepo,
	}
	s.service = NewBillingService(s.params)
}

// seedMonthlyBlock creates a paid-for 30-day monthly block that started ten
// days ago, with 2 seats at 39 per seat and the given promotion code.
func (s *BillingServiceSuite) seedMonthlyBlock(orgID string, promoCode *string) *subscription.CurrentSnapshot {
	ctx := s.GetContext()
	today := dateOnly(s.GetNow())
	start := today.AddDate(0, 0, -10)

	sub := &subscription.Subscription{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		OrgID:     orgID,
		Type:      types.SubscriptionBlockTypeMonthly,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 29),
		Recurring: true,
		SubStatus: types.SubscriptionStatusActive,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.params.SubRepo.CreateSubscription(ctx, sub))

	block := &subscription.Block{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_BLOCK),
		OrgID:          orgID,
		SubscriptionID: sub.ID,
		Type:           types.SubscriptionBlockTypeMonthly,
		Seats:          2,
		PricePerSeat:   decimal.NewFromInt(39),
		PromotionCode:  promoCode,
		StartedAt:      start,
		EndingAt:       start.AddDate(0, 0, 29),
		StartingMode:   types.StartingModeImmediate,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.params.SubRepo.CreateBlock(ctx, block))

	snap, err := s.params.SubRepo.GetCurrentSnapshot(ctx, orgID, false)
	s.NoError(err)
	s.NotNil(snap)
	return snap
}

func (s *BillingServiceSuite) createCode(code string, off float64, endingAt time.Time) {
	s.NoError(s.params.PromotionRepo.Create(s.GetContext(), &promotion.Code{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PROMOTION_CODE),
		Code:          code,
		PercentageOff: decimal.NewFromFloat(off),
		EndingAt:      endingAt,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *BillingServiceSuite) topUp(orgID string, amount int64) {
	s.NoError(s.params.CreditRepo.Create(s.GetContext(), &credit.Transaction{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_TRANSACTION),
		OrgID:     orgID,
		Amount:    decimal.NewFromInt(amount),
		Type:      types.CreditTransactionTypeTopUp,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))
}

// newProspectiveBlock builds an unsaved monthly block for payment
// calculation tests.
func (s *BillingServiceSuite) newProspectiveBlock(orgID string, seats int64, promoCode string) *subscription.Block {
	block := subscription.NewBlock(nil, types.SubscriptionBlockTypeMonthly, types.StartingModeImmediate, s.GetNow())
	block.OrgID = orgID
	block.Seats = seats
	block.PricePerSeat = decimal.NewFromInt(39)
	block.BaseModel = types.GetDefaultBaseModel(s.GetContext())
	if promoCode != "" {
		block.PromotionCode = &promoCode
	}
	return block
}

func (s *BillingServiceSuite) TestRefundableWithStoredDiscount() {
	code := "SPRING15"
	s.createCode(code, 0.15, s.GetNow().AddDate(0, 1, 0))
	snap := s.seedMonthlyBlock("org_refund", &code)

	refundable, err := s.service.RefundableForCurrentBlock(s.GetContext(), snap, s.GetNow(), RefundOptions{})
	s.NoError(err)
	// 19 of 30 days remain: floor(39*0.85 * 19/30 * 2)
	s.True(decimal.NewFromInt(41).Equal(refundable), "got %s", refundable)

	// Report-only: nothing written to the ledger.
	balance, err := s.params.CreditRepo.Balance(s.GetContext(), "org_refund")
	s.NoError(err)
	s.True(balance.IsZero())
}

func (s *BillingServiceSuite) TestRefundableApplyPostsLedgerEntry() {
	snap := s.seedMonthlyBlock("org_apply", nil)

	refundable, err := s.service.RefundableForCurrentBlock(s.GetContext(), snap, s.GetNow(), RefundOptions{Apply: true})
	s.NoError(err)
	// floor(39 * 19/30 * 2)
	s.True(decimal.NewFromInt(49).Equal(refundable), "got %s", refundable)

	txns, err := s.params.CreditRepo.List(s.GetContext(), "org_apply")
	s.NoError(err)
	s.Len(txns, 1)
	s.Equal(types.CreditTransactionTypeRefund, txns[0].Type)
	s.True(refundable.Equal(txns[0].Amount))

	balance, err := s.params.CreditRepo.Balance(s.GetContext(), "org_apply")
	s.NoError(err)
	s.True(refundable.Equal(balance))
}

func (s *BillingServiceSuite) TestRefundableHonorsSinceExpiredStoredCode() {
	// The code expired five days ago, after the block started. The refund
	// still reflects the discount the block was bought with.
	code := "GONE15"
	s.createCode(code, 0.15, s.GetNow().AddDate(0, 0, -5))
	snap := s.seedMonthlyBlock("org_expired", &code)

	refundable, err := s.service.RefundableForCurrentBlock(s.GetContext(), snap, s.GetNow(), RefundOptions{})
	s.NoError(err)
	s.True(decimal.NewFromInt(41).Equal(refundable), "got %s", refundable)
}

func (s *BillingServiceSuite) TestRefundableNilSnapshot() {
	refundable, err := s.service.RefundableForCurrentBlock(s.GetContext(), nil, s.GetNow(), RefundOptions{})
	s.NoError(err)
	s.True(refundable.IsZero())
}

func (s *BillingServiceSuite) TestRefundableUnstartedBlockIsZero() {
	ctx := s.GetContext()
	start := dateOnly(s.GetNow()).AddDate(0, 0, 20)

	sub := &subscription.Subscription{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		OrgID:     "org_future",
		Type:      types.SubscriptionBlockTypeMonthly,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 29),
		Recurring: true,
		SubStatus: types.SubscriptionStatusProvisioning,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.params.SubRepo.CreateSubscription(ctx, sub))
	s.NoError(s.params.SubRepo.CreateBlock(ctx, &subscription.Block{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_BLOCK),
		OrgID:          "org_future",
		SubscriptionID: sub.ID,
		Type:           types.SubscriptionBlockTypeMonthly,
		Seats:          2,
		PricePerSeat:   decimal.NewFromInt(39),
		StartedAt:      start,
		EndingAt:       start.AddDate(0, 0, 29),
		StartingMode:   types.StartingModeScheduled,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}))

	snap, err := s.params.SubRepo.GetCurrentSnapshot(ctx, "org_future", false)
	s.NoError(err)
	s.NotNil(snap)

	// A block that has not started has no consumed value to prorate, and
	// Apply must not mint credit for it.
	refundable, err := s.service.RefundableForCurrentBlock(ctx, snap, s.GetNow(), RefundOptions{Apply: true})
	s.NoError(err)
	s.True(refundable.IsZero())

	txns, err := s.params.CreditRepo.List(ctx, "org_future")
	s.NoError(err)
	s.Len(txns, 0)
}

func (s *BillingServiceSuite) TestCalculatePaymentFailFast() {
	block := s.newProspectiveBlock("org_ff", 3, "")

	// zero seats
	bad := *block
	bad.Seats = 0
	_, err := s.service.CalculateBlockPayment(s.GetContext(), nil, &bad, BlockPaymentOptions{AsOf: s.GetNow()})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	// already paid
	paid := *block
	paymentID := "pay_done"
	paid.PaymentID = &paymentID
	_, err = s.service.CalculateBlockPayment(s.GetContext(), nil, &paid, BlockPaymentOptions{AsOf: s.GetNow()})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// non-payable type
	trial := *block
	trial.Type = types.SubscriptionBlockTypeTrial
	_, err = s.service.CalculateBlockPayment(s.GetContext(), nil, &trial, BlockPaymentOptions{AsOf: s.GetNow()})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *BillingServiceSuite) TestCalculatePaymentNoCredit() {
	s.createCode("SPRING15", 0.15, s.GetNow().AddDate(0, 1, 0))
	block := s.newProspectiveBlock("org_nc", 3, "SPRING15")

	breakdown, err := s.service.CalculateBlockPayment(s.GetContext(), nil, block, BlockPaymentOptions{AsOf: s.GetNow()})
	s.NoError(err)
	s.True(breakdown.IsValidPromotionCode)
	s.True(decimal.NewFromInt(117).Equal(breakdown.FullPriceBeforeDiscount))
	// round(39*0.85*3, 2)
	s.True(decimal.NewFromFloat(99.45).Equal(breakdown.FullPriceAfterDiscount))
	s.True(breakdown.Deduction.IsZero())
	s.True(decimal.NewFromFloat(99.45).Equal(breakdown.Payable))
	s.True(breakdown.CreditBalanceBefore.IsZero())
	s.True(breakdown.CreditBalanceAfter.IsZero())
}

func (s *BillingServiceSuite) TestCalculatePaymentPartialCredit() {
	s.createCode("SPRING15", 0.15, s.GetNow().AddDate(0, 1, 0))
	s.topUp("org_pc", 20)
	block := s.newProspectiveBlock("org_pc", 3, "SPRING15")

	breakdown, err := s.service.CalculateBlockPayment(s.GetContext(), nil, block, BlockPaymentOptions{AsOf: s.GetNow()})
	s.NoError(err)
	s.True(decimal.NewFromInt(20).Equal(breakdown.Deduction))
	s.True(decimal.NewFromFloat(79.45).Equal(breakdown.Payable))
	s.True(breakdown.CreditBalanceAfter.IsZero())
}

func (s *BillingServiceSuite) TestCalculatePaymentFullCreditCoverage() {
	s.topUp("org_fc", 150)
	block := s.newProspectiveBlock("org_fc", 3, "")

	breakdown, err := s.service.CalculateBlockPayment(s.GetContext(), nil, block, BlockPaymentOptions{AsOf: s.GetNow()})
	s.NoError(err)
	s.True(decimal.NewFromInt(117).Equal(breakdown.FullPriceAfterDiscount))
	s.True(decimal.NewFromInt(117).Equal(breakdown.Deduction))
	s.True(breakdown.Payable.IsZero())
	s.True(decimal.NewFromInt(33).Equal(breakdown.CreditBalanceAfter))
}

func (s *BillingServiceSuite) TestCalculatePaymentInvalidPromotionCode() {
	block := s.newProspectiveBlock("org_ip", 2, "NOSUCHCODE")

	breakdown, err := s.service.CalculateBlockPayment(s.GetContext(), nil, block, BlockPaymentOptions{AsOf: s.GetNow()})
	s.NoError(err)
	s.False(breakdown.IsValidPromotionCode)
	s.True(breakdown.PromotionDiscountPercentage.IsZero())
	s.True(decimal.NewFromInt(78).Equal(breakdown.FullPriceAfterDiscount))
}

func (s *BillingServiceSuite) TestCalculatePaymentIncludesRefundInAllocation() {
	snap := s.seedMonthlyBlock("org_ri", nil)
	block := s.newProspectiveBlock("org_ri", 3, "")

	breakdown, err := s.service.CalculateBlockPayment(s.GetContext(), snap, block, BlockPaymentOptions{AsOf: s.GetNow()})
	s.NoError(err)
	// Prospective refund of the current block: floor(39 * 19/30 * 2) = 49,
	// applied against 117.
	s.True(decimal.NewFromInt(49).Equal(breakdown.Refundable))
	s.True(decimal.NewFromInt(49).Equal(breakdown.Deduction))
	s.True(decimal.NewFromInt(68).Equal(breakdown.Payable))
	s.True(breakdown.CreditBalanceBefore.IsZero())
}

func (s *BillingServiceSuite) TestCalculatePaymentWithRefundAlreadyApplied() {
	snap := s.seedMonthlyBlock("org_ra", nil)
	block := s.newProspectiveBlock("org_ra", 3, "")

	refundable, err := s.service.RefundableForCurrentBlock(s.GetContext(), snap, s.GetNow(), RefundOptions{Apply: true})
	s.NoError(err)

	breakdown, err := s.service.CalculateBlockPayment(s.GetContext(), snap, block, BlockPaymentOptions{
		RefundApplied: &refundable,
		AsOf:          s.GetNow(),
	})
	s.NoError(err)
	// Identical allocation to the not-yet-applied path.
	s.True(refundable.Equal(breakdown.Refundable))
	s.True(decimal.NewFromInt(49).Equal(breakdown.Deduction))
	s.True(decimal.NewFromInt(68).Equal(breakdown.Payable))
	s.True(breakdown.CreditBalanceBefore.IsZero())
}

func (s *BillingServiceSuite) TestCalculatePaymentResolvesPrimaryMethod() {
	method := &paymentmethod.PaymentMethod{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_METHOD),
		OrgID:           "org_pm",
		Primary:         true,
		CardLast4:       "4242",
		GatewayMethodID: "gw_abc123",
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.params.PaymentMethodRepo.Create(s.GetContext(), method))
	block := s.newProspectiveBlock("org_pm", 1, "")

	breakdown, err := s.service.CalculateBlockPayment(s.GetContext(), nil, block, BlockPaymentOptions{AsOf: s.GetNow()})
	s.NoError(err)
	s.NotNil(breakdown.PaymentMethodID)
	s.Equal(method.ID, *breakdown.PaymentMethodID)
	s.NotNil(breakdown.GatewayMethodID)
	s.Equal("gw_abc123", *breakdown.GatewayMethodID)
}
