package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/seatbill/seatbill/internal/api/dto"
	"github.com/seatbill/seatbill/internal/domain/payment"
	"github.com/seatbill/seatbill/internal/domain/subscription"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/postgres"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
)

const purchaseMaxRetries = 3

// SubscriptionService orchestrates subscription transitions. Every
// money-moving operation runs inside a single database transaction with the
// organization's head rows locked, so concurrent purchases for the same
// organization serialize and each block is billed at most once.
type SubscriptionService interface {
	// PurchaseBlock buys a monthly block for the organization. Immediate
	// purchases supersede the current block and refund its unused value;
	// scheduled purchases queue the block after the current one ends.
	PurchaseBlock(ctx context.Context, req *dto.PurchaseSubscriptionRequest, geo types.GeoInfo) (*dto.PurchaseSubscriptionResponse, error)

	// PreviewBlockPurchase computes the payment breakdown for a
	// prospective purchase without writing anything.
	PreviewBlockPurchase(ctx context.Context, req *dto.PreviewSubscriptionRequest) (*dto.PurchasePreviewResponse, error)

	// RenewSubscription schedules the next monthly block with the current
	// seat count, marked as an automatic charge.
	RenewSubscription(ctx context.Context, orgID string) (*dto.PurchaseSubscriptionResponse, error)

	// StartTrial provisions a trial subscription for an organization with
	// no billing history.
	StartTrial(ctx context.Context, req *dto.StartTrialRequest) (*dto.SubscriptionResponse, error)

	GetCurrentSubscription(ctx context.Context, orgID string) (*dto.CurrentSubscriptionResponse, error)
	ListBlockHistory(ctx context.Context, orgID string) ([]*dto.BlockHistoryItem, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
	}
}

// purchaseParams is the normalized input shared by manual purchases and
// automatic renewals.
type purchaseParams struct {
	OrgID         string
	Seats         int64
	PromotionCode string
	StartingMode  types.SubscriptionStartingMode
	Auto          bool
	Geo           types.GeoInfo
}

func (s *subscriptionService) PurchaseBlock(ctx context.Context, req *dto.PurchaseSubscriptionRequest, geo types.GeoInfo) (*dto.PurchaseSubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.purchase(ctx, purchaseParams{
		OrgID:         req.OrgID,
		Seats:         req.Seats,
		PromotionCode: req.PromotionCode,
		StartingMode:  req.StartingMode,
		Auto:          false,
		Geo:           geo,
	})
}

func (s *subscriptionService) RenewSubscription(ctx context.Context, orgID string) (*dto.PurchaseSubscriptionResponse, error) {
	if orgID == "" {
		return nil, ierr.NewError("org_id is required").
			WithHint("Organization ID is required").
			Mark(ierr.ErrValidation)
	}

	snap, err := s.SubRepo.GetCurrentSnapshot(ctx, orgID, false)
	if err != nil {
		return nil, err
	}
	if snap == nil || !snap.HasAliveBlock(time.Now().UTC()) {
		return nil, ierr.NewError("no active subscription to renew").
			WithHint("Organization has no live subscription block").
			WithReportableDetails(map[string]any{
				"org_id": orgID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	return s.purchase(ctx, purchaseParams{
		OrgID:        orgID,
		Seats:        snap.Seats,
		StartingMode: types.StartingModeScheduled,
		Auto:         true,
	})
}

// purchase runs the full transition inside one transaction, retrying the
// whole transaction on serialization failures.
func (s *subscriptionService) purchase(ctx context.Context, params purchaseParams) (*dto.PurchaseSubscriptionResponse, error) {
	var resp *dto.PurchaseSubscriptionResponse

	operation := func() error {
		var err error
		resp, err = s.purchaseOnce(ctx, params)
		if err != nil && !postgres.IsRetryableTxError(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), purchaseMaxRetries),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *subscriptionService) purchaseOnce(ctx context.Context, params purchaseParams) (*dto.PurchaseSubscriptionResponse, error) {
	var resp *dto.PurchaseSubscriptionResponse

	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		now := time.Now().UTC()

		snap, err := s.SubRepo.GetCurrentSnapshot(txCtx, params.OrgID, true)
		if err != nil {
			return err
		}

		// A queued block that has not started yet is cancelled, never
		// prorated: only what was collected for it comes back. Proration
		// on an unstarted period would refund more than was paid.
		if snap != nil && snap.StartedAt.After(now) {
			if params.StartingMode == types.StartingModeScheduled {
				return ierr.NewError("a scheduled block is already queued").
					WithHint("Only one scheduled block can be queued at a time").
					WithReportableDetails(map[string]any{
						"org_id":   params.OrgID,
						"block_id": snap.HeadBlockID,
					}).
					Mark(ierr.ErrInvalidOperation)
			}
			if err := s.cancelQueuedBlock(txCtx, snap, now); err != nil {
				return err
			}
			snap, err = s.SubRepo.GetCurrentSnapshot(txCtx, params.OrgID, true)
			if err != nil {
				return err
			}
		}

		if snap != nil && params.Seats < snap.OccupiedSeats {
			return ierr.NewError("seats below current occupancy").
				WithHintf("Organization has %d occupied seats; cannot shrink below that", snap.OccupiedSeats).
				WithReportableDetails(map[string]any{
					"requested_seats": params.Seats,
					"occupied_seats":  snap.OccupiedSeats,
				}).
				Mark(ierr.ErrValidation)
		}

		mode := params.StartingMode
		if !snap.HasAliveBlock(now) {
			mode = types.StartingModeImmediate
		}
		if mode == types.StartingModeScheduled && !snap.Type.IsPayable() {
			return ierr.NewError("cannot schedule after a non-payable block").
				WithHint("Trial and grace blocks must be replaced immediately").
				Mark(ierr.ErrInvalidOperation)
		}

		block := subscription.NewBlock(snap, types.SubscriptionBlockTypeMonthly, mode, now)
		block.OrgID = params.OrgID
		block.Seats = params.Seats
		block.PricePerSeat = s.Config.Billing.GetDefaultSeatPrice()
		block.StartingMode = mode
		block.BaseModel = types.GetDefaultBaseModel(txCtx)
		if params.PromotionCode != "" {
			code := params.PromotionCode
			block.PromotionCode = &code
		}

		billing := NewBillingService(s.ServiceParams)

		// An immediate takeover of a live paid block refunds its unused
		// value to the ledger before the new block is charged.
		refundApplied := decimal.Zero
		if mode == types.StartingModeImmediate && snap.HasAliveBlock(now) {
			refundApplied, err = billing.RefundableForCurrentBlock(txCtx, snap, now, RefundOptions{Apply: true})
			if err != nil {
				return err
			}
		}

		breakdown, err := billing.CalculateBlockPayment(txCtx, snap, block, BlockPaymentOptions{
			RefundApplied: &refundApplied,
			AsOf:          now,
		})
		if err != nil {
			return err
		}

		sub := &subscription.Subscription{
			ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
			OrgID:     params.OrgID,
			Type:      types.SubscriptionBlockTypeMonthly,
			StartDate: block.StartedAt,
			EndDate:   block.EndingAt,
			Recurring: true,
			SubStatus: types.SubscriptionStatusActive,
			BaseModel: types.GetDefaultBaseModel(txCtx),
		}
		if mode == types.StartingModeScheduled {
			sub.SubStatus = types.SubscriptionStatusProvisioning
		}
		if err := s.SubRepo.CreateSubscription(txCtx, sub); err != nil {
			return err
		}

		block.SubscriptionID = sub.ID
		if err := block.Validate(); err != nil {
			return err
		}
		if err := s.SubRepo.CreateBlock(txCtx, block); err != nil {
			return err
		}

		if mode == types.StartingModeImmediate && snap.HasAliveBlock(now) {
			if err := s.supersede(txCtx, snap, now); err != nil {
				return err
			}
		}

		var creditTxnID *string
		if breakdown.Deduction.GreaterThan(decimal.Zero) {
			balance, err := s.CreditRepo.Balance(txCtx, params.OrgID)
			if err != nil {
				return err
			}
			// The deduction was derived from this same transaction's
			// reads; a shortfall here means the ledger moved underneath a
			// held lock.
			if breakdown.Deduction.GreaterThan(balance) {
				return ierr.NewError("credit deduction exceeds balance").
					WithReportableDetails(map[string]any{
						"org_id":    params.OrgID,
						"deduction": breakdown.Deduction,
						"balance":   balance,
					}).
					Mark(ierr.ErrSystem)
			}
			creditService := NewCreditService(s.ServiceParams)
			txn, err := creditService.Post(txCtx, params.OrgID, breakdown.Deduction.Neg(), types.CreditTransactionTypeUserPay)
			if err != nil {
				return err
			}
			creditTxnID = &txn.ID
		}

		p := &payment.Payment{
			ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
			OrgID:               params.OrgID,
			PeriodStart:         block.StartedAt,
			PeriodEnd:           block.EndingAt,
			Amount:              breakdown.Payable,
			PaymentStatus:       types.PaymentStatusPending,
			Auto:                params.Auto,
			Geo:                 params.Geo,
			CreditTransactionID: creditTxnID,
			SubscriptionID:      sub.ID,
			PaymentMethodID:     breakdown.PaymentMethodID,
			BaseModel:           types.GetDefaultBaseModel(txCtx),
		}
		if breakdown.Payable.IsZero() {
			// Fully covered by credit; nothing for the gateway to do.
			p.MarkPaid(now)
		}
		if err := p.Validate(); err != nil {
			return err
		}
		if err := s.PaymentRepo.Create(txCtx, p); err != nil {
			return err
		}

		block.PaymentID = &p.ID
		if err := s.SubRepo.UpdateBlock(txCtx, block); err != nil {
			return err
		}

		s.Logger.Infow("purchased subscription block",
			"org_id", params.OrgID,
			"subscription_id", sub.ID,
			"block_id", block.ID,
			"payment_id", p.ID,
			"starting_mode", mode,
			"seats", params.Seats,
			"payable", breakdown.Payable,
			"deduction", breakdown.Deduction,
			"refund_applied", refundApplied,
		)

		resp = &dto.PurchaseSubscriptionResponse{
			Payment:   dto.NewPaymentResponse(p),
			Breakdown: *breakdown,
			BlockID:   block.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// cancelQueuedBlock reverses a scheduled block that has not started yet.
// What was collected for it comes back to the ledger: the credit deduction
// linked to its payment, plus the charged amount when the payment settled.
// A pending payment is voided; nothing was collected through it.
func (s *subscriptionService) cancelQueuedBlock(ctx context.Context, snap *subscription.CurrentSnapshot, now time.Time) error {
	block, err := s.SubRepo.GetBlock(ctx, snap.HeadBlockID)
	if err != nil {
		return err
	}

	reversal := decimal.Zero
	if block.PaymentID != nil {
		p, err := s.PaymentRepo.Get(ctx, *block.PaymentID)
		if err != nil {
			return err
		}
		if p.CreditTransactionID != nil {
			debit, err := s.CreditRepo.Get(ctx, *p.CreditTransactionID)
			if err != nil {
				return err
			}
			reversal = reversal.Add(debit.Amount.Neg())
		}
		if p.IsPaid() {
			reversal = reversal.Add(p.Amount)
		} else {
			p.MarkVoided()
			p.UpdatedAt = now
			if err := s.PaymentRepo.Update(ctx, p); err != nil {
				return err
			}
		}
	}

	if reversal.GreaterThan(decimal.Zero) {
		creditService := NewCreditService(s.ServiceParams)
		if _, err := creditService.Post(ctx, block.OrgID, reversal, types.CreditTransactionTypeRefund); err != nil {
			return err
		}
	}

	block.Status = types.StatusArchived
	block.UpdatedAt = now
	if err := s.SubRepo.UpdateBlock(ctx, block); err != nil {
		return err
	}

	sub, err := s.SubRepo.GetSubscription(ctx, snap.SubscriptionID)
	if err != nil {
		return err
	}
	sub.SubStatus = types.SubscriptionStatusEnded
	sub.Status = types.StatusArchived
	sub.UpdatedAt = now
	if err := s.SubRepo.UpdateSubscription(ctx, sub); err != nil {
		return err
	}

	s.Logger.Infow("cancelled queued block",
		"org_id", block.OrgID,
		"block_id", block.ID,
		"reversal", reversal,
	)
	return nil
}

// supersede closes out the organization's live block and its subscription.
// The current day stays with the old block; it has been consumed.
func (s *subscriptionService) supersede(ctx context.Context, snap *subscription.CurrentSnapshot, now time.Time) error {
	old, err := s.SubRepo.GetBlock(ctx, snap.HeadBlockID)
	if err != nil {
		return err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if old.StartedAt.After(today) {
		// Unstarted blocks are cancelled, never cut; a cut here would
		// persist a block that ends before it starts.
		return ierr.NewError("cannot supersede a block that has not started").
			WithReportableDetails(map[string]any{
				"block_id":   old.ID,
				"started_at": old.StartedAt,
			}).
			Mark(ierr.ErrSystem)
	}
	if old.EndingAt.After(today) {
		old.EndingAt = today
		old.UpdatedAt = now
		if err := s.SubRepo.UpdateBlock(ctx, old); err != nil {
			return err
		}
	}

	oldSub, err := s.SubRepo.GetSubscription(ctx, snap.SubscriptionID)
	if err != nil {
		return err
	}
	oldSub.SubStatus = types.SubscriptionStatusEnded
	oldSub.EndDate = old.EndingAt
	oldSub.UpdatedAt = now
	return s.SubRepo.UpdateSubscription(ctx, oldSub)
}

func (s *subscriptionService) PreviewBlockPurchase(ctx context.Context, req *dto.PreviewSubscriptionRequest) (*dto.PurchasePreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	snap, err := s.SubRepo.GetCurrentSnapshot(ctx, req.OrgID, false)
	if err != nil {
		return nil, err
	}

	block := subscription.NewBlock(snap, types.SubscriptionBlockTypeMonthly, types.StartingModeImmediate, now)
	block.OrgID = req.OrgID
	block.Seats = req.Seats
	block.PricePerSeat = s.Config.Billing.GetDefaultSeatPrice()
	if req.PromotionCode != "" {
		code := req.PromotionCode
		block.PromotionCode = &code
	}

	billing := NewBillingService(s.ServiceParams)
	breakdown, err := billing.CalculateBlockPayment(ctx, snap, block, BlockPaymentOptions{AsOf: now})
	if err != nil {
		return nil, err
	}

	resp := &dto.PurchasePreviewResponse{
		PaymentBreakdown: *breakdown,
		MinSeats:         1,
		SeatsAfter:       req.Seats,
	}
	if snap != nil {
		resp.SeatsBefore = snap.Seats
		if snap.OccupiedSeats > resp.MinSeats {
			resp.MinSeats = snap.OccupiedSeats
		}
	}
	return resp, nil
}

func (s *subscriptionService) StartTrial(ctx context.Context, req *dto.StartTrialRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp *dto.SubscriptionResponse
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		now := time.Now().UTC()

		snap, err := s.SubRepo.GetCurrentSnapshot(txCtx, req.OrgID, true)
		if err != nil {
			return err
		}
		if snap != nil {
			return ierr.NewError("organization already has a subscription").
				WithHint("Trials are only available to organizations with no billing history").
				WithReportableDetails(map[string]any{
					"org_id": req.OrgID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}

		block := subscription.NewBlock(nil, types.SubscriptionBlockTypeTrial, types.StartingModeImmediate, now)
		block.OrgID = req.OrgID
		block.Seats = req.Seats
		block.PricePerSeat = decimal.Zero
		block.EndingAt = block.StartedAt.AddDate(0, 0, s.Config.Billing.TrialDays-1)
		block.BaseModel = types.GetDefaultBaseModel(txCtx)

		sub := &subscription.Subscription{
			ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
			OrgID:     req.OrgID,
			Type:      types.SubscriptionBlockTypeTrial,
			StartDate: block.StartedAt,
			EndDate:   block.EndingAt,
			Recurring: false,
			SubStatus: types.SubscriptionStatusActive,
			BaseModel: types.GetDefaultBaseModel(txCtx),
		}
		if err := s.SubRepo.CreateSubscription(txCtx, sub); err != nil {
			return err
		}

		block.SubscriptionID = sub.ID
		if err := block.Validate(); err != nil {
			return err
		}
		if err := s.SubRepo.CreateBlock(txCtx, block); err != nil {
			return err
		}

		s.Logger.Infow("started trial",
			"org_id", req.OrgID,
			"subscription_id", sub.ID,
			"block_id", block.ID,
			"trial_days", s.Config.Billing.TrialDays,
		)
		resp = dto.NewSubscriptionResponse(sub)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *subscriptionService) GetCurrentSubscription(ctx context.Context, orgID string) (*dto.CurrentSubscriptionResponse, error) {
	if orgID == "" {
		return nil, ierr.NewError("org_id is required").
			WithHint("Organization ID is required").
			Mark(ierr.ErrValidation)
	}
	snap, err := s.SubRepo.GetCurrentSnapshot(ctx, orgID, false)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ierr.NewError("no subscription found").
			WithHintf("Organization %s has no subscription", orgID).
			Mark(ierr.ErrNotFound)
	}
	return dto.NewCurrentSubscriptionResponse(snap), nil
}

func (s *subscriptionService) ListBlockHistory(ctx context.Context, orgID string) ([]*dto.BlockHistoryItem, error) {
	if orgID == "" {
		return nil, ierr.NewError("org_id is required").
			WithHint("Organization ID is required").
			Mark(ierr.ErrValidation)
	}
	blocks, err := s.SubRepo.ListBlocks(ctx, orgID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.BlockHistoryItem, 0, len(blocks))
	for _, b := range blocks {
		var pr *dto.PaymentResponse
		if b.PaymentID != nil {
			p, err := s.PaymentRepo.Get(ctx, *b.PaymentID)
			if err != nil {
				if !ierr.IsNotFound(err) {
					return nil, err
				}
			} else {
				pr = dto.NewPaymentResponse(p)
			}
		}
		items = append(items, dto.NewBlockHistoryItem(b, pr))
	}
	return items, nil
}
