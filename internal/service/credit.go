package service

import (
	"context"

	"github.com/seatbill/seatbill/internal/domain/credit"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
)

// CreditService exposes the organization credit ledger.
type CreditService interface {
	// Balance is the running sum of the organization's ledger.
	Balance(ctx context.Context, orgID string) (decimal.Decimal, error)

	// Post appends a ledger entry and returns it. Amounts are signed:
	// debits negative, credits positive.
	Post(ctx context.Context, orgID string, amount decimal.Decimal, txType types.CreditTransactionType) (*credit.Transaction, error)

	// TopUp appends a positive top-up entry.
	TopUp(ctx context.Context, orgID string, amount decimal.Decimal) (*credit.Transaction, error)

	List(ctx context.Context, orgID string) ([]*credit.Transaction, error)
}

type creditService struct {
	ServiceParams
}

func NewCreditService(params ServiceParams) CreditService {
	return &creditService{
		ServiceParams: params,
	}
}

func (s *creditService) Balance(ctx context.Context, orgID string) (decimal.Decimal, error) {
	if orgID == "" {
		return decimal.Zero, ierr.NewError("org_id is required").
			WithHint("Organization ID is required").
			Mark(ierr.ErrValidation)
	}
	return s.CreditRepo.Balance(ctx, orgID)
}

func (s *creditService) Post(ctx context.Context, orgID string, amount decimal.Decimal, txType types.CreditTransactionType) (*credit.Transaction, error) {
	txn := &credit.Transaction{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_TRANSACTION),
		OrgID:     orgID,
		Amount:    amount,
		Type:      txType,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	if err := txn.Validate(); err != nil {
		return nil, err
	}
	if err := s.CreditRepo.Create(ctx, txn); err != nil {
		return nil, err
	}
	s.Logger.Infow("posted credit transaction",
		"org_id", orgID,
		"transaction_id", txn.ID,
		"type", txType,
		"amount", amount,
	)
	return txn, nil
}

func (s *creditService) TopUp(ctx context.Context, orgID string, amount decimal.Decimal) (*credit.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ierr.NewError("top up amount must be positive").
			WithHint("Top up amount must be greater than 0").
			WithReportableDetails(map[string]any{
				"amount": amount,
			}).
			Mark(ierr.ErrValidation)
	}
	return s.Post(ctx, orgID, amount, types.CreditTransactionTypeTopUp)
}

func (s *creditService) List(ctx context.Context, orgID string) ([]*credit.Transaction, error) {
	if orgID == "" {
		return nil, ierr.NewError("org_id is required").
			WithHint("Organization ID is required").
			Mark(ierr.ErrValidation)
	}
	return s.CreditRepo.List(ctx, orgID)
}
