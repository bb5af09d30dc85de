package service

import (
	"context"
	"time"

	"github.com/seatbill/seatbill/internal/domain/promotion"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/shopspring/decimal"
)

// DiscountService resolves promotion codes into applicable discounts.
type DiscountService interface {
	// Resolve maps a code to a discount for orgID as of asOf. Unknown,
	// expired, or foreign codes resolve to a zero, invalid discount
	// rather than an error; only infrastructure failures are returned.
	Resolve(ctx context.Context, code string, orgID string, asOf time.Time) (promotion.DiscountInfo, error)
}

type discountService struct {
	ServiceParams
}

func NewDiscountService(params ServiceParams) DiscountService {
	return &discountService{
		ServiceParams: params,
	}
}

func (s *discountService) Resolve(ctx context.Context, code string, orgID string, asOf time.Time) (promotion.DiscountInfo, error) {
	none := promotion.DiscountInfo{Percentage: decimal.Zero, Valid: false}

	if code == "" {
		return none, nil
	}

	promo, err := s.PromotionRepo.GetByCode(ctx, code)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Debugw("promotion code not found", "code", code, "org_id", orgID)
			return none, nil
		}
		return none, err
	}

	if !promo.UsableBy(orgID, asOf) {
		s.Logger.Debugw("promotion code not usable",
			"code", code,
			"org_id", orgID,
			"ending_at", promo.EndingAt,
		)
		return none, nil
	}

	return promotion.DiscountInfo{
		Percentage: promo.PercentageOff,
		Valid:      true,
	}, nil
}
