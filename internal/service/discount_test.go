package service

import (
	"testing"
	"time"

	"github.com/seatbill/seatbill/internal/domain/promotion"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/testutil"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DiscountServiceSuite struct {
	testutil.BaseServiceTestSuite
	service DiscountService
}

func TestDiscountService(t *testing.T) {
	suite.Run(t, new(DiscountServiceSuite))
}

func (s *DiscountServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewDiscountService(ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		DB:                s.GetDB(),
		SubRepo:           s.GetStores().SubscriptionRepo,
		CreditRepo:        s.GetStores().CreditRepo,
		PromotionRepo:     s.GetStores().PromotionRepo,
		PaymentRepo:       s.GetStores().PaymentRepo,
		PaymentMethodRepo: s.GetStores().PaymentMethodRepo,
	})
}

func (s *DiscountServiceSuite) createCode(code string, orgID *string, off float64, endingAt time.Time) {
	err := s.GetStores().PromotionRepo.Create(s.GetContext(), &promotion.Code{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PROMOTION_CODE),
		Code:          code,
		OrgID:         orgID,
		PercentageOff: decimal.NewFromFloat(off),
		EndingAt:      endingAt,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	})
	s.NoError(err)
}

func (s *DiscountServiceSuite) TestResolveGlobalCode() {
	s.createCode("SPRING15", nil, 0.15, s.GetNow().AddDate(0, 1, 0))

	discount, err := s.service.Resolve(s.GetContext(), "SPRING15", "org_1", s.GetNow())
	s.NoError(err)
	s.True(discount.Valid)
	s.True(decimal.NewFromFloat(0.15).Equal(discount.Percentage))
}

func (s *DiscountServiceSuite) TestResolveEmptyCode() {
	discount, err := s.service.Resolve(s.GetContext(), "", "org_1", s.GetNow())
	s.NoError(err)
	s.False(discount.Valid)
	s.True(discount.Percentage.IsZero())
}

func (s *DiscountServiceSuite) TestResolveUnknownCode() {
	discount, err := s.service.Resolve(s.GetContext(), "NOPE", "org_1", s.GetNow())
	s.NoError(err)
	s.False(discount.Valid)
	s.True(discount.Percentage.IsZero())
}

func (s *DiscountServiceSuite) TestResolveExpiredCode() {
	s.createCode("OLD10", nil, 0.10, s.GetNow().AddDate(0, 0, -1))

	discount, err := s.service.Resolve(s.GetContext(), "OLD10", "org_1", s.GetNow())
	s.NoError(err)
	s.False(discount.Valid)
}

func (s *DiscountServiceSuite) TestResolveExpiredCodeAsOfEarlierDate() {
	// The code has since expired but was valid at the requested point in
	// time, so it still resolves.
	s.createCode("OLD10", nil, 0.10, s.GetNow().AddDate(0, 0, -1))

	discount, err := s.service.Resolve(s.GetContext(), "OLD10", "org_1", s.GetNow().AddDate(0, 0, -5))
	s.NoError(err)
	s.True(discount.Valid)
	s.True(decimal.NewFromFloat(0.10).Equal(discount.Percentage))
}

func (s *DiscountServiceSuite) TestResolveForeignOrgCode() {
	owner := "org_owner"
	s.createCode("PRIVATE20", &owner, 0.20, s.GetNow().AddDate(0, 1, 0))

	discount, err := s.service.Resolve(s.GetContext(), "PRIVATE20", "org_other", s.GetNow())
	s.NoError(err)
	s.False(discount.Valid)

	discount, err = s.service.Resolve(s.GetContext(), "PRIVATE20", owner, s.GetNow())
	s.NoError(err)
	s.True(discount.Valid)
}

func (s *DiscountServiceSuite) TestResolveRepositoryFailurePropagates() {
	store := s.GetStores().PromotionRepo.(*testutil.InMemoryPromotionStore)
	store.GetErr = ierr.NewError("connection reset").Mark(ierr.ErrDatabase)

	_, err := s.service.Resolve(s.GetContext(), "ANY", "org_1", s.GetNow())
	s.Error(err)
	s.True(ierr.IsDatabase(err))
}
