package testutil

import (
	"context"
	"time"

	"github.com/seatbill/seatbill/internal/config"
	"github.com/seatbill/seatbill/internal/domain/credit"
	"github.com/seatbill/seatbill/internal/domain/payment"
	"github.com/seatbill/seatbill/internal/domain/paymentmethod"
	"github.com/seatbill/seatbill/internal/domain/promotion"
	"github.com/seatbill/seatbill/internal/domain/subscription"
	"github.com/seatbill/seatbill/internal/logger"
	"github.com/seatbill/seatbill/internal/postgres"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing.
type Stores struct {
	SubscriptionRepo  subscription.Repository
	CreditRepo        credit.Repository
	PromotionRepo     promotion.Repository
	PaymentRepo       payment.Repository
	PaymentMethodRepo paymentmethod.Repository
}

// BaseServiceTestSuite provides common functionality for all service test
// suites: in-memory stores, a transaction client that restores the stores
// when a transaction fails, and a context carrying a test user.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	db     postgres.IClient
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite.
func (s *BaseServiceTestSuite) SetupSuite() {
	s.config = config.GetDefaultConfig()

	var err error
	s.logger, err = logger.NewLogger(s.config)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}

	subscriptionStore := NewInMemorySubscriptionStore()
	creditStore := NewInMemoryCreditStore()
	promotionStore := NewInMemoryPromotionStore()
	paymentStore := NewInMemoryPaymentStore()
	paymentMethodStore := NewInMemoryPaymentMethodStore()

	s.stores = Stores{
		SubscriptionRepo:  subscriptionStore,
		CreditRepo:        creditStore,
		PromotionRepo:     promotionStore,
		PaymentRepo:       paymentStore,
		PaymentMethodRepo: paymentMethodStore,
	}
	s.db = NewMockPostgresClient(s.logger,
		subscriptionStore, creditStore, promotionStore, paymentStore, paymentMethodStore)
}

// SetupTest is called before each test.
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = types.SetUserID(context.Background(), types.DefaultUserID)
	s.now = time.Now().UTC()
	s.ClearStores()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.SubscriptionRepo.(*InMemorySubscriptionStore).Clear()
	s.stores.CreditRepo.(*InMemoryCreditStore).Clear()
	s.stores.PromotionRepo.(*InMemoryPromotionStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
	s.stores.PaymentMethodRepo.(*InMemoryPaymentMethodStore).Clear()
}

// GetContext returns the test context.
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration.
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories.
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test database client.
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger.
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the time captured at test setup.
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
