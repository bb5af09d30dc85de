package service

import (
	"github.com/seatbill/seatbill/internal/config"
	"github.com/seatbill/seatbill/internal/domain/credit"
	"github.com/seatbill/seatbill/internal/domain/payment"
	"github.com/seatbill/seatbill/internal/domain/paymentmethod"
	"github.com/seatbill/seatbill/internal/domain/promotion"
	"github.com/seatbill/seatbill/internal/domain/proration"
	"github.com/seatbill/seatbill/internal/domain/subscription"
	"github.com/seatbill/seatbill/internal/logger"
	"github.com/seatbill/seatbill/internal/postgres"
)

// ServiceParams holds common dependencies for services.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	RefundCalculator proration.Calculator

	// Repositories
	SubRepo           subscription.Repository
	CreditRepo        credit.Repository
	PromotionRepo     promotion.Repository
	PaymentRepo       payment.Repository
	PaymentMethodRepo paymentmethod.Repository
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	refundCalculator proration.Calculator,
	subRepo subscription.Repository,
	creditRepo credit.Repository,
	promotionRepo promotion.Repository,
	paymentRepo payment.Repository,
	paymentMethodRepo paymentmethod.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:            logger,
		Config:            config,
		DB:                db,
		RefundCalculator:  refundCalculator,
		SubRepo:           subRepo,
		CreditRepo:        creditRepo,
		PromotionRepo:     promotionRepo,
		PaymentRepo:       paymentRepo,
		PaymentMethodRepo: paymentMethodRepo,
	}
}
