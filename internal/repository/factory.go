package repository

import (
	"github.com/seatbill/seatbill/internal/domain/credit"
	"github.com/seatbill/seatbill/internal/domain/payment"
	"github.com/seatbill/seatbill/internal/domain/paymentmethod"
	"github.com/seatbill/seatbill/internal/domain/promotion"
	"github.com/seatbill/seatbill/internal/domain/subscription"
	"github.com/seatbill/seatbill/internal/logger"
	"github.com/seatbill/seatbill/internal/postgres"
	postgresRepo "github.com/seatbill/seatbill/internal/repository/postgres"
)

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewCreditRepository(db *postgres.DB, logger *logger.Logger) credit.Repository {
	return postgresRepo.NewCreditRepository(db, logger)
}

func NewPromotionRepository(db *postgres.DB, logger *logger.Logger) promotion.Repository {
	return postgresRepo.NewPromotionRepository(db, logger)
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(db, logger)
}

func NewPaymentMethodRepository(db *postgres.DB, logger *logger.Logger) paymentmethod.Repository {
	return postgresRepo.NewPaymentMethodRepository(db, logger)
}
