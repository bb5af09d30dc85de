package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/seatbill/seatbill/internal/api"
	v1 "github.com/seatbill/seatbill/internal/api/v1"
	"github.com/seatbill/seatbill/internal/config"
	"github.com/seatbill/seatbill/internal/domain/proration"
	"github.com/seatbill/seatbill/internal/geo"
	"github.com/seatbill/seatbill/internal/logger"
	"github.com/seatbill/seatbill/internal/postgres"
	"github.com/seatbill/seatbill/internal/repository"
	"github.com/seatbill/seatbill/internal/service"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC

	// Load .env if present; real deployments use environment variables
	_ = godotenv.Load()
}

func main() {
	app := fx.New(
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Postgres
			postgres.NewDB,
			provideDBClient,

			// Refund calculator
			proration.NewCalculator,

			// Geo resolver
			geo.NewResolver,

			// Repositories
			repository.NewSubscriptionRepository,
			repository.NewCreditRepository,
			repository.NewPromotionRepository,
			repository.NewPaymentRepository,
			repository.NewPaymentMethodRepository,

			// Services
			service.NewServiceParams,
			service.NewDiscountService,
			service.NewCreditService,
			service.NewBillingService,
			service.NewSubscriptionService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)
	app.Run()
}

func provideDBClient(db *postgres.DB) postgres.IClient {
	return db
}

func provideHandlers(
	logger *logger.Logger,
	geoResolver geo.Resolver,
	subscriptionService service.SubscriptionService,
	creditService service.CreditService,
) api.Handlers {
	return api.Handlers{
		Subscription: v1.NewSubscriptionHandler(subscriptionService, geoResolver, logger),
		Credit:       v1.NewCreditHandler(creditService, logger),
	}
}

func provideRouter(handlers api.Handlers) *gin.Engine {
	return api.NewRouter(handlers)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalw("server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			db.Close()
			return nil
		},
	})
}
