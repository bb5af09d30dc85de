package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/seatbill/seatbill/internal/api/v1"
	"github.com/seatbill/seatbill/internal/rest/middleware"
)

type Handlers struct {
	Subscription *v1.SubscriptionHandler
	Credit       *v1.CreditHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Subscription routes
	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.POST("", handlers.Subscription.PurchaseSubscription)
		subscriptions.POST("/preview", handlers.Subscription.PreviewSubscription)
		subscriptions.POST("/trial", handlers.Subscription.StartTrial)
		subscriptions.POST("/:org_id/renew", handlers.Subscription.RenewSubscription)
		subscriptions.GET("/:org_id/current", handlers.Subscription.GetCurrentSubscription)
		subscriptions.GET("/:org_id/blocks", handlers.Subscription.ListBlockHistory)
	}

	// Credit routes
	credits := router.Group("/credits")
	{
		credits.GET("/:org_id/balance", handlers.Credit.GetBalance)
		credits.GET("/:org_id/transactions", handlers.Credit.ListTransactions)
		credits.POST("/topup", handlers.Credit.TopUp)
	}
}
