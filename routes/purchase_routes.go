package routes

import (
	"github.com/gin-gonic/gin"

	"handicapper/internal/handlers"
	"handicapper/internal/middleware"
)

// SetupPurchaseRoutes sets up purchase routes and the payment webhook
func SetupPurchaseRoutes(r *gin.RouterGroup, verifier middleware.TokenVerifier, purchaseHandler *handlers.PurchaseHandler) {
	// Public webhook routes (signature verified by the handler)
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/stripe", purchaseHandler.StripeWebhook)
	}

	purchases := r.Group("/purchases")
	purchases.Use(middleware.AuthRequired(verifier))
	{
		purchases.POST("/picks", purchaseHandler.PurchasePick)
		purchases.POST("/subscriptions", purchaseHandler.PurchaseSubscription)
		purchases.POST("/restore", purchaseHandler.RestorePurchases)
		purchases.POST("/:id/refund", purchaseHandler.RefundTransaction)

		// History
		purchases.GET("", purchaseHandler.GetTransactions)
		purchases.GET("/subscriptions", purchaseHandler.GetSubscriptions)
	}
}
