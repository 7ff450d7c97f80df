package routes

import (
	"roamly/middleware"
	"roamly/pay"
	"roamly/ratelim"

	"github.com/julienschmidt/httprouter"
)

// AddPayRoutes wires the checkout and webhook handlers. The webhook
// endpoint is deliberately outside auth and rate limiting: the provider
// authenticates with its signature, and throttling it only delays
// reconciliation.
func AddPayRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, checkout *pay.Checkout, reconciler *pay.Reconciler) {
	router.POST("/api/pay/checkout",
		middleware.Chain(
			rateLimiter.Limit,
			middleware.Authenticate,
			middleware.RequireRoles("user", "admin"),
		)(checkout.CreateSession),
	)

	router.GET("/api/pay/session/:sessionId",
		middleware.Chain(
			rateLimiter.Limit,
			middleware.Authenticate,
		)(checkout.GetSession),
	)

	router.POST("/api/pay/webhook", reconciler.HandleWebhook)
}
