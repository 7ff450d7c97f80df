package routes

import (
	"roamly/pay"
	"roamly/ratelim"

	"github.com/julienschmidt/httprouter"
)

func RoutesWrapper(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, checkout *pay.Checkout, reconciler *pay.Reconciler) {
	AddAuthRoutes(router, rateLimiter)
	AddTourRoutes(router, rateLimiter)
	AddBookingRoutes(router, rateLimiter)
	AddPayRoutes(router, rateLimiter, checkout, reconciler)
	AddReviewsRoutes(router, rateLimiter)
	AddSettingsRoutes(router, rateLimiter)
	AddStaticRoutes(router)
}
