package routes

import (
	"net/http"

	"roamly/auth"
	"roamly/booking"
	"roamly/middleware"
	"roamly/ratelim"
	"roamly/reviews"
	"roamly/settings"
	"roamly/tours"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rateLimiter.Limit(auth.RegisterHandler))
	router.POST("/api/auth/login", rateLimiter.Limit(auth.LoginHandler))
	router.POST("/api/auth/refresh", rateLimiter.Limit(auth.RefreshTokenHandler))
	router.POST("/api/auth/logout", rateLimiter.Limit(auth.LogoutHandler))
	router.POST("/api/auth/verify-otp", rateLimiter.Limit(auth.VerifyOTPHandler))
}

func AddTourRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/tours", rateLimiter.Limit(tours.GetTours))
	router.GET("/api/tours/:tourid", rateLimiter.Limit(tours.GetTour))

	router.POST("/api/tours",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(tours.CreateTour))
	router.PUT("/api/tours/:tourid",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(tours.EditTour))
	router.DELETE("/api/tours/:tourid",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(tours.DeleteTour))
	router.POST("/api/tours/:tourid/banner",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(tours.UploadBanner))
}

func AddBookingRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/bookings",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(booking.GetMyBookings))
	router.GET("/api/bookings/:bookingid",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(booking.GetBooking))
	router.POST("/api/bookings/:bookingid/cancel",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(booking.CancelBooking))
	router.GET("/api/bookings/:bookingid/voucher",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(booking.DownloadVoucher))

	router.GET("/ws/bookings/:bookingid", rateLimiter.Limit(booking.HandleWS))
}

func AddReviewsRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/tours/:tourid/reviews", rateLimiter.Limit(reviews.GetReviews))
	router.POST("/api/tours/:tourid/reviews",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(reviews.AddReview))
	router.PUT("/api/tours/:tourid/reviews/:reviewId",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(reviews.EditReview))
	router.DELETE("/api/tours/:tourid/reviews/:reviewId",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(reviews.DeleteReview))
}

func AddSettingsRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/settings",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(settings.GetUserSettings))
	router.PUT("/api/settings/:type",
		middleware.Chain(rateLimiter.Limit, middleware.Authenticate)(settings.UpdateUserSetting))
}

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/*filepath", http.Dir("static"))
}
