package pay

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"roamly/db"
	"roamly/models"
	"roamly/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Checkout creates hosted payment sessions for tours and records the
// pending booking that the webhook reconciler later settles.
type Checkout struct {
	gateway *Gateway
	store   BookingStore
}

func NewCheckout(gateway *Gateway, store BookingStore) *Checkout {
	return &Checkout{gateway: gateway, store: store}
}

// POST /api/pay/checkout
func (c *Checkout) CreateSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)

	var input struct {
		TourID   string `json:"tourId"`
		Quantity int64  `json:"quantity"`
		Date     string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.TourID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Quantity < 1 {
		input.Quantity = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var tour models.Tour
	if err := db.ToursCollection.FindOne(ctx, bson.M{"tourid": input.TourID}).Decode(&tour); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Tour not found")
		return
	}

	var user models.User
	email := ""
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&user); err == nil {
		email = user.Email
	}

	sess, err := c.gateway.CreateSession(&tour, userID, email, input.Date, input.Quantity)
	if err != nil {
		log.Printf("checkout session creation failed for tour %s: %v", input.TourID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create checkout session")
		return
	}

	booking := &models.Booking{
		SessionID: sess.ID,
		UserID:    userID,
		Status:    models.BookingPending,
		Amount:    tour.Price * input.Quantity,
		Currency:  tour.Currency,
		Customer:  models.Customer{Email: email},
		Item: models.TourItem{
			TourID:   tour.TourID,
			TourName: tour.Name,
			Quantity: input.Quantity,
			Date:     input.Date,
		},
	}
	if err := c.store.Upsert(ctx, booking); err != nil {
		log.Printf("failed to record pending booking for session %s: %v", sess.ID, err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"sessionId": sess.ID,
		"url":       sess.URL,
	})
}

// GET /api/pay/session/:sessionId
// Lets the success page poll for the reconciled state of its booking.
func (c *Checkout) GetSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	booking, err := c.store.GetBySession(ctx, ps.ByName("sessionId"))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	if booking.UserID != "" && booking.UserID != userID {
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, booking)
}
