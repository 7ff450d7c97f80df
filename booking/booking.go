package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"roamly/db"
	"roamly/globals"
	"roamly/models"
	"roamly/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GET /api/bookings
// Lists the caller's bookings, newest first.
func GetMyBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := utils.ParsePagination(r, 10, 100)

	filter := bson.M{"userid": userID}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	opts := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	bookings, err := utils.FindAndDecode[models.Booking](ctx, db.BookingsCollection, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve bookings")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": http.StatusOK, "ok": true, "bookings": bookings})
}

// GET /api/bookings/:bookingid
func GetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, ok := loadOwnedBooking(ctx, w, r, ps.ByName("bookingid"))
	if !ok {
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, b)
}

// POST /api/bookings/:bookingid/cancel
// Cancellation is a status transition, not a delete; the document stays
// for reconciliation and audit. Only pending and paid bookings cancel.
func CancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, ok := loadOwnedBooking(ctx, w, r, ps.ByName("bookingid"))
	if !ok {
		return
	}

	res, err := db.BookingsCollection.UpdateOne(ctx,
		bson.M{
			"bookingid": b.BookingID,
			"status":    bson.M{"$in": []string{models.BookingPending, models.BookingPaid}},
		},
		bson.M{"$set": bson.M{"status": models.BookingCanceled, "updated_at": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to cancel booking")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusConflict, "Booking cannot be canceled in its current state")
		return
	}

	NotifyStatus(b.BookingID, models.BookingCanceled)

	utils.SendResponse(w, http.StatusOK, utils.M{"status": models.BookingCanceled}, "Booking canceled", nil)
}

// NotifyStatus pushes a status change to every live subscriber of the
// booking. The webhook reconciler calls this after a persisted
// transition so the success page sees the flip without polling.
func NotifyStatus(bookingID, status string) {
	payload, err := json.Marshal(utils.M{"bookingId": bookingID, "status": status})
	if err != nil {
		return
	}
	Broadcast(bookingID, payload)
}

// loadOwnedBooking fetches a booking and enforces owner-or-admin access.
// Writes the error response itself.
func loadOwnedBooking(ctx context.Context, w http.ResponseWriter, r *http.Request, bookingID string) (*models.Booking, bool) {
	var b models.Booking
	if err := db.BookingsCollection.FindOne(ctx, bson.M{"bookingid": bookingID}).Decode(&b); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return nil, false
	}

	userID := utils.GetUserIDFromRequest(r)
	roles, _ := r.Context().Value(globals.RoleKey).([]string)
	if b.UserID != userID && !slices.Contains(roles, "admin") {
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
		return nil, false
	}
	return &b, true
}
