package pay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"roamly/emailer"
	"roamly/models"
	"roamly/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/stripe/stripe-go/v74"
)

// StatusNotifier pushes a booking status change to live subscribers.
type StatusNotifier func(bookingID, status string)

// Reconciler turns verified payment-provider events into booking state.
// All dependencies are injected so the webhook flow can be tested
// without Mongo or a live SMTP relay.
type Reconciler struct {
	gateway  *Gateway
	store    BookingStore
	mailer   emailer.Mailer
	notifier StatusNotifier
}

func NewReconciler(gateway *Gateway, store BookingStore, mailer emailer.Mailer, notifier StatusNotifier) *Reconciler {
	return &Reconciler{gateway: gateway, store: store, mailer: mailer, notifier: notifier}
}

// HandleWebhook verifies and dispatches a single provider delivery.
// Deliveries are acked with 200 unless the signature fails (400) or a
// completed booking could not be persisted (500, so the provider
// retries — the upsert is idempotent, so retries are safe).
func (rc *Reconciler) HandleWebhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	event, err := rc.gateway.VerifyEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		http.Error(w, "Webhook Error: signature verification failed", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	switch event.Type {
	case "checkout.session.completed":
		booking, err := rc.applySession(ctx, event, models.BookingPaid)
		if err != nil {
			log.Printf("failed to persist paid booking for event %s: %v", event.ID, err)
			http.Error(w, "failed to persist booking", http.StatusInternalServerError)
			return
		}
		if booking != nil {
			rc.sendConfirmation(booking)
		}

	case "checkout.session.expired":
		if _, err := rc.applySession(ctx, event, models.BookingExpired); err != nil {
			log.Printf("failed to persist expired booking for event %s: %v", event.ID, err)
		}

	case "checkout.session.async_payment_failed":
		if _, err := rc.applySession(ctx, event, models.BookingFailed); err != nil {
			log.Printf("failed to persist failed booking for event %s: %v", event.ID, err)
		}

	case "payment_intent.succeeded":
		// Informational only: the session-level completed event is the
		// authoritative signal for booking state.
		log.Printf("payment_intent.succeeded received (event %s)", event.ID)

	default:
		log.Printf("unhandled event type %s (event %s)", event.Type, event.ID)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"received": true})
}

// applySession upserts the booking described by the event's checkout
// session at the target status. A stale out-of-order delivery is logged
// and dropped without error; the returned booking is nil in that case.
func (rc *Reconciler) applySession(ctx context.Context, event stripe.Event, status string) (*models.Booking, error) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, err
	}

	booking := bookingFromSession(&sess, status)

	if err := rc.store.Upsert(ctx, booking); err != nil {
		if errors.Is(err, ErrStaleTransition) {
			log.Printf("dropping stale %s delivery for session %s", status, sess.ID)
			return nil, nil
		}
		return nil, err
	}

	// Subscribers waiting on the success page hear about the flip here.
	if rc.notifier != nil && booking.BookingID != "" {
		rc.notifier(booking.BookingID, booking.Status)
	}
	return booking, nil
}

// sendConfirmation sends the confirmation email. Failures are logged and
// swallowed; mail must never affect the webhook response.
func (rc *Reconciler) sendConfirmation(booking *models.Booking) {
	if booking.Customer.Email == "" {
		log.Printf("no customer email on session %s, skipping confirmation", booking.SessionID)
		return
	}
	if err := rc.mailer.SendBookingConfirmation(booking); err != nil {
		log.Printf("confirmation email for session %s failed: %v", booking.SessionID, err)
	}
}

// bookingFromSession maps a checkout session payload onto a booking.
// The line item is rebuilt from the metadata written at session
// creation; unknown metadata keys ride along untouched.
func bookingFromSession(sess *stripe.CheckoutSession, status string) *models.Booking {
	b := &models.Booking{
		SessionID: sess.ID,
		Status:    status,
		Amount:    sess.AmountTotal,
		Currency:  string(sess.Currency),
		Metadata:  sess.Metadata,
	}

	if sess.PaymentIntent != nil {
		b.PaymentRef = sess.PaymentIntent.ID
	}

	if sess.CustomerDetails != nil {
		b.Customer.Email = sess.CustomerDetails.Email
		b.Customer.Name = sess.CustomerDetails.Name
		b.Customer.Phone = sess.CustomerDetails.Phone
	}
	if b.Customer.Email == "" {
		b.Customer.Email = sess.CustomerEmail
	}

	b.Item.TourID = sess.Metadata["itemId"]
	b.Item.TourName = sess.Metadata["itemName"]
	b.Item.Date = sess.Metadata["date"]
	b.UserID = sess.Metadata["userId"]
	if qty, err := strconv.ParseInt(sess.Metadata["quantity"], 10, 64); err == nil && qty > 0 {
		b.Item.Quantity = qty
	} else {
		b.Item.Quantity = 1
	}

	return b
}
