package pay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"roamly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

// fakeStore applies the same transition rules as MongoStore, in memory.
type fakeStore struct {
	bookings map[string]*models.Booking
	failNext error
	upserts  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: make(map[string]*models.Booking)}
}

func (s *fakeStore) Upsert(_ context.Context, b *models.Booking) error {
	s.upserts++
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	if existing, ok := s.bookings[b.SessionID]; ok {
		if !CanTransition(existing.Status, b.Status) {
			return ErrStaleTransition
		}
		b.CreatedAt = existing.CreatedAt
		b.BookingID = existing.BookingID
	} else {
		b.CreatedAt = time.Now()
		b.BookingID = "b_test"
	}
	b.UpdatedAt = time.Now()
	cp := *b
	s.bookings[b.SessionID] = &cp
	return nil
}

func (s *fakeStore) GetBySession(_ context.Context, sessionID string) (*models.Booking, error) {
	b, ok := s.bookings[sessionID]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

type fakeMailer struct {
	sent     []*models.Booking
	failNext error
}

func (m *fakeMailer) Send(to, subject, body string) error { return nil }

func (m *fakeMailer) SendBookingConfirmation(b *models.Booking) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.sent = append(m.sent, b)
	return nil
}

// notifyLog records status-change notifications as "bookingID:status".
type notifyLog struct {
	events []string
}

func (n *notifyLog) record(bookingID, status string) {
	n.events = append(n.events, bookingID+":"+status)
}

func newTestReconciler(t *testing.T) (*Reconciler, *fakeStore, *fakeMailer, *notifyLog) {
	t.Helper()
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_dummy")
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	gateway, err := NewGateway()
	require.NoError(t, err)

	store := newFakeStore()
	mailer := &fakeMailer{}
	notes := &notifyLog{}
	return NewReconciler(gateway, store, mailer, notes.record), store, mailer, notes
}

// signedRequest builds a webhook POST with a valid Stripe-Signature header.
func signedRequest(t *testing.T, payload string) *http.Request {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	sig := hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/pay/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts, sig))
	return req
}

func sessionEvent(eventType, sessionID string, amount int64, extra string) string {
	return fmt.Sprintf(`{
		"id": "evt_test",
		"type": %q,
		"data": {
			"object": {
				"id": %q,
				"object": "checkout.session",
				"amount_total": %d,
				"currency": "usd",
				"payment_intent": "pi_test_123",
				"customer_details": {"email": "a@example.com", "name": "Ada"},
				"metadata": {"itemId": "tour-1", "itemName": "Reef Snorkel", "quantity": "2"}%s
			}
		}
	}`, eventType, sessionID, amount, extra)
}

func TestWebhookCompletedEndToEnd(t *testing.T) {
	rc, store, mailer, notes := newTestReconciler(t)

	rec := httptest.NewRecorder()
	rc.HandleWebhook(rec, signedRequest(t, sessionEvent("checkout.session.completed", "cs_1", 15000, "")), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received": true}`, rec.Body.String())

	b, err := store.GetBySession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaid, b.Status)
	assert.Equal(t, int64(15000), b.Amount)
	assert.Equal(t, "usd", b.Currency)
	assert.Equal(t, "a@example.com", b.Customer.Email)
	assert.Equal(t, "pi_test_123", b.PaymentRef)
	assert.Equal(t, "tour-1", b.Item.TourID)
	assert.Equal(t, int64(2), b.Item.Quantity)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "a@example.com", mailer.sent[0].Customer.Email)

	// The success page's subscribers hear about the paid flip.
	assert.Equal(t, []string{"b_test:" + models.BookingPaid}, notes.events)
}

func TestWebhookDuplicateDeliveryIsIdempotent(t *testing.T) {
	rc, store, _, _ := newTestReconciler(t)

	rec := httptest.NewRecorder()
	rc.HandleWebhook(rec, signedRequest(t, sessionEvent("checkout.session.completed", "cs_dup", 15000, "")), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Redelivery of the same session with updated fields: last write wins.
	rec = httptest.NewRecorder()
	rc.HandleWebhook(rec, signedRequest(t, sessionEvent("checkout.session.completed", "cs_dup", 17500, "")), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Len(t, store.bookings, 1)
	b := store.bookings["cs_dup"]
	assert.Equal(t, int64(17500), b.Amount)
	assert.Equal(t, models.BookingPaid, b.Status)
}

func TestWebhookStatusMapping(t *testing.T) {
	cases := []struct {
		eventType string
		want      string
	}{
		{"checkout.session.completed", models.BookingPaid},
		{"checkout.session.expired", models.BookingExpired},
		{"checkout.session.async_payment_failed", models.BookingFailed},
	}

	for _, tc := range cases {
		t.Run(tc.eventType, func(t *testing.T) {
			rc, store, _, notes := newTestReconciler(t)

			rec := httptest.NewRecorder()
			rc.HandleWebhook(rec, signedRequest(t, sessionEvent(tc.eventType, "cs_map", 5000, "")), nil)

			assert.Equal(t, http.StatusOK, rec.Code)
			b, err := store.GetBySession(context.Background(), "cs_map")
			require.NoError(t, err)
			assert.Equal(t, tc.want, b.Status)
			assert.Equal(t, []string{"b_test:" + tc.want}, notes.events)
		})
	}
}

func TestWebhookExpiredCreatesUnseenBooking(t *testing.T) {
	rc, store, mailer, _ := newTestReconciler(t)

	rec := httptest.NewRecorder()
	rc.HandleWebhook(rec, signedRequest(t, sessionEvent("checkout.session.expired", "cs_unseen", 9900, "")), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	b, err := store.GetBySession(context.Background(), "cs_unseen")
	require.NoError(t, err)
	assert.Equal(t, models.BookingExpired, b.Status)
	assert.Empty(t, mailer.sent)
}

func TestWebhookBadSignature(t *testing.T) {
	rc, store, mailer, notes := newTestReconciler(t)

	payload := sessionEvent("checkout.session.completed", "cs_bad", 15000, "")

	// Garbage signature
	req := httptest.NewRequest(http.MethodPost, "/api/pay/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=12345,v1=deadbeef")
	rec := httptest.NewRecorder()
	rc.HandleWebhook(rec, req, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing header entirely
	req = httptest.NewRequest(http.MethodPost, "/api/pay/webhook", strings.NewReader(payload))
	rec = httptest.NewRecorder()
	rc.HandleWebhook(rec, req, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Zero(t, store.upserts)
	assert.Empty(t, mailer.sent)
	assert.Empty(t, notes.events)
}

func TestWebhookUnknownEventTypeIsAcked(t *testing.T) {
	rc, store, mailer, notes := newTestReconciler(t)

	payload := `{"id": "evt_cust", "type": "customer.created", "data": {"object": {"id": "cus_1"}}}`
	rec := httptest.NewRecorder()
	rc.HandleWebhook(rec, signedRequest(t, payload), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, store.upserts)
	assert.Empty(t, mailer.sent)
	assert.Empty(t, notes.events)
}

func TestWebhookStoreFailureOnCompletedReturns500(t *testing.T) {
	rc, store, mailer, notes := newTestReconciler(t)
	store.failNext = errors.New("mongo down")

	rec := httptest.NewRecorder()
	rc.HandleWebhook(rec, signedRequest(t, sessionEvent("checkout.session.completed", "cs_fail", 15000, "")), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, mailer.sent)
	assert.Empty(t, notes.events)
}

func TestWebhookStoreFailureOnExpiredStillAcks(t *testing.T) {
	rc, store, _, _ := newTestReconciler(t)
	store.failNext = errors.New("mongo down")

	rec := httptest.NewRecorder()
	rc.HandleWebhook(rec, signedRequest(t, sessionEvent("checkout.session.expired", "cs_fail2", 9900, "")), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.bookings)
}

func TestWebhookMailFailureDoesNotAffectResponse(t *testing.T) {
	rc, store, mailer, _ := newTestReconciler(t)
	mailer.failNext = errors.New("smtp timeout")

	rec := httptest.NewRecorder()
	rc.HandleWebhook(rec, signedRequest(t, sessionEvent("checkout.session.completed", "cs_mail", 15000, "")), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	b, err := store.GetBySession(context.Background(), "cs_mail")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaid, b.Status)
	assert.Empty(t, mailer.sent)
}

func TestWebhookStaleExpiryAfterPaidIsDropped(t *testing.T) {
	rc, store, _, notes := newTestReconciler(t)

	rec := httptest.NewRecorder()
	rc.HandleWebhook(rec, signedRequest(t, sessionEvent("checkout.session.completed", "cs_ooo", 15000, "")), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	rc.HandleWebhook(rec, signedRequest(t, sessionEvent("checkout.session.expired", "cs_ooo", 15000, "")), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	b, err := store.GetBySession(context.Background(), "cs_ooo")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaid, b.Status)

	// The dropped stale delivery must not trigger a second notification.
	assert.Equal(t, []string{"b_test:" + models.BookingPaid}, notes.events)
}
