package models

import "time"

// Booking statuses. A booking moves through these exactly once in the
// forward direction; duplicate webhook deliveries re-apply the same status.
const (
	BookingPending  = "pending"
	BookingPaid     = "paid"
	BookingExpired  = "expired"
	BookingFailed   = "failed"
	BookingRefunded = "refunded"
	BookingCanceled = "canceled"
)

// Customer holds the payer details captured from the checkout session.
type Customer struct {
	Email string `json:"email" bson:"email"`
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// TourItem is the single line item a booking is for.
type TourItem struct {
	TourID   string `json:"tourId" bson:"tour_id"`
	TourName string `json:"tourName" bson:"tour_name"`
	Quantity int64  `json:"quantity" bson:"quantity"`
	Date     string `json:"date,omitempty" bson:"date,omitempty"`
}

// Booking is the persistent record reconciled from payment events.
// SessionID is the checkout session id and never changes; everything
// else is overwritten by the latest delivery for that session.
type Booking struct {
	BookingID  string            `json:"bookingId" bson:"bookingid"`
	SessionID  string            `json:"sessionId" bson:"session_id"`
	PaymentRef string            `json:"paymentRef,omitempty" bson:"payment_ref,omitempty"`
	UserID     string            `json:"userId,omitempty" bson:"userid,omitempty"`
	Customer   Customer          `json:"customer" bson:"customer"`
	Item       TourItem          `json:"item" bson:"item"`
	Amount     int64             `json:"amount" bson:"amount"`
	Currency   string            `json:"currency" bson:"currency"`
	Status     string            `json:"status" bson:"status"`
	Metadata   map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time         `json:"updatedAt" bson:"updated_at"`
}
