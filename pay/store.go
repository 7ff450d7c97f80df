package pay

import (
	"context"
	"errors"
	"time"

	"roamly/db"
	"roamly/models"
	"roamly/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrStaleTransition is returned when a delivery arrives for a booking
// whose current status does not allow the requested transition, e.g. an
// expiry event landing after the session was already paid.
var ErrStaleTransition = errors.New("booking status transition not allowed")

// allowedPredecessors maps a target status to the statuses a booking may
// currently hold for the transition to apply. Re-applying the same status
// is always allowed so redeliveries stay idempotent.
var allowedPredecessors = map[string][]string{
	models.BookingPaid:     {models.BookingPending},
	models.BookingExpired:  {models.BookingPending},
	models.BookingFailed:   {models.BookingPending},
	models.BookingCanceled: {models.BookingPending, models.BookingPaid},
	models.BookingRefunded: {models.BookingPaid},
	models.BookingPending:  {},
}

// CanTransition reports whether a booking currently in `from` may move to `to`.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, s := range allowedPredecessors[to] {
		if s == from {
			return true
		}
	}
	return false
}

// BookingStore persists reconciled bookings. The reconciler depends on
// this interface rather than the Mongo collection directly.
type BookingStore interface {
	Upsert(ctx context.Context, b *models.Booking) error
	GetBySession(ctx context.Context, sessionID string) (*models.Booking, error)
}

// MongoStore is the production BookingStore over the bookings collection.
type MongoStore struct{}

func NewMongoStore() *MongoStore {
	return &MongoStore{}
}

// Upsert applies b atomically, keyed by session id. The filter only
// matches documents whose status permits the transition to b.Status; when
// it matches nothing and a document for the session already exists, the
// insert attempt trips the unique session_id index and the delivery is
// rejected as stale. Mutable fields follow last-write-wins.
func (s *MongoStore) Upsert(ctx context.Context, b *models.Booking) error {
	now := time.Now()

	statuses := append([]string{b.Status}, allowedPredecessors[b.Status]...)
	filter := bson.M{
		"session_id": b.SessionID,
		"status":     bson.M{"$in": statuses},
	}

	set := bson.M{
		"status":     b.Status,
		"amount":     b.Amount,
		"currency":   b.Currency,
		"customer":   b.Customer,
		"item":       b.Item,
		"metadata":   b.Metadata,
		"updated_at": now,
	}
	if b.PaymentRef != "" {
		set["payment_ref"] = b.PaymentRef
	}
	if b.UserID != "" {
		set["userid"] = b.UserID
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"bookingid":  "b" + utils.GenerateRandomString(12),
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var applied models.Booking
	if err := db.BookingsCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&applied); err != nil {
		if isDuplicateKeyError(err) {
			return ErrStaleTransition
		}
		return err
	}

	b.BookingID = applied.BookingID
	b.CreatedAt = applied.CreatedAt
	b.UpdatedAt = applied.UpdatedAt
	return nil
}

func (s *MongoStore) GetBySession(ctx context.Context, sessionID string) (*models.Booking, error) {
	var b models.Booking
	err := db.BookingsCollection.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return false
}
