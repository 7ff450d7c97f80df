package pay

import (
	"fmt"
	"os"

	"roamly/models"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/webhook"
)

// Gateway wraps the Stripe client. Construction fails fast when the
// keys are missing so a misconfigured deploy dies at startup instead
// of silently accepting unverifiable webhooks.
type Gateway struct {
	webhookSecret string
	successURL    string
	cancelURL     string
}

func NewGateway() (*Gateway, error) {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is not set")
	}
	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET is not set")
	}

	stripe.Key = key

	g := &Gateway{
		webhookSecret: secret,
		successURL:    os.Getenv("CHECKOUT_SUCCESS_URL"),
		cancelURL:     os.Getenv("CHECKOUT_CANCEL_URL"),
	}
	if g.successURL == "" {
		g.successURL = "http://localhost:3000/booking/success?session_id={CHECKOUT_SESSION_ID}"
	}
	if g.cancelURL == "" {
		g.cancelURL = "http://localhost:3000/booking/canceled"
	}
	return g, nil
}

// VerifyEvent checks the Stripe-Signature header against the raw payload.
// API version mismatches between the SDK and the account are tolerated.
func (g *Gateway) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	opts := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	return webhook.ConstructEventWithOptions(payload, sigHeader, g.webhookSecret, opts)
}

// CreateSession opens a hosted checkout session for a tour booking.
// The metadata carries everything the webhook reconciler needs to
// rebuild the booking without a catalog lookup.
func (g *Gateway) CreateSession(tour *models.Tour, userID, email, date string, quantity int64) (*stripe.CheckoutSession, error) {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(tour.Name),
	}
	if tour.Location != "" {
		product.Description = stripe.String(tour.Location)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(tour.Currency),
					UnitAmount:  stripe.Int64(tour.Price),
					ProductData: product,
				},
				Quantity: stripe.Int64(quantity),
			},
		},
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	params.AddMetadata("itemId", tour.TourID)
	params.AddMetadata("itemName", tour.Name)
	params.AddMetadata("quantity", fmt.Sprintf("%d", quantity))
	if date != "" {
		params.AddMetadata("date", date)
	}
	if userID != "" {
		params.AddMetadata("userId", userID)
	}

	return session.New(params)
}
