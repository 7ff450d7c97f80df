package pay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGatewayRequiresSecrets(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")
	_, err := NewGateway()
	assert.Error(t, err)

	t.Setenv("STRIPE_SECRET_KEY", "sk_test_dummy")
	_, err = NewGateway()
	assert.Error(t, err)

	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_dummy")
	g, err := NewGateway()
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestVerifyEventRejectsTamperedPayload(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_dummy")
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	g, err := NewGateway()
	require.NoError(t, err)

	payload := `{"id": "evt_1", "type": "checkout.session.completed"}`
	req := signedRequest(t, payload)

	// Signature was computed over the original payload
	_, err = g.VerifyEvent([]byte(payload+" "), req.Header.Get("Stripe-Signature"))
	assert.Error(t, err)

	event, err := g.VerifyEvent([]byte(payload), req.Header.Get("Stripe-Signature"))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
}
