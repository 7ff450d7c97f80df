package emailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "150.00 USD", FormatAmount(15000, "usd"))
	assert.Equal(t, "99.05 EUR", FormatAmount(9905, "eur"))
	assert.Equal(t, "0.01 USD", FormatAmount(1, "USD"))
}

func TestSendWithoutConfigFails(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	m := NewSMTPMailer()
	err := m.Send("a@example.com", "subject", "body")
	assert.Error(t, err)
}
