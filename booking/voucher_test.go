package booking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoucherPayloadRoundTrip(t *testing.T) {
	payload := VoucherPayload("b_abc123", "cs_test_1")

	parts := strings.Split(payload, "|")
	assert.Len(t, parts, 4)
	assert.Equal(t, "b_abc123", parts[0])
	assert.Equal(t, "cs_test_1", parts[1])

	assert.True(t, VerifyVoucherPayload(payload))
}

func TestVerifyVoucherPayloadRejectsTampering(t *testing.T) {
	payload := VoucherPayload("b_abc123", "cs_test_1")

	tampered := strings.Replace(payload, "b_abc123", "b_evil99", 1)
	assert.False(t, VerifyVoucherPayload(tampered))

	assert.False(t, VerifyVoucherPayload("no-separator"))
	assert.False(t, VerifyVoucherPayload(""))
}
