package booking

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func wsRequest(token string) *http.Request {
	target := "/ws/bookings/b_test"
	if token != "" {
		target += "?token=" + token
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	return req
}

func TestHandleWSRejectsMissingToken(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleWS(rec, wsRequest(""), httprouter.Params{{Key: "bookingid", Value: "b_test"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleWSRejectsGarbageToken(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleWS(rec, wsRequest("not-a-jwt"), httprouter.Params{{Key: "bookingid", Value: "b_test"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
