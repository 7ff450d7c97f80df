package pay

import (
	"testing"

	"roamly/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{models.BookingPending, models.BookingPaid, true},
		{models.BookingPending, models.BookingExpired, true},
		{models.BookingPending, models.BookingFailed, true},
		{models.BookingPending, models.BookingCanceled, true},
		{models.BookingPaid, models.BookingRefunded, true},
		{models.BookingPaid, models.BookingCanceled, true},

		// redelivery of the same status is always allowed
		{models.BookingPaid, models.BookingPaid, true},
		{models.BookingExpired, models.BookingExpired, true},

		// terminal states don't move backwards or sideways
		{models.BookingPaid, models.BookingExpired, false},
		{models.BookingPaid, models.BookingFailed, false},
		{models.BookingExpired, models.BookingPaid, false},
		{models.BookingFailed, models.BookingPaid, false},
		{models.BookingRefunded, models.BookingPaid, false},
		{models.BookingCanceled, models.BookingPaid, false},
		{models.BookingExpired, models.BookingRefunded, false},
		{models.BookingPending, models.BookingRefunded, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
