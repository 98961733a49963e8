package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func int64p(v int64) *int64 { return &v }

func TestValidatePartialAmount(t *testing.T) {
	// 2 pax at 11000 each: total 22000.
	cases := []struct {
		name          string
		paymentType   string
		partialAmount *int64
		want          error
	}{
		{"full payment ignores partial", PaymentFull, nil, nil},
		{"partial without amount", PaymentPartial, nil, ErrPartialAmountRequired},
		{"partial with zero amount", PaymentPartial, int64p(0), ErrPartialAmountRequired},
		{"partial with negative amount", PaymentPartial, int64p(-500), ErrPartialAmountRequired},
		{"partial below total", PaymentPartial, int64p(10000), nil},
		{"partial equal to total", PaymentPartial, int64p(22000), ErrPartialAmountTooHigh},
		{"partial above total", PaymentPartial, int64p(25000), ErrPartialAmountTooHigh},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidatePartialAmount(c.paymentType, c.partialAmount, 11000, 2)
			assert.ErrorIs(t, err, c.want)
		})
	}
}

func TestInitialBookingStatus(t *testing.T) {
	assert.Equal(t, BookingConfirmed, InitialBookingStatus(PaymentFull))
	assert.Equal(t, BookingPending, InitialBookingStatus(PaymentPartial))
}

func TestTicketStatusOnCreate(t *testing.T) {
	assert.Equal(t, TicketSold, TicketStatusOnCreate(PaymentFull))
	assert.Equal(t, TicketLocked, TicketStatusOnCreate(PaymentPartial))
}

func TestCascadeTicketStatus(t *testing.T) {
	status, ok := CascadeTicketStatus(BookingConfirmed)
	assert.True(t, ok)
	assert.Equal(t, TicketSold, status)

	status, ok = CascadeTicketStatus(BookingCancelled)
	assert.True(t, ok)
	assert.Equal(t, TicketAvailable, status)

	status, ok = CascadeTicketStatus(BookingExpired)
	assert.True(t, ok)
	assert.Equal(t, TicketAvailable, status)

	_, ok = CascadeTicketStatus(BookingPending)
	assert.False(t, ok)
}

func TestCollectedAmount(t *testing.T) {
	assert.Equal(t, int64(22000), CollectedAmount(PaymentFull, nil, 11000, 2))
	assert.Equal(t, int64(8000), CollectedAmount(PaymentPartial, int64p(8000), 11000, 2))
	assert.Equal(t, int64(0), CollectedAmount(PaymentPartial, nil, 11000, 2))
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidBookingStatus(BookingExpired))
	assert.False(t, ValidBookingStatus("done"))
	assert.True(t, ValidPaymentType(PaymentPartial))
	assert.False(t, ValidPaymentType("credit"))
	assert.True(t, ValidTicketStatus(TicketBooked))
	assert.False(t, ValidTicketStatus("reserved"))
	assert.True(t, ValidRole(RoleManager))
	assert.False(t, ValidRole("owner"))
	assert.True(t, ValidUserStatus(UserInactive))
	assert.False(t, ValidUserStatus("banned"))
}
