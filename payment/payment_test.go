package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayfront/frontdesk-engine/actor"
	"github.com/stayfront/frontdesk-engine/booking"
	"github.com/stayfront/frontdesk-engine/calendar"
	"github.com/stayfront/frontdesk-engine/hold"
	"github.com/stayfront/frontdesk-engine/payment"
	"github.com/stayfront/frontdesk-engine/pms/pmstest"
)

var admin = actor.Actor{Role: actor.RoleAdmin, ID: "admin-1", Label: "Front Office"}

func bookingContext() *booking.Context {
	return &booking.Context{
		Stay: booking.Stay{
			From:   calendar.MustParseDate("2026-09-01"),
			To:     calendar.MustParseDate("2026-09-03"),
			Nights: 2,
		},
		RoomType: booking.RoomType{
			ID:                 "rt-1",
			PropertyRoomTypeID: "prt-1",
			MinOccupancy:       1,
			Occupancy:          2,
			ExtraBedCapacity:   1,
			Rooms: []booking.ContextRoom{
				{ID: "room-101", Label: "101", AvailableForStay: true},
			},
		},
		MealPlans: []booking.PlanOption{
			{
				ID: "prtmp-1", MealPlanID: "mp-cp", MealPlanName: "Continental Plan",
				Rates: booking.PlanRates{DoubleOccupancy: decimal.NewFromInt(5000)},
			},
		},
		CanFulfilRequest: true,
	}
}

// heldBooking assembles a draft with a placed hold: the precondition of both
// payment workflows.
func heldBooking(t *testing.T, fake *pmstest.Fake) (*booking.Controller, *hold.Controller) {
	t.Helper()
	fake.SetContextResponse(bookingContext())
	drafts := booking.NewController(fake, "prop-1")
	drafts.SetClock(func() calendar.Date { return calendar.MustParseDate("2026-08-28") })
	require.NoError(t, drafts.Start(context.Background(), "prt-1", "room-101", calendar.MustParseDate("2026-09-01")))

	holds := hold.NewController(fake, drafts, "prop-1", admin)
	require.NoError(t, holds.Submit(context.Background()))
	return drafts, holds
}

// ===== PAYMENT LINK =====

func TestSaveRecipient_Validation(t *testing.T) {
	fake := &pmstest.Fake{}
	drafts, holds := heldBooking(t, fake)
	c := payment.NewLinkController(fake, drafts, holds, "prop-1", admin)

	tests := []struct {
		name            string
		full, email, ph string
		wantErr         bool
	}{
		{"valid with email", "Priya Nair", "priya@example.com", "9876543210", false},
		{"valid without email", "Priya Nair", "", "9876543210", false},
		{"name too short", "P", "", "9876543210", true},
		{"phone too short", "Priya Nair", "", "98765", true},
		{"phone with letters", "Priya Nair", "", "98765abcde", true},
		{"bad email", "Priya Nair", "not-an-email", "9876543210", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.SaveRecipient(tt.full, tt.email, tt.ph)
			if tt.wantErr {
				assert.ErrorIs(t, err, payment.ErrRecipientInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateLink_GatedOnHoldAndRecipient(t *testing.T) {
	fake := &pmstest.Fake{}
	drafts, holds := heldBooking(t, fake)
	c := payment.NewLinkController(fake, drafts, holds, "prop-1", admin)

	// no recipient saved yet
	assert.ErrorIs(t, c.Create(context.Background()), payment.ErrNoRecipient)

	// no hold: the gate closes again after a reset
	require.NoError(t, c.SaveRecipient("Priya Nair", "", "9876543210"))
	holds.Reset()
	assert.ErrorIs(t, c.Create(context.Background()), payment.ErrNoHold)
	assert.Empty(t, fake.LinkCalls)
}

func TestCreateLink_SendsHeldBookingPayload(t *testing.T) {
	fake := &pmstest.Fake{}
	drafts, holds := heldBooking(t, fake)
	c := payment.NewLinkController(fake, drafts, holds, "prop-1", admin)
	require.NoError(t, c.SaveRecipient("Priya Nair", "priya@example.com", "9876543210"))

	require.NoError(t, c.Create(context.Background()))

	require.Len(t, fake.LinkCalls, 1)
	payload := fake.LinkCalls[0]
	assert.Equal(t, "prt-1", payload.Booking.PropertyRoomTypeID)
	assert.Equal(t, []string{"room-101"}, payload.Booking.RoomIDs)
	assert.Equal(t, []string{"hold-1"}, payload.HoldRecordIDs)
	assert.Equal(t, "Priya Nair", payload.Recipient.FullName)
	assert.Equal(t, "Front Office", payload.CreatedBy.Label)
	// 2 nights x 5000 double puts the room past the 7500 bracket: 18% tax
	assert.True(t, payload.Pricing.Total.Equal(decimal.NewFromInt(11800)))

	receipt, ok := c.State().Value()
	require.True(t, ok)
	assert.Equal(t, "https://pay.example/link-1", receipt.URL)

	// resending rebuilds and submits the same payload afresh
	require.NoError(t, c.Create(context.Background()))
	assert.Len(t, fake.LinkCalls, 2)
}

func TestLinkReset_KeepsRecipient(t *testing.T) {
	fake := &pmstest.Fake{}
	drafts, holds := heldBooking(t, fake)
	c := payment.NewLinkController(fake, drafts, holds, "prop-1", admin)
	require.NoError(t, c.SaveRecipient("Priya Nair", "", "9876543210"))
	require.NoError(t, c.Create(context.Background()))

	c.Reset()

	assert.True(t, c.State().IsIdle())
	r, ok := c.Recipient()
	require.True(t, ok)
	assert.Equal(t, "Priya Nair", r.FullName)
}

// ===== CASH =====

func validCashForm() payment.CashForm {
	return payment.CashForm{
		FullName:    "Priya Nair",
		Email:       "priya@example.com",
		Phone:       "9876543210",
		ReceivedBy:  "Asha",
		PaymentDate: calendar.MustParseDate("2026-08-28"),
	}
}

func newCash(t *testing.T, fake *pmstest.Fake) *payment.CashController {
	t.Helper()
	drafts, holds := heldBooking(t, fake)
	c := payment.NewCashController(fake, drafts, holds, "prop-1", admin)
	c.SetClock(func() calendar.Date { return calendar.MustParseDate("2026-08-28") })
	return c
}

func TestCashSubmit_ValidatesFormAtSubmitOnly(t *testing.T) {
	fake := &pmstest.Fake{}
	c := newCash(t, fake)

	// typing invalid interim values is never rejected
	c.UpdateForm(payment.CashForm{FullName: "P"})
	assert.Equal(t, "P", c.Form().FullName)

	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, payment.ErrFormInvalid)
	assert.Empty(t, fake.CashCalls)

	// a future payment date is rejected too
	form := validCashForm()
	form.PaymentDate = calendar.MustParseDate("2026-08-29")
	c.UpdateForm(form)
	assert.ErrorIs(t, c.Submit(context.Background()), payment.ErrFormInvalid)
}

func TestCashSubmit_FinalizesAndSchedulesCascade(t *testing.T) {
	fake := &pmstest.Fake{}
	c := newCash(t, fake)
	c.UpdateForm(validCashForm())

	confirmed := make(chan struct{})
	c.OnConfirmed(func() { close(confirmed) }, 0)

	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, fake.CashCalls, 1)
	payload := fake.CashCalls[0]
	assert.Equal(t, []string{"hold-1"}, payload.HoldRecordIDs)
	assert.Equal(t, "Asha", payload.Payment.ReceivedBy)
	assert.True(t, payload.Payment.Amount.Equal(decimal.NewFromInt(11800)))

	receipt, ok := c.State().Value()
	require.True(t, ok)
	assert.Equal(t, "BK-1", receipt.BookingNumber)

	select {
	case <-confirmed:
	case <-time.After(time.Second):
		t.Fatal("cascade did not fire")
	}
}

func TestCashSubmit_RefusedWithoutHold(t *testing.T) {
	fake := &pmstest.Fake{}
	drafts, holds := heldBooking(t, fake)
	c := payment.NewCashController(fake, drafts, holds, "prop-1", admin)
	c.UpdateForm(validCashForm())

	holds.Reset()
	assert.ErrorIs(t, c.Submit(context.Background()), payment.ErrNoHold)
	assert.Empty(t, fake.CashCalls)
}

func TestCashReset_KeepsFormUntilCleared(t *testing.T) {
	fake := &pmstest.Fake{}
	c := newCash(t, fake)
	c.UpdateForm(validCashForm())

	c.Reset()
	assert.Equal(t, "Priya Nair", c.Form().FullName)

	c.ClearForm()
	assert.Equal(t, payment.CashForm{}, c.Form())
}
