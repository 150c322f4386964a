package desk_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayfront/frontdesk-engine/activity"
	"github.com/stayfront/frontdesk-engine/actor"
	"github.com/stayfront/frontdesk-engine/board"
	"github.com/stayfront/frontdesk-engine/booking"
	"github.com/stayfront/frontdesk-engine/calendar"
	"github.com/stayfront/frontdesk-engine/desk"
	"github.com/stayfront/frontdesk-engine/payment"
	"github.com/stayfront/frontdesk-engine/pms"
	"github.com/stayfront/frontdesk-engine/pms/pmstest"
)

var clerk = actor.Actor{Role: actor.RoleHost, ID: "host-1", Label: "Reception"}

func bookingContext() *booking.Context {
	return &booking.Context{
		Stay: booking.Stay{
			From:   calendar.MustParseDate("2026-09-01"),
			To:     calendar.MustParseDate("2026-09-02"),
			Nights: 1,
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
			{ID: "prtmp-1", MealPlanID: "mp-cp", Rates: booking.PlanRates{DoubleOccupancy: decimal.NewFromInt(5000)}},
		},
		CanFulfilRequest: true,
	}
}

func week() calendar.Range {
	from := calendar.MustParseDate("2026-08-31")
	return calendar.Range{From: from, To: from.AddDays(7)}
}

// newSession builds a session with polling off and immediate cascades.
func newSession(t *testing.T, fake *pmstest.Fake) (*desk.Session, *activity.Memory) {
	t.Helper()
	ledger := activity.NewMemory()
	s := desk.NewSession(fake, "prop-1", clerk, week(), desk.Options{
		RefreshInterval: -1,
		CascadeDelay:    -1,
		Log:             ledger,
	})
	t.Cleanup(s.Close)
	s.Drafts().SetClock(func() calendar.Date { return calendar.MustParseDate("2026-08-28") })
	s.Cash().SetClock(func() calendar.Date { return calendar.MustParseDate("2026-08-28") })
	return s, ledger
}

func TestRefresh_LoadsBoardAndSurvivesLaterFailures(t *testing.T) {
	fake := &pmstest.Fake{SnapshotErr: errors.New("pms down")}
	s, _ := newSession(t, fake)

	// first fetch fails with nothing to show: error state
	require.Error(t, s.Refresh(context.Background()))
	assert.True(t, s.Board().IsError())

	fake.SnapshotErr = nil
	fake.SnapshotResponse = &board.Snapshot{}
	require.NoError(t, s.Refresh(context.Background()))
	assert.True(t, s.Board().IsSuccess())

	// a later failure keeps the stale board on screen
	fake.SnapshotErr = errors.New("pms down again")
	require.Error(t, s.Refresh(context.Background()))
	assert.True(t, s.Board().IsSuccess())
}

func TestStartBooking_OpensContextAndSeedsDraft(t *testing.T) {
	fake := &pmstest.Fake{ContextResponse: bookingContext()}
	s, _ := newSession(t, fake)

	require.NoError(t, s.StartBooking(context.Background(), "prt-1", "room-101", calendar.MustParseDate("2026-09-01")))

	assert.Equal(t, desk.ContextNewBooking, s.Active().Kind)
	assert.Equal(t, "room-101", s.Active().RoomID)
	assert.True(t, s.Drafts().State().IsSuccess())
}

func TestDraftMutation_CascadesThroughHoldAndPayments(t *testing.T) {
	fake := &pmstest.Fake{ContextResponse: bookingContext()}
	s, ledger := newSession(t, fake)
	require.NoError(t, s.StartBooking(context.Background(), "prt-1", "room-101", calendar.MustParseDate("2026-09-01")))

	require.NoError(t, s.PlaceHold(context.Background()))
	_, held := s.Holds().Receipt()
	require.True(t, held)

	require.NoError(t, s.PaymentLink().SaveRecipient("Priya Nair", "", "9876543210"))
	require.NoError(t, s.CreatePaymentLink(context.Background()))
	require.True(t, s.PaymentLink().State().IsSuccess())

	// WHEN: the operator changes the guest count
	s.Drafts().SetGuests(2, 0, 0)

	// THEN: hold and both payment workflows reset together
	_, held = s.Holds().Receipt()
	assert.False(t, held)
	assert.True(t, s.PaymentLink().State().IsIdle())
	assert.True(t, s.Cash().State().IsIdle())

	// the actions that did complete are on the ledger
	records, err := ledger.ListByProperty(context.Background(), "prop-1", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, activity.KindPaymentLinkIssued, records[0].Kind) // newest first
	assert.Equal(t, activity.KindHoldPlaced, records[1].Kind)
	assert.Equal(t, clerk, records[0].Actor)
}

func TestSubmitCash_ConfirmationCascadeClosesTheWorkflow(t *testing.T) {
	fake := &pmstest.Fake{ContextResponse: bookingContext(), SnapshotResponse: &board.Snapshot{}}
	s, ledger := newSession(t, fake)
	require.NoError(t, s.StartBooking(context.Background(), "prt-1", "room-101", calendar.MustParseDate("2026-09-01")))
	require.NoError(t, s.PlaceHold(context.Background()))

	s.Cash().UpdateForm(payment.CashForm{
		FullName:    "Priya Nair",
		Email:       "priya@example.com",
		Phone:       "9876543210",
		ReceivedBy:  "Asha",
		PaymentDate: calendar.MustParseDate("2026-08-28"),
	})

	before := fake.SnapshotCount()
	require.NoError(t, s.SubmitCash(context.Background()))

	// the immediate cascade refreshes the board, releases the hold, clears
	// the form and closes the workflow
	require.Eventually(t, func() bool {
		_, held := s.Holds().Receipt()
		return !held &&
			s.Active().Kind == desk.ContextNone &&
			s.Cash().Form() == payment.CashForm{} &&
			fake.SnapshotCount() > before
	}, time.Second, 5*time.Millisecond)

	records, err := ledger.ListByProperty(context.Background(), "prop-1", 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, activity.KindCashBookingCreated, records[0].Kind)
	assert.Equal(t, "BK-1", records[0].Reference)
}

func TestReleaseRoomStatus_WithoutRecordNeverTouchesTheNetwork(t *testing.T) {
	fake := &pmstest.Fake{}
	s, ledger := newSession(t, fake)

	require.NoError(t, s.ReleaseRoomStatus(context.Background(), pms.StatusBlocked, ""))

	assert.Empty(t, fake.ReleaseCalls)
	records, err := ledger.ListByProperty(context.Background(), "prop-1", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCloseContext_ResetsTheHold(t *testing.T) {
	fake := &pmstest.Fake{ContextResponse: bookingContext()}
	s, _ := newSession(t, fake)
	require.NoError(t, s.StartBooking(context.Background(), "prt-1", "room-101", calendar.MustParseDate("2026-09-01")))
	require.NoError(t, s.PlaceHold(context.Background()))

	s.CloseContext()

	assert.Equal(t, desk.ContextNone, s.Active().Kind)
	_, held := s.Holds().Receipt()
	assert.False(t, held)
}

func TestClose_StopsThePeriodicRefresh(t *testing.T) {
	fake := &pmstest.Fake{SnapshotResponse: &board.Snapshot{}}
	s := desk.NewSession(fake, "prop-1", clerk, week(), desk.Options{
		RefreshInterval: 5 * time.Millisecond,
		CascadeDelay:    -1,
	})

	require.Eventually(t, func() bool { return fake.SnapshotCount() > 0 }, time.Second, time.Millisecond)

	s.Close()
	after := fake.SnapshotCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, fake.SnapshotCount())
}
