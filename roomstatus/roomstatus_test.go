package roomstatus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayfront/frontdesk-engine/actor"
	"github.com/stayfront/frontdesk-engine/calendar"
	"github.com/stayfront/frontdesk-engine/pms"
	"github.com/stayfront/frontdesk-engine/pms/pmstest"
	"github.com/stayfront/frontdesk-engine/roomstatus"
)

var housekeeper = actor.Actor{Role: actor.RoleHost, ID: "host-3", Label: "Housekeeping"}

func newController(t *testing.T, fake *pmstest.Fake) *roomstatus.Controller {
	t.Helper()
	c := roomstatus.NewController(fake, "prop-1", housekeeper)
	c.SetClock(func() calendar.Date { return calendar.MustParseDate("2026-08-28") })
	return c
}

func validInput(kind pms.StatusKind) roomstatus.CreateInput {
	in := roomstatus.CreateInput{
		Kind:               kind,
		PropertyRoomTypeID: "prt-1",
		RoomID:             "room-101",
		Date:               calendar.MustParseDate("2026-09-01"),
		Reason:             "deep clean",
	}
	if kind == pms.StatusBlocked {
		in.ReleaseAfterHours = 24
	}
	return in
}

func TestCreate_Validation(t *testing.T) {
	fake := &pmstest.Fake{}
	c := newController(t, fake)

	tests := []struct {
		name   string
		mutate func(*roomstatus.CreateInput)
	}{
		{"missing room type", func(in *roomstatus.CreateInput) { in.PropertyRoomTypeID = "" }},
		{"missing room", func(in *roomstatus.CreateInput) { in.RoomID = "" }},
		{"missing date", func(in *roomstatus.CreateInput) { in.Date = calendar.Date{} }},
		{"past date", func(in *roomstatus.CreateInput) { in.Date = calendar.MustParseDate("2026-08-27") }},
		{"block without duration", func(in *roomstatus.CreateInput) { in.ReleaseAfterHours = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(pms.StatusBlocked)
			tt.mutate(&in)
			assert.ErrorIs(t, c.Create(context.Background(), in), roomstatus.ErrInvalidRequest)
		})
	}
	assert.Empty(t, fake.CreateCalls)
}

func TestCreate_MaintenanceNeedsNoDuration(t *testing.T) {
	fake := &pmstest.Fake{}
	c := newController(t, fake)

	require.NoError(t, c.Create(context.Background(), validInput(pms.StatusMaintenance)))
	require.Len(t, fake.CreateCalls, 1)
	assert.Equal(t, pms.StatusMaintenance, fake.CreateCalls[0].Kind)
}

func TestCreate_SubmitsAndCascades(t *testing.T) {
	fake := &pmstest.Fake{}
	c := newController(t, fake)

	refreshed := make(chan struct{})
	cascaded := make(chan struct{})
	c.OnSuccess(func() { close(refreshed) }, func() { close(cascaded) }, 0)

	require.NoError(t, c.Create(context.Background(), validInput(pms.StatusBlocked)))

	require.Len(t, fake.CreateCalls, 1)
	call := fake.CreateCalls[0]
	assert.Equal(t, "prop-1", call.PropertyID)
	assert.Equal(t, pms.StatusBlocked, call.Kind)
	assert.Equal(t, "room-101", call.Request.RoomID)
	assert.Equal(t, "2026-09-01", call.Request.Date)
	assert.Equal(t, 24, call.Request.ReleaseAfterHours)
	assert.Equal(t, "Housekeeping", call.Request.BlockedBy)

	assert.True(t, c.State().IsSuccess())

	// refresh fires immediately, the form cascade after the delay
	select {
	case <-refreshed:
	case <-time.After(time.Second):
		t.Fatal("refresh did not fire")
	}
	select {
	case <-cascaded:
	case <-time.After(time.Second):
		t.Fatal("cascade did not fire")
	}
}

func TestCreate_UpstreamFailure(t *testing.T) {
	fake := &pmstest.Fake{StatusErr: errors.New("slot already booked")}
	c := newController(t, fake)
	c.OnSuccess(func() { t.Fatal("refresh must not fire on failure") }, nil, 0)

	err := c.Create(context.Background(), validInput(pms.StatusBlocked))

	require.Error(t, err)
	assert.True(t, c.State().IsError())
	assert.Equal(t, "slot already booked", c.State().Message())
}

func TestRelease_WithoutRecordIsANoOp(t *testing.T) {
	// GIVEN: a slot shown as blocked but carrying no availability record
	fake := &pmstest.Fake{}
	c := newController(t, fake)

	// WHEN: release is attempted without an ID
	require.NoError(t, c.Release(context.Background(), pms.StatusBlocked, ""))

	// THEN: nothing was sent and the state never left Idle
	assert.Empty(t, fake.ReleaseCalls)
	assert.True(t, c.State().IsIdle())
}

func TestRelease_SendsTheRecordID(t *testing.T) {
	fake := &pmstest.Fake{}
	c := newController(t, fake)

	require.NoError(t, c.Release(context.Background(), pms.StatusOutOfService, "avail-9"))

	require.Len(t, fake.ReleaseCalls, 1)
	assert.Equal(t, pms.StatusOutOfService, fake.ReleaseCalls[0].Kind)
	assert.Equal(t, "avail-9", fake.ReleaseCalls[0].AvailabilityID)
	assert.True(t, c.State().IsSuccess())
}

func TestReset_ReturnsToIdle(t *testing.T) {
	fake := &pmstest.Fake{}
	c := newController(t, fake)
	require.NoError(t, c.Release(context.Background(), pms.StatusBlocked, "avail-1"))

	c.Reset()
	assert.True(t, c.State().IsIdle())
}
