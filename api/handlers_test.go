package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayfront/frontdesk-engine/activity"
	"github.com/stayfront/frontdesk-engine/actor"
	"github.com/stayfront/frontdesk-engine/api"
	"github.com/stayfront/frontdesk-engine/board"
	"github.com/stayfront/frontdesk-engine/booking"
	"github.com/stayfront/frontdesk-engine/calendar"
	"github.com/stayfront/frontdesk-engine/desk"
	"github.com/stayfront/frontdesk-engine/pms/pmstest"
)

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

type testServer struct {
	router http.Handler
	fake   *pmstest.Fake
	ledger *activity.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	fake := &pmstest.Fake{
		SnapshotResponse: &board.Snapshot{},
		ContextResponse:  bookingContext(),
	}
	ledger := activity.NewMemory()

	open := func(propertyID string, by actor.Actor, week calendar.Range) *desk.Session {
		s := desk.NewSession(fake, propertyID, by, week, desk.Options{
			RefreshInterval: -1,
			CascadeDelay:    -1,
			Log:             ledger,
		})
		s.Drafts().SetClock(func() calendar.Date { return calendar.MustParseDate("2026-08-28") })
		s.Cash().SetClock(func() calendar.Date { return calendar.MustParseDate("2026-08-28") })
		return s
	}
	sessions := api.NewSessions(open, time.Minute)
	t.Cleanup(sessions.CloseAll)

	h := api.NewHandler(sessions, ledger)
	return &testServer{
		router: api.NewRouter(h, []string{"*"}),
		fake:   fake,
		ledger: ledger,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func (ts *testServer) openDesk(t *testing.T) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/desks", map[string]any{
		"propertyId": "prop-1",
		"weekStart":  "2026-09-01",
		"actor":      map[string]string{"role": "host", "id": "host-1", "label": "Reception"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[map[string]any](t, rec)
	id, _ := resp["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestOpenDesk_SnapsWeekToMondayAndLoadsBoard(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/desks", map[string]any{
		"propertyId": "prop-1",
		"weekStart":  "2026-09-03", // a Thursday
		"actor":      map[string]string{"role": "admin", "id": "a-1", "label": "Manager"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decode[map[string]any](t, rec)
	week := resp["week"].(map[string]any)
	assert.Equal(t, "2026-08-31", week["from"]) // that week's Monday
	assert.Equal(t, 1, ts.fake.SnapshotCount())
}

func TestOpenDesk_Validation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/desks", map[string]any{
		"propertyId": "",
		"actor":      map[string]string{"role": "host"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/desks", map[string]any{
		"propertyId": "prop-1",
		"actor":      map[string]string{"role": "guest"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownDesk_Returns404(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/desks/nope/board", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingFlow_DraftHoldAndPaymentLink(t *testing.T) {
	ts := newTestServer(t)
	id := ts.openDesk(t)

	// open the new-booking workflow on a cell
	rec := ts.do(t, http.MethodPost, "/api/desks/"+id+"/context", map[string]any{
		"action":     "new-booking",
		"roomTypeId": "prt-1",
		"roomId":     "room-101",
		"date":       "2026-09-01",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// adjust guests through the draft patch
	rec = ts.do(t, http.MethodPut, "/api/desks/"+id+"/draft", map[string]any{
		"guests": map[string]int{"adults": 2},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// the quote is valid and priced: 1 night x 5000, low bracket
	rec = ts.do(t, http.MethodGet, "/api/desks/"+id+"/quote", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	quote := decode[map[string]any](t, rec)
	require.Equal(t, true, quote["valid"], "quote errors: %v", quote["errors"])
	summary := quote["summary"].(map[string]any)
	assert.Equal(t, "5250", summary["total"])

	// place the hold
	rec = ts.do(t, http.MethodPost, "/api/desks/"+id+"/hold", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	hold := decode[map[string]any](t, rec)
	assert.NotEmpty(t, hold["recordIds"])

	// recipient, then the payment link
	rec = ts.do(t, http.MethodPut, "/api/desks/"+id+"/payment-link/recipient", map[string]string{
		"fullName": "Priya Nair",
		"phone":    "9876543210",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/desks/"+id+"/payment-link", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	link := decode[map[string]any](t, rec)
	assert.Equal(t, "https://pay.example/link-1", link["url"])

	// both actions landed on the ledger, newest first
	rec = ts.do(t, http.MethodGet, "/api/properties/prop-1/activity", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[[]map[string]any](t, rec)
	require.Len(t, records, 2)
	assert.Equal(t, "payment_link_issued", records[0]["kind"])
	assert.Equal(t, "hold_placed", records[1]["kind"])
}

func TestPlaceHold_WithoutContextIsRejected(t *testing.T) {
	ts := newTestServer(t)
	id := ts.openDesk(t)

	rec := ts.do(t, http.MethodPost, "/api/desks/"+id+"/hold", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ts.fake.HoldCalls)
}

func TestRoomStatus_CreateAndRelease(t *testing.T) {
	ts := newTestServer(t)
	id := ts.openDesk(t)

	rec := ts.do(t, http.MethodPost, "/api/desks/"+id+"/room-status", map[string]any{
		"kind":              "blocked",
		"roomTypeId":        "prt-1",
		"roomId":            "room-101",
		"date":              "2026-09-01",
		"releaseAfterHours": 24,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, ts.fake.CreateCalls, 1)

	// a block without a duration is refused before any network call
	rec = ts.do(t, http.MethodPost, "/api/desks/"+id+"/room-status", map[string]any{
		"kind":       "blocked",
		"roomTypeId": "prt-1",
		"roomId":     "room-101",
		"date":       "2026-09-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, ts.fake.CreateCalls, 1)

	rec = ts.do(t, http.MethodDelete, "/api/desks/"+id+"/room-status/avail-9?kind=blocked", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, ts.fake.ReleaseCalls, 1)
	assert.Equal(t, "avail-9", ts.fake.ReleaseCalls[0].AvailabilityID)

	// missing kind never reaches the engine
	rec = ts.do(t, http.MethodDelete, "/api/desks/"+id+"/room-status/avail-9", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, ts.fake.ReleaseCalls, 1)
}

func TestCloseDesk_ThenGone(t *testing.T) {
	ts := newTestServer(t)
	id := ts.openDesk(t)

	rec := ts.do(t, http.MethodDelete, "/api/desks/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/desks/"+id+"/board", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthzAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
