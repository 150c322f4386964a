package pms_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayfront/frontdesk-engine/calendar"
	"github.com/stayfront/frontdesk-engine/pms"
)

// newClient spins up a scripted PMS behind a real HTTP round trip.
func newClient(t *testing.T, handler http.HandlerFunc) *pms.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return pms.NewClient(srv.URL, "token-1", 5*time.Second, nil)
}

func TestCreatePaymentLink_NormalizesMinorUnits(t *testing.T) {
	// GIVEN: a PMS that reports the link amount in paise
	var gotPath, gotAuth, gotIdem string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotIdem = r.Header.Get("X-Idempotency-Key")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"paymentLinkUrl": "https://pay.example/l/abc",
			"expiresAt":      "2026-08-28T12:30:00Z",
			"orderId":        "order-9",
			"amount":         1180000,
		})
	})

	// WHEN: the link is created
	receipt, err := c.CreatePaymentLink(context.Background(), "prop-1", pms.PaymentLinkPayload{})

	// THEN: the receipt is in plain units, divided by 100 exactly once
	require.NoError(t, err)
	assert.True(t, receipt.Amount.Equal(decimal.NewFromInt(11800)), "got %s", receipt.Amount)
	assert.Equal(t, "https://pay.example/l/abc", receipt.URL)
	assert.True(t, receipt.ExpiresAt.Equal(time.Date(2026, 8, 28, 12, 30, 0, 0, time.UTC)))
	assert.Equal(t, "order-9", receipt.OrderID)

	assert.Equal(t, "/api/properties/prop-1/payment-links", gotPath)
	assert.Equal(t, "Bearer token-1", gotAuth)
	assert.NotEmpty(t, gotIdem, "writes must carry an idempotency key")
}

func TestCreatePaymentLink_FieldFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]any
		wantURL string
		wantExp time.Time
	}{
		{
			name:    "short_url and expireBy when the primary fields are absent",
			body:    map[string]any{"short_url": "https://rzp.example/s/1", "expireBy": "2026-08-28T12:45:00Z", "amount": 500000},
			wantURL: "https://rzp.example/s/1",
			wantExp: time.Date(2026, 8, 28, 12, 45, 0, 0, time.UTC),
		},
		{
			name:    "bare url as the last resort, no expiry at all",
			body:    map[string]any{"url": "https://pay.example/raw", "amount": 500000},
			wantURL: "https://pay.example/raw",
		},
		{
			name:    "primary url wins over the fallbacks",
			body:    map[string]any{"paymentLinkUrl": "https://pay.example/l/1", "short_url": "https://rzp.example/s/1", "amount": 500000},
			wantURL: "https://pay.example/l/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(tt.body)
			})

			receipt, err := c.CreatePaymentLink(context.Background(), "prop-1", pms.PaymentLinkPayload{})

			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, receipt.URL)
			if tt.wantExp.IsZero() {
				assert.True(t, receipt.ExpiresAt.IsZero())
			} else {
				assert.True(t, receipt.ExpiresAt.Equal(tt.wantExp))
			}
			assert.True(t, receipt.Amount.Equal(decimal.NewFromInt(5000)), "got %s", receipt.Amount)
		})
	}
}

func TestPlaceHold_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     error
		wantMessage string
	}{
		{
			name:        "404 maps to not-found",
			status:      http.StatusNotFound,
			body:        `{"error":"property not found"}`,
			wantErr:     pms.ErrNotFound,
			wantMessage: "property not found",
		},
		{
			name:        "422 maps to rejected with the server message",
			status:      http.StatusUnprocessableEntity,
			body:        `{"error":"Rooms no longer available"}`,
			wantErr:     pms.ErrRejected,
			wantMessage: "Rooms no longer available",
		},
		{
			name:        "message field is read when error is absent",
			status:      http.StatusBadRequest,
			body:        `{"message":"holdUntil is in the past"}`,
			wantErr:     pms.ErrRejected,
			wantMessage: "holdUntil is in the past",
		},
		{
			name:        "5xx maps to unavailable with the generic fallback",
			status:      http.StatusInternalServerError,
			body:        ``,
			wantErr:     pms.ErrUnavailable,
			wantMessage: "Could not place hold. Please try again.",
		},
		{
			name:        "unparseable error body falls back to the generic message",
			status:      http.StatusBadGateway,
			body:        `<html>upstream timeout</html>`,
			wantErr:     pms.ErrUnavailable,
			wantMessage: "Could not place hold. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.PlaceHold(context.Background(), "prop-1", pms.HoldRequest{})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantMessage, err.Error())

			var re *pms.RequestError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.status, re.Status)
			assert.Equal(t, "place hold", re.Op)
		})
	}
}

func TestSnapshot_SendsRangeWithoutIdempotencyKey(t *testing.T) {
	// GIVEN: a PMS capturing the snapshot request
	var gotPath, gotFrom, gotTo, gotIdem string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFrom = r.URL.Query().Get("from")
		gotTo = r.URL.Query().Get("to")
		gotIdem = r.Header.Get("X-Idempotency-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	// WHEN: a week's board is fetched
	week := calendar.Range{
		From: calendar.MustParseDate("2026-08-31"),
		To:   calendar.MustParseDate("2026-09-06"),
	}
	snap, err := c.Snapshot(context.Background(), "prop-1", week)

	// THEN: the range travels as YYYY-MM-DD and reads carry no idempotency key
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "/api/properties/prop-1/availability-board", gotPath)
	assert.Equal(t, "2026-08-31", gotFrom)
	assert.Equal(t, "2026-09-06", gotTo)
	assert.Empty(t, gotIdem)
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	// GIVEN: a PMS that is not reachable at all
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	c := pms.NewClient(srv.URL, "", time.Second, nil)

	_, err := c.Snapshot(context.Background(), "prop-1", calendar.Range{
		From: calendar.MustParseDate("2026-08-31"),
		To:   calendar.MustParseDate("2026-09-06"),
	})

	assert.ErrorIs(t, err, pms.ErrUnavailable)
	assert.Equal(t, "Could not fetch snapshot. Please try again.", err.Error())
}
