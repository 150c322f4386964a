package pms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stayfront/frontdesk-engine/board"
	"github.com/stayfront/frontdesk-engine/booking"
	"github.com/stayfront/frontdesk-engine/calendar"
)

// Logger is the minimal logging surface the client needs.
type Logger interface {
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// Client talks to the property-management system's REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        Logger
}

// NewClient creates a PMS client. Token may be empty for unauthenticated
// deployments; log may be nil.
func NewClient(baseURL, token string, timeout time.Duration, log Logger) *Client {
	if log == nil {
		log = nopLogger{}
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// Snapshot fetches the raw availability snapshot for one property and range.
// The request is cancellable through ctx; the desk aborts it when the board
// navigates away from the parameters it was issued for.
func (c *Client) Snapshot(ctx context.Context, propertyID string, rng calendar.Range) (*board.Snapshot, error) {
	q := url.Values{}
	q.Set("from", rng.From.String())
	q.Set("to", rng.To.String())

	var snap board.Snapshot
	if err := c.get(ctx, "fetch snapshot",
		fmt.Sprintf("/api/properties/%s/availability-board", url.PathEscape(propertyID)), q, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// LoadBookingContext fetches capacities, rooms and rate cards for one room
// type, stay range and requested room count. Satisfies booking.ContextLoader.
func (c *Client) LoadBookingContext(ctx context.Context, propertyID, propertyRoomTypeID string, stay calendar.Range, roomsRequested int) (*booking.Context, error) {
	q := url.Values{}
	q.Set("propertyRoomTypeId", propertyRoomTypeID)
	q.Set("from", stay.From.String())
	q.Set("to", stay.To.String())
	q.Set("rooms", strconv.Itoa(roomsRequested))

	var wire wireBookingContext
	if err := c.get(ctx, "load booking context",
		fmt.Sprintf("/api/properties/%s/booking-context", url.PathEscape(propertyID)), q, &wire); err != nil {
		return nil, err
	}
	return wire.toContext()
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// PlaceHold takes the requested rooms off the market until req.HoldUntil.
func (c *Client) PlaceHold(ctx context.Context, propertyID string, req HoldRequest) (*HoldReceipt, error) {
	var resp struct {
		Records   []HoldRecord `json:"records"`
		HoldUntil time.Time    `json:"holdUntil"`
	}
	err := c.post(ctx, "place hold",
		fmt.Sprintf("/api/properties/%s/holds", url.PathEscape(propertyID)), req, &resp)
	if err != nil {
		return nil, err
	}
	return &HoldReceipt{
		Records:   resp.Records,
		HoldUntil: resp.HoldUntil,
		RoomIDs:   append([]string(nil), req.RoomIDs...),
	}, nil
}

// statusPath maps each status kind to its own operation path.
func statusPath(kind StatusKind) string {
	switch kind {
	case StatusMaintenance:
		return "maintenance"
	case StatusOutOfService:
		return "out-of-service"
	default:
		return "blocks"
	}
}

// CreateRoomStatus creates one blocked/maintenance/out-of-service record.
func (c *Client) CreateRoomStatus(ctx context.Context, propertyID string, kind StatusKind, req RoomStatusRequest) error {
	return c.post(ctx, "create room status",
		fmt.Sprintf("/api/properties/%s/room-status/%s", url.PathEscape(propertyID), statusPath(kind)), req, nil)
}

// ReleaseRoomStatus releases an existing status record by its availability ID.
func (c *Client) ReleaseRoomStatus(ctx context.Context, propertyID string, kind StatusKind, availabilityID string) error {
	return c.del(ctx, "release room status",
		fmt.Sprintf("/api/properties/%s/room-status/%s/%s",
			url.PathEscape(propertyID), statusPath(kind), url.PathEscape(availabilityID)))
}

// CreatePaymentLink submits the finalize payload and returns the normalized
// receipt. The response reports amount in paise; the receipt is in plain
// units - this is the single place that conversion happens.
func (c *Client) CreatePaymentLink(ctx context.Context, propertyID string, payload PaymentLinkPayload) (*PaymentLinkReceipt, error) {
	var resp struct {
		PaymentLinkURL string `json:"paymentLinkUrl"`
		ShortURL       string `json:"short_url"`
		URL            string `json:"url"`
		ExpiresAt      string `json:"expiresAt"`
		ExpireBy       string `json:"expireBy"`
		OrderID        string `json:"orderId"`
		Amount         int64  `json:"amount"` // minor units (paise)
	}
	err := c.post(ctx, "create payment link",
		fmt.Sprintf("/api/properties/%s/payment-links", url.PathEscape(propertyID)), payload, &resp)
	if err != nil {
		return nil, err
	}

	receipt := &PaymentLinkReceipt{
		OrderID: resp.OrderID,
		Amount:  decimal.NewFromInt(resp.Amount).Div(decimal.NewFromInt(100)),
	}
	for _, u := range []string{resp.PaymentLinkURL, resp.ShortURL, resp.URL} {
		if u != "" {
			receipt.URL = u
			break
		}
	}
	for _, ts := range []string{resp.ExpiresAt, resp.ExpireBy} {
		if ts == "" {
			continue
		}
		if at, err := time.Parse(time.RFC3339, ts); err == nil {
			receipt.ExpiresAt = at
			break
		}
	}
	return receipt, nil
}

// CreateCashBooking finalizes a held booking paid in cash.
func (c *Client) CreateCashBooking(ctx context.Context, propertyID string, payload CashBookingPayload) (*CashBookingReceipt, error) {
	var resp struct {
		Booking struct {
			BookingNumber string `json:"bookingNumber"`
		} `json:"booking"`
		Payment struct {
			TransactionID string          `json:"transactionID"`
			Amount        decimal.Decimal `json:"amount"`
		} `json:"payment"`
	}
	err := c.post(ctx, "create cash booking",
		fmt.Sprintf("/api/properties/%s/cash-bookings", url.PathEscape(propertyID)), payload, &resp)
	if err != nil {
		return nil, err
	}
	return &CashBookingReceipt{
		BookingNumber: resp.Booking.BookingNumber,
		TransactionID: resp.Payment.TransactionID,
		Amount:        resp.Payment.Amount,
	}, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	return c.do(ctx, op, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	return c.do(ctx, op, http.MethodPost, path, nil, body, out)
}

func (c *Client) del(ctx context.Context, op, path string) error {
	return c.do(ctx, op, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Op: op, Message: "request could not be encoded", kind: ErrRejected}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &RequestError{Op: op, Message: "request could not be built", kind: ErrRejected}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		// Writes carry an idempotency key so a retried submit cannot
		// double-apply server-side.
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Errorf("pms: %s failed: %v", op, err)
		return &RequestError{Op: op, Message: genericMessage(op), kind: ErrUnavailable}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fall through to decode
	case resp.StatusCode == http.StatusNotFound:
		return &RequestError{Op: op, Status: resp.StatusCode, Message: serverMessage(resp.Body, genericMessage(op)), kind: ErrNotFound}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &RequestError{Op: op, Status: resp.StatusCode, Message: serverMessage(resp.Body, genericMessage(op)), kind: ErrRejected}
	default:
		c.log.Errorf("pms: %s returned %d", op, resp.StatusCode)
		return &RequestError{Op: op, Status: resp.StatusCode, Message: serverMessage(resp.Body, genericMessage(op)), kind: ErrUnavailable}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Errorf("pms: %s decode failed: %v", op, err)
		return &RequestError{Op: op, Status: resp.StatusCode, Message: genericMessage(op), kind: ErrUnavailable}
	}
	return nil
}

// serverMessage pulls the display message out of an error body, falling back
// when the body is absent or unparseable.
func serverMessage(r io.Reader, fallback string) string {
	body, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(body) == 0 {
		return fallback
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	if payload.Error != "" {
		return payload.Error
	}
	if payload.Message != "" {
		return payload.Message
	}
	return fallback
}

func genericMessage(op string) string {
	return "Could not " + op + ". Please try again."
}
