/*
Package desk is the board orchestrator: one Session per open front-desk
dashboard.

PURPOSE:
  A Session owns the displayed week, the availability board, the active
  workflow context (which modal is open), and the five controllers -
  booking draft, hold, payment link, cash payment, room status - wired
  together with their reset cascades:

    draft mutation     -> hold reset -> payment-link + cash reset
    cash confirmed     -> (delay) board refresh, hold reset, form clear,
                          context close
    status confirmed   -> board refresh, (delay) form reset, context close

  The Session also appends every confirmed action to the activity
  ledger, best-effort: the ledger never fails a user-facing operation.

REFRESH MODEL:
  Snapshot fetches are sequence-tagged and cancellable: navigating to
  another week aborts the in-flight fetch for the old one, and a stale
  completion is discarded. A background poll re-fetches the snapshot
  every RefreshInterval (30s by default), wired end-to-end and stopped
  by Close.
*/
package desk

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/stayfront/frontdesk-engine/activity"
	"github.com/stayfront/frontdesk-engine/actor"
	"github.com/stayfront/frontdesk-engine/board"
	"github.com/stayfront/frontdesk-engine/booking"
	"github.com/stayfront/frontdesk-engine/calendar"
	"github.com/stayfront/frontdesk-engine/hold"
	"github.com/stayfront/frontdesk-engine/lifecycle"
	"github.com/stayfront/frontdesk-engine/payment"
	"github.com/stayfront/frontdesk-engine/pms"
	"github.com/stayfront/frontdesk-engine/roomstatus"
)

// PMS is the full upstream surface a session needs. The *pms.Client
// satisfies it; tests use pmstest.Fake.
type PMS interface {
	Snapshot(ctx context.Context, propertyID string, rng calendar.Range) (*board.Snapshot, error)
	LoadBookingContext(ctx context.Context, propertyID, propertyRoomTypeID string, stay calendar.Range, roomsRequested int) (*booking.Context, error)
	PlaceHold(ctx context.Context, propertyID string, req pms.HoldRequest) (*pms.HoldReceipt, error)
	CreateRoomStatus(ctx context.Context, propertyID string, kind pms.StatusKind, req pms.RoomStatusRequest) error
	ReleaseRoomStatus(ctx context.Context, propertyID string, kind pms.StatusKind, availabilityID string) error
	CreatePaymentLink(ctx context.Context, propertyID string, payload pms.PaymentLinkPayload) (*pms.PaymentLinkReceipt, error)
	CreateCashBooking(ctx context.Context, propertyID string, payload pms.CashBookingPayload) (*pms.CashBookingReceipt, error)
}

// Logger is the minimal logging surface the session needs.
type Logger interface {
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// =============================================================================
// ACTIVE CONTEXT - Which workflow is open
// =============================================================================

// ContextKind discriminates the open workflow.
type ContextKind int

const (
	ContextNone ContextKind = iota
	ContextNewBooking
	ContextBookingDetails
	ContextRoomStatus
)

// ActiveContext says which modal the desk has open and for which cell.
type ActiveContext struct {
	Kind       ContextKind
	RoomTypeID string
	RoomID     string
	Date       calendar.Date
	Slot       *board.Slot // populated for details and status contexts
}

// =============================================================================
// SESSION
// =============================================================================

// Options tune a session. Zero values fall back to defaults.
type Options struct {
	// RefreshInterval is the background poll period. Negative disables
	// polling; zero means the 30-second default.
	RefreshInterval time.Duration

	// CascadeDelay is how long confirmations stay on screen before the
	// timed cascades run. Negative means immediate; zero means default.
	CascadeDelay time.Duration

	Log    activity.Log
	Logger Logger
}

const defaultRefreshInterval = 30 * time.Second

// Session orchestrates one open dashboard.
type Session struct {
	pmsClient  PMS
	propertyID string
	by         actor.Actor
	ledger     activity.Log
	logf       Logger

	drafts *booking.Controller
	holds  *hold.Controller
	link   *payment.LinkController
	cash   *payment.CashController
	status *roomstatus.Controller

	mu          sync.Mutex
	week        calendar.Range
	boardState  lifecycle.State[*board.Board]
	boardSeq    uint64
	cancelFetch context.CancelFunc
	active      ActiveContext
	closed      bool

	pollStop chan struct{}
	pollDone chan struct{}
}

// NewSession opens a desk session for one property and week. The first
// snapshot is not fetched here; call Refresh.
func NewSession(client PMS, propertyID string, by actor.Actor, week calendar.Range, opts Options) *Session {
	if opts.Log == nil {
		opts.Log = activity.NewMemory()
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	interval := opts.RefreshInterval
	if interval == 0 {
		interval = defaultRefreshInterval
	}
	delay := opts.CascadeDelay
	switch {
	case delay < 0:
		delay = 0
	case delay == 0:
		delay = payment.DefaultCascadeDelay
	}

	s := &Session{
		pmsClient:  client,
		propertyID: propertyID,
		by:         by,
		ledger:     opts.Log,
		logf:       opts.Logger,
		week:       week,
		boardState: lifecycle.Idle[*board.Board](),
	}

	s.drafts = booking.NewController(client, propertyID)
	s.holds = hold.NewController(client, s.drafts, propertyID, by)
	s.link = payment.NewLinkController(client, s.drafts, s.holds, propertyID, by)
	s.cash = payment.NewCashController(client, s.drafts, s.holds, propertyID, by)
	s.status = roomstatus.NewController(client, propertyID, by)

	// Reset cascades.
	s.drafts.OnMutate(s.holds.Reset)
	s.holds.OnReset(func() {
		s.link.Reset()
		s.cash.Reset()
	})
	s.cash.OnConfirmed(s.cashCascade, delay)
	s.status.OnSuccess(s.refreshInBackground, s.statusCascade, delay)

	if interval > 0 {
		s.pollStop = make(chan struct{})
		s.pollDone = make(chan struct{})
		go s.poll(interval)
	}
	return s
}

// Controller accessors for the presentation layer.
func (s *Session) Drafts() *booking.Controller          { return s.drafts }
func (s *Session) Holds() *hold.Controller              { return s.holds }
func (s *Session) PaymentLink() *payment.LinkController { return s.link }
func (s *Session) Cash() *payment.CashController        { return s.cash }
func (s *Session) RoomStatus() *roomstatus.Controller   { return s.status }

// PropertyID returns the property this session displays.
func (s *Session) PropertyID() string { return s.propertyID }

// Week returns the displayed range.
func (s *Session) Week() calendar.Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.week
}

// Board returns the board lifecycle value.
func (s *Session) Board() lifecycle.State[*board.Board] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boardState
}

// Active returns the open workflow context.
func (s *Session) Active() ActiveContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Close stops the background poll and aborts any in-flight fetch.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	stop := s.pollStop
	done := s.pollDone
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

func (s *Session) poll(interval time.Duration) {
	defer close(s.pollDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.Refresh(context.Background()); err != nil {
				s.logf.Errorf("desk: periodic refresh failed: %v", err)
			}
		case <-s.pollStop:
			return
		}
	}
}

// =============================================================================
// SNAPSHOT REFRESH
// =============================================================================

// Refresh fetches the snapshot for the displayed week. A newer Refresh or a
// week change supersedes an in-flight one: the old fetch is cancelled and a
// stale completion is discarded. While a board is already shown, refresh
// failures keep it on screen rather than blanking the grid.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancelFetch = cancel
	s.boardSeq++
	seq := s.boardSeq
	if _, ok := s.boardState.Value(); !ok {
		s.boardState = lifecycle.Loading[*board.Board]()
	}
	week := s.week
	s.mu.Unlock()

	snap, err := s.pmsClient.Snapshot(fetchCtx, s.propertyID, week)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.boardSeq {
		return nil
	}
	if err != nil {
		if _, ok := s.boardState.Value(); !ok {
			s.boardState = lifecycle.Failed[*board.Board](err.Error())
		}
		return err
	}
	s.boardState = lifecycle.Succeeded(board.FromSnapshot(snap))
	return nil
}

// refreshInBackground is the cascade-side refresh: fire and forget.
func (s *Session) refreshInBackground() {
	go func() {
		if err := s.Refresh(context.Background()); err != nil {
			s.logf.Errorf("desk: refresh after action failed: %v", err)
		}
	}()
}

// SetWeek navigates the board to another range and refreshes it.
func (s *Session) SetWeek(ctx context.Context, week calendar.Range) error {
	s.mu.Lock()
	s.week = week
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// =============================================================================
// ACTIVE CONTEXT COMMANDS
// =============================================================================

// StartBooking opens the new-reservation workflow from an empty cell and
// loads its booking context.
func (s *Session) StartBooking(ctx context.Context, roomTypeID, roomID string, day calendar.Date) error {
	s.mu.Lock()
	s.active = ActiveContext{Kind: ContextNewBooking, RoomTypeID: roomTypeID, RoomID: roomID, Date: day}
	s.mu.Unlock()
	return s.drafts.Start(ctx, roomTypeID, roomID, day)
}

// OpenDetails opens the occupied-cell details view.
func (s *Session) OpenDetails(roomTypeID, roomID string, day calendar.Date, slot *board.Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ActiveContext{Kind: ContextBookingDetails, RoomTypeID: roomTypeID, RoomID: roomID, Date: day, Slot: slot}
}

// OpenRoomStatus opens the block/maintenance/out-of-service workflow.
func (s *Session) OpenRoomStatus(roomTypeID, roomID string, day calendar.Date, slot *board.Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ActiveContext{Kind: ContextRoomStatus, RoomTypeID: roomTypeID, RoomID: roomID, Date: day, Slot: slot}
}

// CloseContext closes whatever workflow is open. The hold resets with it:
// an abandoned workflow must not keep rooms off the market silently.
func (s *Session) CloseContext() {
	s.mu.Lock()
	s.active = ActiveContext{Kind: ContextNone}
	s.mu.Unlock()
	s.holds.Reset()
}

// =============================================================================
// ACTION COMMANDS - controller calls + activity ledger
// =============================================================================

// PlaceHold submits the hold and records it on success.
func (s *Session) PlaceHold(ctx context.Context) error {
	if err := s.holds.Submit(ctx); err != nil {
		return err
	}
	if receipt, ok := s.holds.Receipt(); ok {
		ref := ""
		if len(receipt.Records) > 0 {
			ref = receipt.Records[0].ID
		}
		s.record(activity.KindHoldPlaced, ref, map[string]string{
			"holdUntil": receipt.HoldUntil.UTC().Format(time.RFC3339),
			"records":   strconv.Itoa(len(receipt.Records)),
		})
	}
	return nil
}

// CreatePaymentLink issues (or reissues) the payment link and records it.
func (s *Session) CreatePaymentLink(ctx context.Context) error {
	if err := s.link.Create(ctx); err != nil {
		return err
	}
	if receipt, ok := s.link.State().Value(); ok {
		s.record(activity.KindPaymentLinkIssued, receipt.OrderID, map[string]string{
			"amount": receipt.Amount.String(),
		})
	}
	return nil
}

// SubmitCash finalizes the cash booking and records it.
func (s *Session) SubmitCash(ctx context.Context) error {
	if err := s.cash.Submit(ctx); err != nil {
		return err
	}
	if receipt, ok := s.cash.State().Value(); ok {
		s.record(activity.KindCashBookingCreated, receipt.BookingNumber, map[string]string{
			"transactionId": receipt.TransactionID,
			"amount":        receipt.Amount.String(),
		})
	}
	return nil
}

// CreateRoomStatus creates a status record and logs it.
func (s *Session) CreateRoomStatus(ctx context.Context, in roomstatus.CreateInput) error {
	if err := s.status.Create(ctx, in); err != nil {
		return err
	}
	s.record(activity.KindRoomStatusCreated, "", map[string]string{
		"kind": string(in.Kind),
		"room": in.RoomID,
		"date": in.Date.String(),
	})
	return nil
}

// ReleaseRoomStatus releases a status record and logs it. Releasing a slot
// without a record is a no-op end to end.
func (s *Session) ReleaseRoomStatus(ctx context.Context, kind pms.StatusKind, availabilityID string) error {
	if availabilityID == "" {
		return nil
	}
	if err := s.status.Release(ctx, kind, availabilityID); err != nil {
		return err
	}
	s.record(activity.KindRoomStatusReleased, availabilityID, map[string]string{
		"kind": string(kind),
	})
	return nil
}

// cashCascade runs after a confirmed cash payment has been seen.
func (s *Session) cashCascade() {
	s.refreshInBackground()
	s.holds.Reset()
	s.cash.ClearForm()
	s.mu.Lock()
	s.active = ActiveContext{Kind: ContextNone}
	s.mu.Unlock()
}

// statusCascade runs after a confirmed status change has been seen.
func (s *Session) statusCascade() {
	s.status.Reset()
	s.mu.Lock()
	s.active = ActiveContext{Kind: ContextNone}
	s.mu.Unlock()
}

// record appends to the ledger, best-effort.
func (s *Session) record(kind activity.Kind, reference string, details map[string]string) {
	rec := activity.NewRecord(s.propertyID, s.by, kind, reference, details)
	if err := s.ledger.Append(context.Background(), rec); err != nil {
		s.logf.Errorf("desk: activity append failed: %v", err)
	}
}
