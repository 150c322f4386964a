// Package pmstest provides an in-memory fake of the PMS client for tests.
// It records every call and lets tests script responses and failures per
// operation, the same way the engine tests use an in-memory store instead of
// the real database.
package pmstest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stayfront/frontdesk-engine/board"
	"github.com/stayfront/frontdesk-engine/booking"
	"github.com/stayfront/frontdesk-engine/calendar"
	"github.com/stayfront/frontdesk-engine/pms"
)

// Fake implements every PMS operation against scripted in-memory data.
// The zero value is usable; all fields are guarded by one mutex.
type Fake struct {
	mu sync.Mutex

	// Scripted responses
	SnapshotResponse *board.Snapshot
	ContextResponse  *booking.Context
	HoldReceipt      *pms.HoldReceipt
	LinkReceipt      *pms.PaymentLinkReceipt
	CashReceipt      *pms.CashBookingReceipt

	// Scripted failures (checked before responses)
	SnapshotErr error
	ContextErr  error
	HoldErr     error
	StatusErr   error
	LinkErr     error
	CashErr     error

	// Call records
	SnapshotCalls int
	ContextCalls  int
	HoldCalls     []pms.HoldRequest
	CreateCalls   []CreateStatusCall
	ReleaseCalls  []ReleaseStatusCall
	LinkCalls     []pms.PaymentLinkPayload
	CashCalls     []pms.CashBookingPayload

	// ContextHook, when set, builds the response per call (for tests that
	// need the response to depend on the requested range).
	ContextHook func(stay calendar.Range, rooms int) (*booking.Context, error)

	// Block, when set, is closed-waited before completing a context load.
	// Lets races between overlapping loads be forced deterministically.
	Block chan struct{}
}

type CreateStatusCall struct {
	PropertyID string
	Kind       pms.StatusKind
	Request    pms.RoomStatusRequest
}

type ReleaseStatusCall struct {
	PropertyID     string
	Kind           pms.StatusKind
	AvailabilityID string
}

// SnapshotCount returns how many snapshot fetches have been made. Safe to
// read while background refreshes are running.
func (f *Fake) SnapshotCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.SnapshotCalls
}

// SetBlock swaps the context-load gate. Safe while loads are in flight.
func (f *Fake) SetBlock(ch chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Block = ch
}

// SetContextResponse swaps the scripted context. Safe while loads are in flight.
func (f *Fake) SetContextResponse(bc *booking.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ContextResponse = bc
}

func (f *Fake) Snapshot(_ context.Context, _ string, _ calendar.Range) (*board.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SnapshotCalls++
	if f.SnapshotErr != nil {
		return nil, f.SnapshotErr
	}
	return f.SnapshotResponse, nil
}

func (f *Fake) LoadBookingContext(_ context.Context, _, _ string, stay calendar.Range, rooms int) (*booking.Context, error) {
	f.mu.Lock()
	f.ContextCalls++
	hook := f.ContextHook
	block := f.Block
	err := f.ContextErr
	resp := f.ContextResponse
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if hook != nil {
		return hook(stay, rooms)
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("pmstest: no context scripted")
	}
	return resp, nil
}

func (f *Fake) PlaceHold(_ context.Context, _ string, req pms.HoldRequest) (*pms.HoldReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.HoldCalls = append(f.HoldCalls, req)
	if f.HoldErr != nil {
		return nil, f.HoldErr
	}
	if f.HoldReceipt != nil {
		return f.HoldReceipt, nil
	}
	until, _ := time.Parse(time.RFC3339, req.HoldUntil)
	return &pms.HoldReceipt{
		Records:   []pms.HoldRecord{{ID: "hold-1"}},
		HoldUntil: until,
		RoomIDs:   append([]string(nil), req.RoomIDs...),
	}, nil
}

func (f *Fake) CreateRoomStatus(_ context.Context, propertyID string, kind pms.StatusKind, req pms.RoomStatusRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls = append(f.CreateCalls, CreateStatusCall{PropertyID: propertyID, Kind: kind, Request: req})
	return f.StatusErr
}

func (f *Fake) ReleaseRoomStatus(_ context.Context, propertyID string, kind pms.StatusKind, availabilityID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReleaseCalls = append(f.ReleaseCalls, ReleaseStatusCall{PropertyID: propertyID, Kind: kind, AvailabilityID: availabilityID})
	return f.StatusErr
}

func (f *Fake) CreatePaymentLink(_ context.Context, _ string, payload pms.PaymentLinkPayload) (*pms.PaymentLinkReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LinkCalls = append(f.LinkCalls, payload)
	if f.LinkErr != nil {
		return nil, f.LinkErr
	}
	if f.LinkReceipt != nil {
		return f.LinkReceipt, nil
	}
	return &pms.PaymentLinkReceipt{URL: "https://pay.example/link-1", OrderID: "order-1"}, nil
}

func (f *Fake) CreateCashBooking(_ context.Context, _ string, payload pms.CashBookingPayload) (*pms.CashBookingReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CashCalls = append(f.CashCalls, payload)
	if f.CashErr != nil {
		return nil, f.CashErr
	}
	if f.CashReceipt != nil {
		return f.CashReceipt, nil
	}
	return &pms.CashBookingReceipt{BookingNumber: "BK-1", TransactionID: "txn-1", Amount: payload.Payment.Amount}, nil
}
