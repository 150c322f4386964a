/*
Package activity records what happened at the front desk.

PURPOSE:
  Every confirmed action - a hold placed, a payment link issued, a cash
  booking finalized, a room blocked or released - appends one immutable
  record. The ledger answers "who did what, when" per property, newest
  first.

DESIGN PRINCIPLES:
  1. Append-only: records are never updated or deleted
  2. Best-effort: a ledger failure never fails the user-facing action;
     the desk logs and moves on
  3. Details are free-form key/value pairs so new actions need no schema
     change

IMPLEMENTATIONS:
  - Memory (this package): tests and ephemeral deployments
  - store/sqlite: durable ledger for real deployments
*/
package activity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stayfront/frontdesk-engine/actor"
)

// Kind names the action a record captures.
type Kind string

const (
	KindHoldPlaced         Kind = "hold_placed"
	KindPaymentLinkIssued  Kind = "payment_link_issued"
	KindCashBookingCreated Kind = "cash_booking_created"
	KindRoomStatusCreated  Kind = "room_status_created"
	KindRoomStatusReleased Kind = "room_status_released"
)

// Record is one immutable ledger entry.
type Record struct {
	ID         string
	PropertyID string
	Actor      actor.Actor
	Kind       Kind
	// Reference points at the server-side artifact (hold record, booking
	// number, availability ID). May be empty.
	Reference string
	Details   map[string]string
	CreatedAt time.Time
}

// NewRecord stamps ID and creation time onto a record.
func NewRecord(propertyID string, by actor.Actor, kind Kind, reference string, details map[string]string) Record {
	return Record{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		Actor:      by,
		Kind:       kind,
		Reference:  reference,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
}

// Log is the ledger interface.
type Log interface {
	// Append stores one record.
	Append(ctx context.Context, rec Record) error

	// ListByProperty returns up to limit records for a property, newest
	// first. limit <= 0 means no limit.
	ListByProperty(ctx context.Context, propertyID string, limit int) ([]Record, error)
}

// =============================================================================
// IN-MEMORY LOG
// =============================================================================

// Memory is the in-memory ledger used in tests and ephemeral deployments.
type Memory struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Append(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *Memory) ListByProperty(_ context.Context, propertyID string, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Record
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].PropertyID != propertyID {
			continue
		}
		out = append(out, m.records[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
