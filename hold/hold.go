/*
Package hold drives the temporary room-hold lifecycle.

PURPOSE:
  Before payment is collected, the selected rooms are taken off the
  market for a fixed window (15 minutes at the front desk). The hold is
  the gate for both payment workflows: neither the payment link nor the
  cash finalization may run without a successful hold.

LIFECYCLE:
  Idle -> Loading -> Success{records, holdUntil} | Error{message}

  Any mutation of the booking draft, room selection or applied dates
  resets the hold to Idle; the reset cascades to the payment
  controllers through the OnReset hook, because a payment without its
  hold is meaningless.

EXPIRY:
  holdUntil is informational. The desk displays it; releasing expired
  holds is the PMS's job, not a local state transition.
*/
package hold

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stayfront/frontdesk-engine/actor"
	"github.com/stayfront/frontdesk-engine/booking"
	"github.com/stayfront/frontdesk-engine/lifecycle"
	"github.com/stayfront/frontdesk-engine/pms"
)

// Duration is the fixed front-desk hold window.
const Duration = 15 * time.Minute

var (
	// ErrDraftInvalid means validation reported blocking errors.
	ErrDraftInvalid = errors.New("hold: booking draft has blocking errors")

	// ErrNoPrice means the draft has no positive-total quote to hold against.
	ErrNoPrice = errors.New("hold: booking draft has no positive price")

	// ErrInFlight means a hold request is already running.
	ErrInFlight = errors.New("hold: request already in flight")

	// ErrDraftChanged means the draft was mutated while the submission was
	// being prepared; the hold must be re-submitted against the new draft.
	ErrDraftChanged = errors.New("hold: booking draft changed during submission")
)

// Placer is the network dependency. Implemented by the PMS client.
type Placer interface {
	PlaceHold(ctx context.Context, propertyID string, req pms.HoldRequest) (*pms.HoldReceipt, error)
}

// Controller owns the hold request state for one desk session.
type Controller struct {
	placer     Placer
	drafts     *booking.Controller
	propertyID string
	by         actor.Actor
	now        func() time.Time

	mu      sync.Mutex
	state   lifecycle.State[pms.HoldReceipt]
	seq     uint64
	onReset func()
}

// NewController wires the hold workflow to the draft controller it guards.
func NewController(placer Placer, drafts *booking.Controller, propertyID string, by actor.Actor) *Controller {
	return &Controller{
		placer:     placer,
		drafts:     drafts,
		propertyID: propertyID,
		by:         by,
		now:        time.Now,
		state:      lifecycle.Idle[pms.HoldReceipt](),
		onReset:    func() {},
	}
}

// OnReset registers the cascade hook fired on every reset (payment
// controllers reset with the hold).
func (c *Controller) OnReset(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fn != nil {
		c.onReset = fn
	}
}

// SetClock overrides the hold-until reference clock. Test hook.
func (c *Controller) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// State returns the current lifecycle value.
func (c *Controller) State() lifecycle.State[pms.HoldReceipt] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Receipt returns the successful hold, if there is one.
func (c *Controller) Receipt() (pms.HoldReceipt, bool) {
	return c.State().Value()
}

// Submit places the hold for the current draft. Submission is refused while
// validation has blocking errors, while the quote is missing or non-positive,
// and while another hold request is in flight. The draft is read without the
// controller lock held; the sequence captured up front detects a reset
// landing in that window, so a mutated draft can never be held.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state.IsLoading() {
		c.mu.Unlock()
		return ErrInFlight
	}
	seq := c.seq
	now := c.now
	c.mu.Unlock()

	if v := c.drafts.Validate(); !v.OK() {
		return ErrDraftInvalid
	}
	quote, err := c.drafts.Quote()
	if err != nil || quote == nil || !quote.Total.IsPositive() {
		return ErrNoPrice
	}

	bc, ok := c.drafts.State().Value()
	if !ok {
		return ErrDraftInvalid
	}
	draft := c.drafts.Draft()
	holdUntil := now().Add(Duration)

	c.mu.Lock()
	if c.state.IsLoading() {
		c.mu.Unlock()
		return ErrInFlight
	}
	if c.seq != seq {
		c.mu.Unlock()
		return ErrDraftChanged
	}
	c.seq++
	seq = c.seq
	c.state = lifecycle.Loading[pms.HoldReceipt]()
	c.mu.Unlock()

	receipt, err := c.placer.PlaceHold(ctx, c.propertyID, pms.HoldRequest{
		PropertyRoomTypeID: bc.RoomType.PropertyRoomTypeID,
		RoomIDs:            draft.SelectedRoomIDs,
		From:               draft.From.String(),
		To:                 draft.To.String(),
		HoldUntil:          holdUntil.UTC().Format(time.RFC3339),
		BlockedBy:          c.by.Label,
		Reason:             draft.Notes,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return nil // reset or newer submit won the race
	}
	if err != nil {
		c.state = lifecycle.Failed[pms.HoldReceipt](err.Error())
		return err
	}
	c.state = lifecycle.Succeeded(*receipt)
	return nil
}

// Reset drops the hold state back to Idle and fires the cascade. Invoked by
// the desk on every draft mutation.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.seq++ // invalidate any in-flight completion
	c.state = lifecycle.Idle[pms.HoldReceipt]()
	fn := c.onReset
	c.mu.Unlock()

	// The cascade fires even when already idle; resets are idempotent.
	fn()
}
