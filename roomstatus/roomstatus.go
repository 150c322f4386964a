/*
Package roomstatus drives the room operational-status workflows: blocking a
room, marking it under maintenance, or taking it out of service - and
releasing any of those again.

PURPOSE:
  Unlike holds and payments, room status is keyed by (room, date), not
  by the booking draft; the controller is fully independent of the
  reservation workflow. Each of the three status kinds maps to its own
  create/release operation upstream, but all share one request shape
  and one lifecycle.

RULES:
  - create needs the room type, the room, and a valid non-past date;
    blocking additionally needs a positive release-after-hours duration
  - release needs an existing availability record ID; a release against
    a slot without one is a NO-OP, not an error, and must not touch the
    network. Past dates are releasable - stale records still need
    cleaning up.
  - on success: refresh the board, then after a short delay reset the
    form and close the modal (same timed cascade as cash payments)
*/
package roomstatus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stayfront/frontdesk-engine/actor"
	"github.com/stayfront/frontdesk-engine/calendar"
	"github.com/stayfront/frontdesk-engine/lifecycle"
	"github.com/stayfront/frontdesk-engine/pms"
)

// DefaultCascadeDelay keeps the confirmation on screen before the form
// resets and the modal closes.
const DefaultCascadeDelay = 2 * time.Second

var (
	// ErrInvalidRequest carries a field-level problem with a create request.
	ErrInvalidRequest = errors.New("roomstatus: invalid request")

	// ErrInFlight means a status request is already running.
	ErrInFlight = errors.New("roomstatus: request already in flight")
)

// Changer is the network dependency. Implemented by the PMS client.
type Changer interface {
	CreateRoomStatus(ctx context.Context, propertyID string, kind pms.StatusKind, req pms.RoomStatusRequest) error
	ReleaseRoomStatus(ctx context.Context, propertyID string, kind pms.StatusKind, availabilityID string) error
}

// CreateInput describes one status record to create.
type CreateInput struct {
	Kind               pms.StatusKind
	PropertyRoomTypeID string
	RoomID             string
	Date               calendar.Date
	ReleaseAfterHours  int    // required positive for blocks
	Reason             string // optional
}

// Outcome is the success payload: the message shown next to the form.
type Outcome struct {
	Message string
}

// Controller owns the room-status request state for one desk session.
type Controller struct {
	changer    Changer
	propertyID string
	by         actor.Actor
	today      func() calendar.Date

	mu    sync.Mutex
	state lifecycle.State[Outcome]
	seq   uint64

	onRefresh func() // board refresh, fired immediately on success
	cascade   func() // delayed form reset + modal close
	delay     time.Duration
}

// NewController creates an idle room-status controller.
func NewController(changer Changer, propertyID string, by actor.Actor) *Controller {
	return &Controller{
		changer:    changer,
		propertyID: propertyID,
		by:         by,
		today:      calendar.Today,
		state:      lifecycle.Idle[Outcome](),
		onRefresh:  func() {},
		cascade:    func() {},
		delay:      DefaultCascadeDelay,
	}
}

// OnSuccess registers the immediate refresh hook and the delayed cascade.
func (c *Controller) OnSuccess(refresh, cascade func(), delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if refresh != nil {
		c.onRefresh = refresh
	}
	if cascade != nil {
		c.cascade = cascade
	}
	if delay >= 0 {
		c.delay = delay
	}
}

// SetClock overrides the past-date reference day. Test hook.
func (c *Controller) SetClock(today func() calendar.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = today
}

// State returns the request lifecycle value.
func (c *Controller) State() lifecycle.State[Outcome] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Create submits one blocked/maintenance/out-of-service record.
func (c *Controller) Create(ctx context.Context, in CreateInput) error {
	c.mu.Lock()
	today := c.today()
	c.mu.Unlock()

	switch {
	case in.PropertyRoomTypeID == "":
		return errors.Join(ErrInvalidRequest, errors.New("room type is required"))
	case in.RoomID == "":
		return errors.Join(ErrInvalidRequest, errors.New("room is required"))
	case in.Date.IsZero():
		return errors.Join(ErrInvalidRequest, errors.New("date is required"))
	case in.Date.IsPastOf(today):
		return errors.Join(ErrInvalidRequest, errors.New("date cannot be in the past"))
	case in.Kind == pms.StatusBlocked && in.ReleaseAfterHours <= 0:
		return errors.Join(ErrInvalidRequest, errors.New("release duration must be a positive number of hours"))
	}

	return c.run(ctx, "Room status updated.", func(ctx context.Context) error {
		return c.changer.CreateRoomStatus(ctx, c.propertyID, in.Kind, pms.RoomStatusRequest{
			PropertyRoomTypeID: in.PropertyRoomTypeID,
			RoomID:             in.RoomID,
			Date:               in.Date.String(),
			ReleaseAfterHours:  in.ReleaseAfterHours,
			Reason:             in.Reason,
			BlockedBy:          c.by.Label,
		})
	})
}

// Release removes an existing status record. A slot without an availability
// record ID silently no-ops: there is nothing to release and no call is made.
// Past dates are always permitted here.
func (c *Controller) Release(ctx context.Context, kind pms.StatusKind, availabilityID string) error {
	if availabilityID == "" {
		return nil
	}
	return c.run(ctx, "Room status released.", func(ctx context.Context) error {
		return c.changer.ReleaseRoomStatus(ctx, c.propertyID, kind, availabilityID)
	})
}

// run executes one network operation under the shared lifecycle.
func (c *Controller) run(ctx context.Context, successMsg string, op func(context.Context) error) error {
	c.mu.Lock()
	if c.state.IsLoading() {
		c.mu.Unlock()
		return ErrInFlight
	}
	c.seq++
	seq := c.seq
	c.state = lifecycle.Loading[Outcome]()
	refresh, cascade, delay := c.onRefresh, c.cascade, c.delay
	c.mu.Unlock()

	err := op(ctx)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.state = lifecycle.Failed[Outcome](err.Error())
		c.mu.Unlock()
		return err
	}
	c.state = lifecycle.Succeeded(Outcome{Message: successMsg})
	c.mu.Unlock()

	refresh()
	time.AfterFunc(delay, cascade)
	return nil
}

// Reset drops the request state back to Idle. Part of the delayed cascade.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.state = lifecycle.Idle[Outcome]()
}
