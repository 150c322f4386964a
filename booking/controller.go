package booking

import (
	"context"
	"sync"

	"github.com/stayfront/frontdesk-engine/calendar"
	"github.com/stayfront/frontdesk-engine/lifecycle"
	"github.com/stayfront/frontdesk-engine/pricing"
)

// ContextLoader fetches the booking context for one room type, stay range and
// requested room count. Implemented by the PMS client; faked in tests.
type ContextLoader interface {
	LoadBookingContext(ctx context.Context, propertyID, propertyRoomTypeID string, stay calendar.Range, roomsRequested int) (*Context, error)
}

// =============================================================================
// DRAFT CONTROLLER
// =============================================================================

// Controller owns the booking draft and the context-load lifecycle
// (Idle -> Loading -> Ready | Error). Every draft mutation reconciles guest
// counts and fires the mutation hook so dependent workflows (hold, payments)
// reset; every date-range or room-count change reloads the context while
// preserving whatever prior selections are still valid.
//
// Methods are safe for concurrent use. Context loads are sequence-tagged:
// the network call runs without the lock held, and a completion that lost the
// race to a newer load is discarded.
type Controller struct {
	loader     ContextLoader
	propertyID string
	today      func() calendar.Date

	mu             sync.Mutex
	roomTypeID     string
	requestedRooms int
	applied        calendar.Range
	selection      RangeSelection
	draft          *Draft
	state          lifecycle.State[*Context]
	seq            uint64

	// onMutate is invoked after every effective draft/date/room mutation.
	// The desk wires it to the hold reset cascade.
	onMutate func()
}

// NewController creates an idle controller for one property.
func NewController(loader ContextLoader, propertyID string) *Controller {
	return &Controller{
		loader:     loader,
		propertyID: propertyID,
		today:      calendar.Today,
		draft:      &Draft{},
		state:      lifecycle.Idle[*Context](),
		onMutate:   func() {},
	}
}

// OnMutate registers the cascade hook. Must be set before first use.
func (c *Controller) OnMutate(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fn != nil {
		c.onMutate = fn
	}
}

// SetClock overrides the past-date reference day. Test hook.
func (c *Controller) SetClock(today func() calendar.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = today
}

// State returns the context-load lifecycle value.
func (c *Controller) State() lifecycle.State[*Context] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.draft.clone()
	return *d
}

// Selection returns the in-progress two-click range.
func (c *Controller) Selection() RangeSelection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// AppliedRange returns the stay range the current context was loaded for.
func (c *Controller) AppliedRange() calendar.Range {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applied
}

// =============================================================================
// LIFECYCLE COMMANDS
// =============================================================================

// Start begins a new booking from an empty board cell: a one-night stay on
// the clicked day with the clicked room preselected.
func (c *Controller) Start(ctx context.Context, roomTypeID, roomID string, day calendar.Date) error {
	c.mu.Lock()
	c.roomTypeID = roomTypeID
	c.requestedRooms = 1
	c.applied = calendar.Range{From: day, To: day.AddDays(1)}
	c.selection = RangeSelection{}
	c.draft = &Draft{
		From:            day,
		To:              day.AddDays(1),
		SelectedRoomIDs: []string{roomID},
	}
	c.mu.Unlock()

	c.onMutate()
	return c.load(ctx, true)
}

// Retry re-runs the last context load after a failure.
func (c *Controller) Retry(ctx context.Context) error {
	return c.load(ctx, true)
}

// ClickDate folds one calendar tap into the pending range selection.
func (c *Controller) ClickDate(day calendar.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = c.selection.Click(day, c.today())
}

// ApplySelection commits the pending range: the draft dates move, dependent
// workflows reset, and the context reloads preserving the room selection.
func (c *Controller) ApplySelection(ctx context.Context) error {
	c.mu.Lock()
	from, to, ok := c.selection.Stay()
	if !ok {
		c.mu.Unlock()
		return nil
	}
	c.applied = calendar.Range{From: from, To: to}
	c.draft = c.draft.clone()
	c.draft.From, c.draft.To = from, to
	c.selection = RangeSelection{}
	c.mu.Unlock()

	c.onMutate()
	return c.load(ctx, true)
}

// SetRequestedRooms changes how many rooms the context is asked for and
// reloads it.
func (c *Controller) SetRequestedRooms(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	c.mu.Lock()
	if n == c.requestedRooms {
		c.mu.Unlock()
		return nil
	}
	c.requestedRooms = n
	c.mu.Unlock()

	c.onMutate()
	return c.load(ctx, true)
}

// load fetches the booking context. The request runs without the lock; a
// stale completion (an older sequence number) is dropped on the floor.
func (c *Controller) load(ctx context.Context, preserve bool) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state = lifecycle.Loading[*Context]()
	propertyID, roomTypeID := c.propertyID, c.roomTypeID
	stay, rooms := c.applied, c.requestedRooms
	c.mu.Unlock()

	bc, err := c.loader.LoadBookingContext(ctx, propertyID, roomTypeID, stay, rooms)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return nil // superseded by a newer load
	}
	if err != nil {
		c.state = lifecycle.Failed[*Context](err.Error())
		return err
	}
	c.state = lifecycle.Succeeded(bc)
	c.adoptContext(bc, preserve)
	return nil
}

// adoptContext reconciles the draft against a freshly-loaded context:
// the prior room selection survives filtered to rooms still available, the
// meal plan survives only if still offered, and empty results fall back to
// the first offered plan and the first requested-many available rooms.
// Caller holds c.mu.
func (c *Controller) adoptContext(bc *Context, preserve bool) {
	draft := c.draft.clone()

	available := bc.RoomType.AvailableRooms()

	var kept []string
	if preserve {
		for _, id := range draft.SelectedRoomIDs {
			for _, r := range available {
				if r.ID == id {
					kept = append(kept, id)
					break
				}
			}
		}
	}
	if len(kept) == 0 {
		want := c.requestedRooms
		if want < 1 {
			want = 1
		}
		for i := 0; i < len(available) && i < want; i++ {
			kept = append(kept, available[i].ID)
		}
	}
	draft.SelectedRoomIDs = kept

	if _, ok := bc.Plan(draft.MealPlanID); !ok {
		draft.MealPlanID = ""
		if len(bc.MealPlans) > 0 {
			draft.MealPlanID = bc.MealPlans[0].MealPlanID
		}
	}

	c.draft = Reconcile(draft, bc)
}

// =============================================================================
// DRAFT MUTATIONS
// =============================================================================

// SetGuests replaces the guest counts and reconciles them.
func (c *Controller) SetGuests(adults, children, infants int) {
	c.mutate(func(d *Draft) {
		d.Adults, d.Children, d.Infants = adults, children, infants
	})
}

// SetMealPlan selects a meal plan by its meal-plan ID.
func (c *Controller) SetMealPlan(mealPlanID string) {
	c.mutate(func(d *Draft) { d.MealPlanID = mealPlanID })
}

// SetNotes replaces the free-text notes.
func (c *Controller) SetNotes(notes string) {
	c.mutate(func(d *Draft) { d.Notes = notes })
}

// ToggleRoom adds or removes a room from the selection, preserving order.
func (c *Controller) ToggleRoom(roomID string) {
	c.mutate(func(d *Draft) {
		for i, id := range d.SelectedRoomIDs {
			if id == roomID {
				d.SelectedRoomIDs = append(d.SelectedRoomIDs[:i], d.SelectedRoomIDs[i+1:]...)
				return
			}
		}
		d.SelectedRoomIDs = append(d.SelectedRoomIDs, roomID)
	})
}

// mutate applies one edit, reconciles, and fires the cascade when anything
// effectively changed.
func (c *Controller) mutate(edit func(*Draft)) {
	c.mu.Lock()
	before := c.draft
	next := before.clone()
	edit(next)

	var bc *Context
	if v, ok := c.state.Value(); ok {
		bc = v
	}
	next = Reconcile(next, bc)

	changed := !draftsEqual(before, next)
	if changed {
		c.draft = next
	}
	c.mu.Unlock()

	if changed {
		c.onMutate()
	}
}

func draftsEqual(a, b *Draft) bool {
	if a.From != b.From || a.To != b.To ||
		a.Adults != b.Adults || a.Children != b.Children || a.Infants != b.Infants ||
		a.MealPlanID != b.MealPlanID || a.Notes != b.Notes ||
		len(a.SelectedRoomIDs) != len(b.SelectedRoomIDs) {
		return false
	}
	for i := range a.SelectedRoomIDs {
		if a.SelectedRoomIDs[i] != b.SelectedRoomIDs[i] {
			return false
		}
	}
	return true
}

// =============================================================================
// QUOTE + VALIDATION
// =============================================================================

// Quote prices the current draft. A nil summary with a nil error means a
// quote is not applicable yet (no context, no plan match, or no rooms).
func (c *Controller) Quote() (*pricing.Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quoteLocked()
}

func (c *Controller) quoteLocked() (*pricing.Summary, error) {
	bc, ok := c.state.Value()
	if !ok || bc == nil {
		return nil, nil
	}
	if len(c.draft.SelectedRoomIDs) == 0 {
		return nil, nil
	}
	plan, ok := bc.Plan(c.draft.MealPlanID)
	if !ok {
		return nil, nil
	}

	return pricing.Quote(pricing.Input{
		Nights:           bc.Nights(),
		Rooms:            len(c.draft.SelectedRoomIDs),
		Occupancy:        bc.RoomType.Occupancy,
		ExtraBedCapacity: bc.RoomType.ExtraBedCapacity,
		Rates: pricing.Rates{
			SingleOccupancy: plan.Rates.SingleOccupancy,
			DoubleOccupancy: plan.Rates.DoubleOccupancy,
			GroupOccupancy:  plan.Rates.GroupOccupancy,
			ExtraBedAdult:   plan.Rates.ExtraBedAdult,
			ExtraBedChild:   plan.Rates.ExtraBedChild,
			ExtraBedInfant:  plan.Rates.ExtraBedInfant,
		},
		Guests: pricing.GuestCounts{
			Adults:   c.draft.Adults,
			Children: c.draft.Children,
			Infants:  c.draft.Infants,
		},
	})
}
