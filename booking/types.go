/*
Package booking owns the in-progress reservation: the draft, the booking
context fetched for it, the occupancy engine reconciling the two, the
two-click date-range selection, and the draft controller tying them
together with validation.

PURPOSE:
  The front desk builds a reservation incrementally: pick a room type
  and date range, pick rooms, adjust guest counts, pick a meal plan.
  The server's booking context (capacities, rates, room availability)
  is reloaded whenever the dates or the requested room count change;
  everything the user already chose must survive that reload where it
  is still valid.

KEY CONCEPTS:
  - Draft:    the client-owned, mutable reservation-in-progress
  - Context:  the server's answer for one (room type, range, rooms)
  - Reconcile: clamps guest counts into the capacity envelope
  - Validation: blocking errors vs non-blocking warnings, computed,
    never stored

INVARIANT:
  After reconciliation with a context and a non-empty room selection,
  adults + children + infants <= rooms x (occupancy + extra beds).

SEE ALSO:
  - pricing: quotes the draft against the context's rate card
  - hold, payment: consume the validated draft downstream
*/
package booking

import (
	"github.com/shopspring/decimal"

	"github.com/stayfront/frontdesk-engine/calendar"
)

// =============================================================================
// DRAFT - Client-owned reservation in progress
// =============================================================================

// Draft is the mutable reservation being assembled at the desk.
type Draft struct {
	From calendar.Date
	To   calendar.Date

	Adults   int
	Children int
	Infants  int

	// MealPlanID references the meal plan itself, not the property's
	// rate-plan row offering it (PlanOption.ID).
	MealPlanID string

	// SelectedRoomIDs is an order-preserving set of Context room IDs.
	SelectedRoomIDs []string

	Notes string
}

func (d *Draft) TotalGuests() int { return d.Adults + d.Children + d.Infants }

// HasRoom reports whether the room is part of the current selection.
func (d *Draft) HasRoom(roomID string) bool {
	for _, id := range d.SelectedRoomIDs {
		if id == roomID {
			return true
		}
	}
	return false
}

// clone returns a field-wise copy with its own room-ID slice.
func (d *Draft) clone() *Draft {
	cp := *d
	cp.SelectedRoomIDs = append([]string(nil), d.SelectedRoomIDs...)
	return &cp
}

// =============================================================================
// CONTEXT - Server response for one (room type, range, room count)
// =============================================================================

// Stay is the applied date range as the server resolved it.
type Stay struct {
	From         calendar.Date
	To           calendar.Date
	Nights       int
	CheckInTime  string // "14:00"
	CheckOutTime string // "11:00"
}

// ContextRoom is one physical room of the context's room type.
type ContextRoom struct {
	ID               string
	Label            string
	AvailableForStay bool
}

// RoomType carries the capacity envelope the occupancy engine works with.
type RoomType struct {
	ID                 string
	PropertyRoomTypeID string
	MinOccupancy       int
	Occupancy          int // base beds per room
	ExtraBedCapacity   int // extra beds per room
	Rooms              []ContextRoom
}

// AvailableRooms filters to the rooms bookable for the stay, in order.
func (rt RoomType) AvailableRooms() []ContextRoom {
	var out []ContextRoom
	for _, r := range rt.Rooms {
		if r.AvailableForStay {
			out = append(out, r)
		}
	}
	return out
}

// PlanRates is the rate card of one offered plan, plain currency units.
type PlanRates struct {
	SingleOccupancy decimal.Decimal
	DoubleOccupancy decimal.Decimal
	GroupOccupancy  decimal.Decimal
	ExtraBedAdult   decimal.Decimal
	ExtraBedChild   decimal.Decimal
	ExtraBedInfant  decimal.Decimal
}

// PlanOption is one meal plan offered for the room type. ID is the property's
// rate-plan row; MealPlanID is the plan the draft references.
type PlanOption struct {
	ID           string
	MealPlanID   string
	MealPlanName string
	MealPlanKind string
	RatePlanName string
	Rates        PlanRates
}

// Context is the booking context fetched per room type + date range +
// requested room count. Replaced wholesale on every reload; reconciliation is
// the only thing that reads it incrementally.
type Context struct {
	Stay             Stay
	RoomType         RoomType
	MealPlans        []PlanOption
	CanFulfilRequest bool
}

// Plan finds the offered plan whose meal plan matches the draft's selection.
func (c *Context) Plan(mealPlanID string) (PlanOption, bool) {
	for _, p := range c.MealPlans {
		if p.MealPlanID == mealPlanID {
			return p, true
		}
	}
	return PlanOption{}, false
}

// Nights returns the server-resolved night count, falling back to the range
// arithmetic when the server omitted it.
func (c *Context) Nights() int {
	if c.Stay.Nights > 0 {
		return c.Stay.Nights
	}
	return c.Stay.From.NightsUntil(c.Stay.To)
}
