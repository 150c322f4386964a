package booking

import "github.com/stayfront/frontdesk-engine/calendar"

// =============================================================================
// DATE-RANGE SELECTION - Two-click calendar interaction
// =============================================================================

// RangeSelection is the in-progress two-click date pick. From set with a zero
// To means the first click has landed and the range is still open.
type RangeSelection struct {
	From calendar.Date
	To   calendar.Date
}

func (s RangeSelection) IsEmpty() bool    { return s.From.IsZero() }
func (s RangeSelection) IsComplete() bool { return !s.From.IsZero() && !s.To.IsZero() }

// Click folds one calendar tap into the selection:
//   - past days (before today) never select and leave the state unchanged
//   - first click opens the range at the clicked day
//   - second click closes it, reordering when it lands before the first,
//     or collapsing to a one-day range when the same day is clicked twice
//   - a click on a completed selection starts over
func (s RangeSelection) Click(d, today calendar.Date) RangeSelection {
	if d.IsPastOf(today) {
		return s
	}
	if s.IsEmpty() || s.IsComplete() {
		return RangeSelection{From: d}
	}
	if d.Before(s.From) {
		return RangeSelection{From: d, To: s.From}
	}
	return RangeSelection{From: s.From, To: d}
}

// Stay resolves the selection into a check-in/check-out pair. An open or
// one-day selection becomes a single night.
func (s RangeSelection) Stay() (from, to calendar.Date, ok bool) {
	if s.IsEmpty() {
		return calendar.Date{}, calendar.Date{}, false
	}
	from = s.From
	to = s.To
	if to.IsZero() || !to.After(from) {
		to = from.AddDays(1)
	}
	return from, to, true
}
