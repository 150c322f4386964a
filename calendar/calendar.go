/*
Package calendar provides date-only values and range arithmetic for the board.

PURPOSE:
  Everything on the front-desk board is keyed by a calendar day, never a
  wall-clock instant. This package owns the date-only type, the ISO
  (YYYY-MM-DD) wire format, week/month boundaries, and past-date checks.

KEY CONCEPTS:
  - Date:  a calendar day with no time-of-day and no zone ambiguity
  - Range: an inclusive [From, To] span of days
  - Week:  seven consecutive days starting on Monday (board convention)

DESIGN PRINCIPLES:
  1. One wire format: ParseDate and Date.String round-trip exactly
  2. No hidden "now": past-date checks take the reference day explicitly
     where determinism matters; Today() is the single clock access point
  3. UTC-normalized internally so Equal/Before never depend on host zone

SEE ALSO:
  - board: uses the day sequence from a Range as the grid columns
  - booking: uses Date for stay ranges and selection clicks
*/
package calendar

import (
	"fmt"
	"time"
)

// ISOFormat is the only date layout exchanged with the upstream API.
const ISOFormat = "2006-01-02"

// =============================================================================
// DATE - A calendar day
// =============================================================================

// Date is a calendar day. The zero Date is "no date" (see IsZero).
type Date struct {
	t time.Time
}

// NewDate builds a Date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(ISOFormat, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for literals in wiring and tests.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string { return d.t.Format(ISOFormat) }

// Comparison
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) IsZero() bool       { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// Time returns the midnight-UTC instant of the day. Used when a wall-clock
// value must be derived from a board day (hold expiry display and the like).
func (d Date) Time() time.Time { return d.t }

// IsPast reports whether d is strictly before today.
func (d Date) IsPast() bool { return d.IsPastOf(Today()) }

// IsPastOf reports whether d is strictly before the given reference day.
func (d Date) IsPastOf(today Date) bool { return d.Before(today) }

// NightsUntil counts the nights between check-in d and check-out "to".
// A same-day or inverted range counts as zero nights.
func (d Date) NightsUntil(to Date) int {
	n := int(to.t.Sub(d.t).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// =============================================================================
// RANGE - Inclusive span of days
// =============================================================================

// Range is an inclusive [From, To] span of calendar days.
type Range struct {
	From Date
	To   Date
}

// Days expands the range into its ordered day sequence.
func (r Range) Days() []Date {
	if r.To.Before(r.From) {
		return nil
	}
	days := make([]Date, 0, r.From.NightsUntil(r.To)+1)
	for d := r.From; !d.After(r.To); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Contains reports whether the day falls inside the range.
func (r Range) Contains(d Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// =============================================================================
// WEEK / MONTH BOUNDARIES - Board navigation
// =============================================================================

// StartOfWeek returns the Monday of the week containing d.
func StartOfWeek(d Date) Date {
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return d.AddDays(-offset)
}

// WeekOf returns the seven-day board range starting on the Monday of d's week.
func WeekOf(d Date) Range {
	start := StartOfWeek(d)
	return Range{From: start, To: start.AddDays(6)}
}

// NextWeek and PreviousWeek step the board one week at a time.
func NextWeek(r Range) Range     { return Range{From: r.From.AddDays(7), To: r.To.AddDays(7)} }
func PreviousWeek(r Range) Range { return Range{From: r.From.AddDays(-7), To: r.To.AddDays(-7)} }

// StartOfMonth returns the first day of d's month.
func StartOfMonth(d Date) Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// EndOfMonth returns the last day of d's month.
func EndOfMonth(d Date) Date {
	return StartOfMonth(d).AddMonths(1).AddDays(-1)
}
