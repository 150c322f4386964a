/*
Package pricing computes multi-room, multi-night stay pricing.

PURPOSE:
  Given the rate card of a meal plan (occupancy-tiered base rates plus
  extra-bed rates per guest type) and the shape of a draft booking
  (rooms, nights, guest counts), produce the nightly and total price,
  a per-room breakdown, and per-room tax.

PRICING RULES (must hold exactly, see pricing_test.go):
  1. Nights are clamped to a minimum of 1.
  2. Base rate tier: group rate when occupancy > 2 and a group rate
     exists; double rate when occupancy >= 2 and a double rate exists;
     otherwise the first positive of single, double, group.
  3. Guests fill base capacity (rooms x occupancy) adults first, then
     children, then infants; whoever is left over is an extra. Extras
     beyond rooms x extra-bed capacity reject the quote.
  4. All extra-bed charges attach to room 1 only. They are never spread
     across rooms, mirroring how the base rate is quoted per room.
  5. Tax brackets apply PER ROOM over the whole stay: a room whose own
     base price is at most 7,500 is taxed at 5%, above that at 18%.
     Per-room tax is then summed. Two rooms at 5,000 each therefore tax
     differently than one room at 10,000 - that asymmetry is the rule,
     not a rounding artifact, and must not be "simplified" into one
     aggregate bracket.

MONEY:
  All amounts are decimal.Decimal in plain currency units. No floats,
  no minor units; minor-unit conversion happens at the wire boundary.

SEE ALSO:
  - booking: builds the Input from its draft + context and owns the
    preconditions (meal-plan match, room selection) that decide whether
    a quote is attempted at all
*/
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Tax bracket boundary and rates, applied to a room's base price over the
// full stay.
var (
	taxThreshold = decimal.NewFromInt(7500)
	taxRateLow   = decimal.NewFromFloat(0.05)
	taxRateHigh  = decimal.NewFromFloat(0.18)
)

var (
	// ErrBaseRateUnavailable means no usable base rate tier exists on the
	// selected meal plan.
	ErrBaseRateUnavailable = errors.New("base pricing information is unavailable for the selected meal plan")

	// ErrExtraCapacityExceeded means the guests left over after filling base
	// capacity do not fit the extra beds of the selected rooms.
	ErrExtraCapacityExceeded = errors.New("guests exceed the extra-bed capacity of the selected rooms")
)

// Rates is the rate card of one meal plan.
type Rates struct {
	SingleOccupancy decimal.Decimal
	DoubleOccupancy decimal.Decimal
	GroupOccupancy  decimal.Decimal
	ExtraBedAdult   decimal.Decimal
	ExtraBedChild   decimal.Decimal
	ExtraBedInfant  decimal.Decimal
}

// GuestCounts is a non-negative guest tally by type.
type GuestCounts struct {
	Adults   int
	Children int
	Infants  int
}

func (g GuestCounts) Total() int { return g.Adults + g.Children + g.Infants }

// Input is everything the engine needs for one quote.
type Input struct {
	Nights           int
	Rooms            int
	Occupancy        int // base capacity per room
	ExtraBedCapacity int // extra beds per room
	Rates            Rates
	Guests           GuestCounts
}

// RoomBreakdown is the pre- and post-tax price of one room over the stay.
// RoomIndex is 1-based; extras are only ever non-zero on room 1.
type RoomBreakdown struct {
	RoomIndex    int
	BasePerNight decimal.Decimal
	Extras       GuestCounts
	Total        decimal.Decimal // pre-tax, over the stay
	Tax          decimal.Decimal
	TotalWithTax decimal.Decimal
}

// Summary is a complete quote.
type Summary struct {
	Nights         int
	TotalBasePrice decimal.Decimal // pre-tax, all rooms, all nights
	TotalTax       decimal.Decimal
	Total          decimal.Decimal // TotalBasePrice + TotalTax
	PerRoom        []RoomBreakdown
	Extras         GuestCounts // guests charged as extras
}

// Quote prices the stay. It assumes the caller has already matched a meal
// plan and selected at least one room; those preconditions are the booking
// controller's, not the engine's.
func Quote(in Input) (*Summary, error) {
	nights := in.Nights
	if nights < 1 {
		nights = 1
	}
	if in.Rooms < 1 {
		return nil, ErrBaseRateUnavailable
	}

	base, err := resolveBaseRate(in.Occupancy, in.Rates)
	if err != nil {
		return nil, err
	}

	extras := allocateExtras(in.Guests, in.Rooms*in.Occupancy)
	if extras.Total() > in.Rooms*in.ExtraBedCapacity {
		return nil, ErrExtraCapacityExceeded
	}

	extrasPerNight := in.Rates.ExtraBedAdult.Mul(decimal.NewFromInt(int64(extras.Adults))).
		Add(in.Rates.ExtraBedChild.Mul(decimal.NewFromInt(int64(extras.Children)))).
		Add(in.Rates.ExtraBedInfant.Mul(decimal.NewFromInt(int64(extras.Infants))))

	nightsD := decimal.NewFromInt(int64(nights))
	basePerNightTotal := base.Mul(decimal.NewFromInt(int64(in.Rooms)))
	totalPerNight := basePerNightTotal.Add(extrasPerNight)
	totalBasePrice := totalPerNight.Mul(nightsD)

	summary := &Summary{
		Nights:         nights,
		TotalBasePrice: totalBasePrice,
		Extras:         extras,
		PerRoom:        make([]RoomBreakdown, in.Rooms),
	}

	totalTax := decimal.Zero
	for i := 0; i < in.Rooms; i++ {
		perNight := base
		rb := RoomBreakdown{RoomIndex: i + 1, BasePerNight: base}
		if i == 0 {
			// Room 1 carries every extra-bed charge.
			perNight = perNight.Add(extrasPerNight)
			rb.Extras = extras
		}
		rb.Total = perNight.Mul(nightsD)
		rb.Tax = roomTax(rb.Total)
		rb.TotalWithTax = rb.Total.Add(rb.Tax)
		totalTax = totalTax.Add(rb.Tax)
		summary.PerRoom[i] = rb
	}

	summary.TotalTax = totalTax
	summary.Total = totalBasePrice.Add(totalTax)
	return summary, nil
}

// resolveBaseRate picks the per-room per-night rate for the room type's base
// occupancy. Tier selection prefers the rate matching the occupancy, then
// falls back through single, double, group to the first positive rate.
func resolveBaseRate(occupancy int, r Rates) (decimal.Decimal, error) {
	switch {
	case occupancy > 2 && r.GroupOccupancy.IsPositive():
		return r.GroupOccupancy, nil
	case occupancy >= 2 && r.DoubleOccupancy.IsPositive():
		return r.DoubleOccupancy, nil
	}
	for _, rate := range []decimal.Decimal{r.SingleOccupancy, r.DoubleOccupancy, r.GroupOccupancy} {
		if rate.IsPositive() {
			return rate, nil
		}
	}
	return decimal.Zero, ErrBaseRateUnavailable
}

// allocateExtras fills base capacity adults first, then children, then
// infants, and returns whoever is left over. The fill order matches the
// occupancy engine's trim order so the two never disagree about who the
// extras are.
func allocateExtras(g GuestCounts, baseCapacity int) GuestCounts {
	remaining := baseCapacity

	take := func(n int) int {
		if n <= remaining {
			remaining -= n
			return 0
		}
		over := n - remaining
		remaining = 0
		return over
	}

	return GuestCounts{
		Adults:   take(g.Adults),
		Children: take(g.Children),
		Infants:  take(g.Infants),
	}
}

// roomTax applies the per-room bracket to a room's stay-total base price.
func roomTax(roomBasePrice decimal.Decimal) decimal.Decimal {
	if roomBasePrice.LessThanOrEqual(taxThreshold) {
		return roomBasePrice.Mul(taxRateLow)
	}
	return roomBasePrice.Mul(taxRateHigh)
}
