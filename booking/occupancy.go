package booking

// =============================================================================
// OCCUPANCY ENGINE - Guest count reconciliation
// =============================================================================

// Reconcile clamps the draft's guest counts into the capacity envelope of the
// context and the current room selection. It returns the SAME draft pointer
// when nothing changed, so downstream recomputation can key off identity; any
// change returns a fresh copy and leaves the input untouched.
//
// Rules, in order:
//  1. No context: only guarantee non-negative counts.
//  2. No rooms selected: an all-zero draft seeds adults to
//     max(minOccupancy, 1); any other counts are left alone.
//  3. Rooms selected: trim overflow beyond rooms x (occupancy + extra beds)
//     infants first, then children, then adults. If the total is below
//     rooms x minOccupancy, top up adults by the deficit - but only when the
//     top-up still fits under the cap; otherwise leave the draft under
//     minimum and let validation raise a warning.
//
// Reconcile is idempotent: reconciling its own output is a no-op.
func Reconcile(draft *Draft, ctx *Context) *Draft {
	if draft == nil {
		return nil
	}

	adults, children, infants := clampNonNegative(draft.Adults), clampNonNegative(draft.Children), clampNonNegative(draft.Infants)

	switch {
	case ctx == nil:
		// no capacity knowledge; non-negativity only

	case len(draft.SelectedRoomIDs) == 0:
		if adults == 0 && children == 0 && infants == 0 {
			adults = max(ctx.RoomType.MinOccupancy, 1)
		}

	default:
		rooms := len(draft.SelectedRoomIDs)
		maxGuests := rooms * (ctx.RoomType.Occupancy + ctx.RoomType.ExtraBedCapacity)
		minGuests := rooms * ctx.RoomType.MinOccupancy

		// Trim overflow one guest at a time: infants, then children, then adults.
		for adults+children+infants > maxGuests {
			if infants > 0 {
				infants--
			} else if children > 0 {
				children--
			} else if adults > 0 {
				adults--
			} else {
				break
			}
		}

		if total := adults + children + infants; total < minGuests {
			deficit := minGuests - total
			if total+deficit <= maxGuests {
				adults += deficit
			}
		}
	}

	if adults == draft.Adults && children == draft.Children && infants == draft.Infants {
		return draft
	}
	out := draft.clone()
	out.Adults, out.Children, out.Infants = adults, children, infants
	return out
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
