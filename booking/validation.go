package booking

// =============================================================================
// VALIDATION - Computed, never stored
// =============================================================================

// Validation is the blocking/non-blocking verdict on the current draft.
// Errors block submission; warnings render but do not block.
type Validation struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the draft can be submitted for a hold.
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v *Validation) addError(msg string)   { v.Errors = append(v.Errors, msg) }
func (v *Validation) addWarning(msg string) { v.Warnings = append(v.Warnings, msg) }

// Validate recomputes the draft's validation verdict from the current
// context state, selection, capacities, and pricing.
func (c *Controller) Validate() Validation {
	c.mu.Lock()
	defer c.mu.Unlock()

	var v Validation

	if c.state.IsError() {
		v.addError("Room details could not be loaded. Retry to continue.")
		return v
	}
	bc, ok := c.state.Value()
	if !ok || bc == nil {
		v.addError("Room details are still loading.")
		return v
	}

	rooms := len(c.draft.SelectedRoomIDs)
	if rooms == 0 {
		v.addError("Select at least one room.")
	} else if available := len(bc.RoomType.AvailableRooms()); rooms > available {
		v.addError("More rooms selected than are available for these dates.")
	}

	if rooms > 0 {
		maxGuests := rooms * (bc.RoomType.Occupancy + bc.RoomType.ExtraBedCapacity)
		minGuests := rooms * bc.RoomType.MinOccupancy
		total := c.draft.TotalGuests()
		if total > maxGuests {
			v.addError("Guests exceed the capacity of the selected rooms.")
		} else if total < minGuests {
			v.addWarning("Guests are below the minimum occupancy for the selected rooms.")
		}
	}

	if len(bc.MealPlans) > 0 {
		if _, found := bc.Plan(c.draft.MealPlanID); !found {
			v.addError("Select a meal plan.")
		}
	}

	if _, err := c.quoteLocked(); err != nil {
		v.addError(err.Error())
	}

	if !bc.CanFulfilRequest {
		v.addError("The property cannot fulfil this request for the chosen dates.")
	}

	return v
}
