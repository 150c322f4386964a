package board

import (
	"strings"

	"github.com/stayfront/frontdesk-engine/calendar"
)

// =============================================================================
// BOARD MODEL - Normalized grid
// =============================================================================

// SlotKind is the closed set of states a (room, day) cell can be in.
type SlotKind int

const (
	SlotAvailable SlotKind = iota
	SlotBooked
	SlotBlocked
	SlotMaintenance
	SlotOutOfService
)

func (k SlotKind) String() string {
	switch k {
	case SlotBooked:
		return "booked"
	case SlotBlocked:
		return "blocked"
	case SlotMaintenance:
		return "maintenance"
	case SlotOutOfService:
		return "out_of_service"
	default:
		return "available"
	}
}

// BookedInfo is the payload of a Booked slot.
type BookedInfo struct {
	GuestName     string
	ReferenceCode string
	BookingID     string // optional
}

// StatusInfo is the payload of a Blocked, Maintenance or OutOfService slot.
type StatusInfo struct {
	OwnerLabel string
	Notes      string
	// AvailabilityID references the record that created the status.
	// Empty means the slot cannot be released from the board.
	AvailabilityID string
}

// Slot is one cell of the grid: exactly one kind, with the payload of that
// kind populated and the other nil.
type Slot struct {
	Date   calendar.Date
	Kind   SlotKind
	Booked *BookedInfo // set only when Kind == SlotBooked
	Status *StatusInfo // set only for Blocked/Maintenance/OutOfService
}

// Releasable reports whether the slot's status record can be released.
func (s Slot) Releasable() bool {
	return s.Status != nil && s.Status.AvailabilityID != ""
}

// Room is one row of a room-type group.
type Room struct {
	ID    string
	Label string
	Slots []Slot // aligned to Board.Days
}

// RoomTypeRow groups the rooms of one room type plus its per-day headline
// availability count.
type RoomTypeRow struct {
	ID              string
	Name            string
	AvailablePerDay []int // aligned to Board.Days
	Rooms           []Room
}

// DaySummary is the property-wide rollup for one displayed day.
type DaySummary struct {
	Date        calendar.Date
	Booked      int
	Blocked     int
	Maintenance int
	Available   int
	TotalRooms  int
}

// Board is the fully-mapped grid for one property and one displayed range.
type Board struct {
	PropertyID   string
	PropertyName string
	Days         []calendar.Date
	Summary      []DaySummary
	RoomTypes    []RoomTypeRow
}

// =============================================================================
// MAPPER - Snapshot -> Board
// =============================================================================

// kindOf maps a raw status string to a slot kind. Unknown strings render as
// available rather than failing the whole board.
func kindOf(status string) SlotKind {
	switch strings.ToLower(status) {
	case "booked":
		return SlotBooked
	case "maintenance":
		return SlotMaintenance
	case "out_of_service":
		return SlotOutOfService
	case "blocked", "hold":
		return SlotBlocked
	default:
		return SlotAvailable
	}
}

// FromSnapshot builds the board model from a raw snapshot. Returns nil for a
// nil snapshot (caller renders the empty state). The snapshot is not mutated.
//
// Day columns come from range.days; a room missing a slot for a displayed day
// gets an Available cell, so every row is always exactly len(Days) wide.
func FromSnapshot(snap *Snapshot) *Board {
	if snap == nil {
		return nil
	}

	days := make([]calendar.Date, 0, len(snap.Range.Days))
	for _, d := range snap.Range.Days {
		date, err := calendar.ParseDate(d.Date)
		if err != nil {
			continue // malformed day column is dropped, not fatal
		}
		days = append(days, date)
	}

	b := &Board{
		PropertyID:   snap.Property.ID,
		PropertyName: snap.Property.Name,
		Days:         days,
	}

	summaryByDate := make(map[string]SnapshotSummary, len(snap.Summary))
	for _, s := range snap.Summary {
		summaryByDate[s.Date] = s
	}
	b.Summary = make([]DaySummary, len(days))
	for i, day := range days {
		s := summaryByDate[day.String()]
		b.Summary[i] = DaySummary{
			Date:        day,
			Booked:      s.Booked,
			Blocked:     s.Blocked,
			Maintenance: s.Maintenance,
			Available:   s.Available,
			TotalRooms:  s.TotalRooms,
		}
	}

	b.RoomTypes = make([]RoomTypeRow, 0, len(snap.RoomTypes))
	for _, rt := range snap.RoomTypes {
		row := RoomTypeRow{ID: rt.ID, Name: rt.Name}

		countByDate := make(map[string]int, len(rt.Availability))
		for _, a := range rt.Availability {
			countByDate[a.Date] = a.Available
		}
		row.AvailablePerDay = make([]int, len(days))
		for i, day := range days {
			row.AvailablePerDay[i] = countByDate[day.String()]
		}

		row.Rooms = make([]Room, 0, len(rt.Rooms))
		for _, rm := range rt.Rooms {
			slotByDate := make(map[string]SnapshotSlot, len(rm.Slots))
			for _, sl := range rm.Slots {
				slotByDate[sl.Date] = sl
			}

			room := Room{ID: rm.ID, Label: rm.Label, Slots: make([]Slot, len(days))}
			for i, day := range days {
				raw, ok := slotByDate[day.String()]
				if !ok {
					room.Slots[i] = Slot{Date: day, Kind: SlotAvailable}
					continue
				}
				room.Slots[i] = mapSlot(day, raw)
			}
			row.Rooms = append(row.Rooms, room)
		}
		b.RoomTypes = append(b.RoomTypes, row)
	}

	return b
}

func mapSlot(day calendar.Date, raw SnapshotSlot) Slot {
	slot := Slot{Date: day, Kind: kindOf(raw.Status)}
	switch slot.Kind {
	case SlotBooked:
		slot.Booked = &BookedInfo{
			GuestName:     raw.GuestName,
			ReferenceCode: raw.ReferenceCode,
			BookingID:     raw.BookingID,
		}
	case SlotBlocked, SlotMaintenance, SlotOutOfService:
		slot.Status = &StatusInfo{
			OwnerLabel:     raw.OwnerLabel,
			Notes:          raw.Notes,
			AvailabilityID: raw.AvailabilityID,
		}
	}
	return slot
}
