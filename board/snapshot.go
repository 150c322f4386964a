/*
Package board turns the raw availability snapshot into the renderable grid.

PURPOSE:
  The upstream property-management system reports availability per
  room-type, per room, per day as loosely-typed JSON. This package owns
  that wire shape (snapshot.go) and the normalized, fully-typed board
  model the rest of the system works with (board.go).

KEY CONCEPTS:
  - Snapshot: the raw server payload, never mutated after decode
  - Board:    the mapped grid, keyed by the day sequence of the range
  - Slot:     exactly one per (room, day), a tagged variant

DESIGN PRINCIPLES:
  1. One kind per slot: a day is Available, Booked, Blocked, under
     Maintenance, or OutOfService - never a string to compare
  2. Missing data degrades to Available, unknown statuses too; the board
     never refuses to render because the server added a status
  3. A slot carrying an availability record ID is releasable; one
     without is display-only

SEE ALSO:
  - pms: fetches and decodes the Snapshot
  - desk: owns refresh and hands the Board to the API layer
*/
package board

// Snapshot is the raw availability payload from the upstream system.
// Field shapes follow the wire format; the mapper in board.go is the only
// consumer. Decoded once, read-only afterwards.
type Snapshot struct {
	Property  SnapshotProperty   `json:"property"`
	Range     SnapshotRange      `json:"range"`
	Summary   []SnapshotSummary  `json:"summary"`
	RoomTypes []SnapshotRoomType `json:"roomTypes"`
}

type SnapshotProperty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SnapshotRange struct {
	Days []SnapshotDay `json:"days"`
}

type SnapshotDay struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Weekday string `json:"weekday"`
}

// SnapshotSummary is the per-day occupancy rollup across the property.
type SnapshotSummary struct {
	Date        string `json:"date"`
	Booked      int    `json:"booked"`
	Blocked     int    `json:"blocked"`
	Maintenance int    `json:"maintenance"`
	Available   int    `json:"available"`
	TotalRooms  int    `json:"totalRooms"`
}

type SnapshotRoomType struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Availability []SnapshotRoomTypeCount `json:"availability"`
	Rooms        []SnapshotRoom          `json:"rooms"`
}

type SnapshotRoomTypeCount struct {
	Date      string `json:"date"`
	Available int    `json:"available"`
}

type SnapshotRoom struct {
	ID    string         `json:"id"`
	Label string         `json:"label"`
	Slots []SnapshotSlot `json:"slots"`
}

// SnapshotSlot is one raw per-day cell. Status is a free-form string on the
// wire ("booked", "blocked", "hold", "maintenance", "out_of_service", ...).
// The remaining fields are populated depending on status.
type SnapshotSlot struct {
	Date           string `json:"date"`
	Status         string `json:"status"`
	GuestName      string `json:"guestName,omitempty"`
	ReferenceCode  string `json:"referenceCode,omitempty"`
	BookingID      string `json:"bookingId,omitempty"`
	OwnerLabel     string `json:"ownerLabel,omitempty"`
	Notes          string `json:"notes,omitempty"`
	AvailabilityID string `json:"availabilityId,omitempty"`
}
