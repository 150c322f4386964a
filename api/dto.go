/*
dto.go - Wire shapes of the desk API

PURPOSE:
  Request and response bodies, decoupled from the engine types so the
  engine never grows json tags for one particular frontend. Money is
  serialized as decimal strings, dates as "2006-01-02".
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stayfront/frontdesk-engine/activity"
	"github.com/stayfront/frontdesk-engine/board"
	"github.com/stayfront/frontdesk-engine/booking"
	"github.com/stayfront/frontdesk-engine/calendar"
	"github.com/stayfront/frontdesk-engine/desk"
	"github.com/stayfront/frontdesk-engine/pms"
	"github.com/stayfront/frontdesk-engine/pricing"
)

// ===== REQUESTS =====

type actorDTO struct {
	Role  string `json:"role"`
	ID    string `json:"id"`
	Label string `json:"label"`
}

type openDeskRequest struct {
	PropertyID string   `json:"propertyId"`
	WeekStart  string   `json:"weekStart"` // any date in the week; snapped to Monday
	Actor      actorDTO `json:"actor"`
}

// contextRequest opens or closes the active workflow.
// Action: new-booking | details | room-status | close
type contextRequest struct {
	Action     string `json:"action"`
	RoomTypeID string `json:"roomTypeId,omitempty"`
	RoomID     string `json:"roomId,omitempty"`
	Date       string `json:"date,omitempty"`
}

// draftRequest patches the booking draft. Absent fields are untouched.
type draftRequest struct {
	ClickDate      *string    `json:"clickDate,omitempty"`
	ApplyDates     bool       `json:"applyDates,omitempty"`
	Guests         *guestsDTO `json:"guests,omitempty"`
	MealPlanID     *string    `json:"mealPlanId,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	ToggleRoomID   *string    `json:"toggleRoomId,omitempty"`
	RequestedRooms *int       `json:"requestedRooms,omitempty"`
}

type guestsDTO struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

type recipientRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type cashRequest struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	ReceivedBy    string `json:"receivedBy"`
	PaymentDate   string `json:"paymentDate"`
	ReceiptNumber string `json:"receiptNumber,omitempty"`
}

type statusRequest struct {
	Kind              string `json:"kind"` // blocked | maintenance | out_of_service
	RoomTypeID        string `json:"roomTypeId"`
	RoomID            string `json:"roomId"`
	Date              string `json:"date"`
	ReleaseAfterHours int    `json:"releaseAfterHours,omitempty"`
	Reason            string `json:"reason,omitempty"`
}

// ===== RESPONSES =====

type errorResponse struct {
	Error string `json:"error"`
}

type weekDTO struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type deskResponse struct {
	ID         string  `json:"id"`
	PropertyID string  `json:"propertyId"`
	Week       weekDTO `json:"week"`
}

type stateDTO struct {
	Phase   string `json:"phase"` // idle | loading | success | error
	Message string `json:"message,omitempty"`
}

type boardResponse struct {
	State         stateDTO  `json:"state"`
	Week          weekDTO   `json:"week"`
	ActiveContext string    `json:"activeContext"`
	Board         *boardDTO `json:"board,omitempty"`
}

type boardDTO struct {
	PropertyID   string           `json:"propertyId"`
	PropertyName string           `json:"propertyName"`
	Days         []string         `json:"days"`
	Summary      []daySummaryDTO  `json:"summary"`
	RoomTypes    []roomTypeRowDTO `json:"roomTypes"`
}

type daySummaryDTO struct {
	Date        string `json:"date"`
	Booked      int    `json:"booked"`
	Blocked     int    `json:"blocked"`
	Maintenance int    `json:"maintenance"`
	Available   int    `json:"available"`
	TotalRooms  int    `json:"totalRooms"`
}

type roomTypeRowDTO struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	AvailablePerDay []int     `json:"availablePerDay"`
	Rooms           []roomDTO `json:"rooms"`
}

type roomDTO struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Slots []slotDTO `json:"slots"`
}

type slotDTO struct {
	Date       string `json:"date"`
	Kind       string `json:"kind"`
	Releasable bool   `json:"releasable"`

	GuestName     string `json:"guestName,omitempty"`
	ReferenceCode string `json:"referenceCode,omitempty"`
	BookingID     string `json:"bookingId,omitempty"`

	OwnerLabel     string `json:"ownerLabel,omitempty"`
	Notes          string `json:"notes,omitempty"`
	AvailabilityID string `json:"availabilityId,omitempty"`
}

type draftResponse struct {
	State           stateDTO      `json:"state"`
	From            string        `json:"from"`
	To              string        `json:"to"`
	Guests          guestsDTO     `json:"guests"`
	MealPlanID      string        `json:"mealPlanId"`
	SelectedRoomIDs []string      `json:"selectedRoomIds"`
	Notes           string        `json:"notes,omitempty"`
	Quote           quoteResponse `json:"quote"`
}

type quoteResponse struct {
	Valid    bool        `json:"valid"`
	Errors   []string    `json:"errors"`
	Warnings []string    `json:"warnings"`
	Summary  *summaryDTO `json:"summary,omitempty"`
}

type summaryDTO struct {
	Nights         int             `json:"nights"`
	TotalBasePrice decimal.Decimal `json:"totalBasePrice"`
	TotalTax       decimal.Decimal `json:"totalTax"`
	Total          decimal.Decimal `json:"total"`
	PerRoom        []roomChargeDTO `json:"perRoom"`
	Extras         guestsDTO       `json:"extras"`
}

type roomChargeDTO struct {
	RoomIndex    int             `json:"roomIndex"`
	BasePerNight decimal.Decimal `json:"basePerNight"`
	Extras       guestsDTO       `json:"extras"`
	Total        decimal.Decimal `json:"total"`
	Tax          decimal.Decimal `json:"tax"`
	TotalWithTax decimal.Decimal `json:"totalWithTax"`
}

type holdResponse struct {
	RecordIDs []string `json:"recordIds"`
	HoldUntil string   `json:"holdUntil"`
}

type linkResponse struct {
	URL       string          `json:"url"`
	OrderID   string          `json:"orderId"`
	Amount    decimal.Decimal `json:"amount"`
	ExpiresAt string          `json:"expiresAt,omitempty"`
}

type cashResponse struct {
	BookingNumber string          `json:"bookingNumber"`
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
}

type statusResponse struct {
	Message string `json:"message"`
}

type activityRecordDTO struct {
	ID         string            `json:"id"`
	PropertyID string            `json:"propertyId"`
	Actor      actorDTO          `json:"actor"`
	Kind       string            `json:"kind"`
	Reference  string            `json:"reference,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
	CreatedAt  string            `json:"createdAt"`
}

// ===== MAPPERS =====

func toWeekDTO(r calendar.Range) weekDTO {
	return weekDTO{From: r.From.String(), To: r.To.String()}
}

func toBoardDTO(b *board.Board) *boardDTO {
	if b == nil {
		return nil
	}
	out := &boardDTO{
		PropertyID:   b.PropertyID,
		PropertyName: b.PropertyName,
		Days:         make([]string, len(b.Days)),
	}
	for i, d := range b.Days {
		out.Days[i] = d.String()
	}
	for _, s := range b.Summary {
		out.Summary = append(out.Summary, daySummaryDTO{
			Date:        s.Date.String(),
			Booked:      s.Booked,
			Blocked:     s.Blocked,
			Maintenance: s.Maintenance,
			Available:   s.Available,
			TotalRooms:  s.TotalRooms,
		})
	}
	for _, rt := range b.RoomTypes {
		row := roomTypeRowDTO{ID: rt.ID, Name: rt.Name, AvailablePerDay: rt.AvailablePerDay}
		for _, rm := range rt.Rooms {
			room := roomDTO{ID: rm.ID, Label: rm.Label}
			for _, sl := range rm.Slots {
				room.Slots = append(room.Slots, toSlotDTO(sl))
			}
			row.Rooms = append(row.Rooms, room)
		}
		out.RoomTypes = append(out.RoomTypes, row)
	}
	return out
}

func toSlotDTO(s board.Slot) slotDTO {
	dto := slotDTO{Date: s.Date.String(), Kind: s.Kind.String(), Releasable: s.Releasable()}
	if s.Booked != nil {
		dto.GuestName = s.Booked.GuestName
		dto.ReferenceCode = s.Booked.ReferenceCode
		dto.BookingID = s.Booked.BookingID
	}
	if s.Status != nil {
		dto.OwnerLabel = s.Status.OwnerLabel
		dto.Notes = s.Status.Notes
		dto.AvailabilityID = s.Status.AvailabilityID
	}
	return dto
}

func toQuoteResponse(v booking.Validation, s *pricing.Summary) quoteResponse {
	resp := quoteResponse{
		Valid:    v.OK(),
		Errors:   v.Errors,
		Warnings: v.Warnings,
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	if s != nil {
		resp.Summary = toSummaryDTO(s)
	}
	return resp
}

func toSummaryDTO(s *pricing.Summary) *summaryDTO {
	out := &summaryDTO{
		Nights:         s.Nights,
		TotalBasePrice: s.TotalBasePrice,
		TotalTax:       s.TotalTax,
		Total:          s.Total,
		Extras:         guestsDTO{Adults: s.Extras.Adults, Children: s.Extras.Children, Infants: s.Extras.Infants},
	}
	for _, rb := range s.PerRoom {
		out.PerRoom = append(out.PerRoom, roomChargeDTO{
			RoomIndex:    rb.RoomIndex,
			BasePerNight: rb.BasePerNight,
			Extras:       guestsDTO{Adults: rb.Extras.Adults, Children: rb.Extras.Children, Infants: rb.Extras.Infants},
			Total:        rb.Total,
			Tax:          rb.Tax,
			TotalWithTax: rb.TotalWithTax,
		})
	}
	return out
}

func toHoldResponse(r pms.HoldReceipt) holdResponse {
	resp := holdResponse{HoldUntil: r.HoldUntil.UTC().Format(time.RFC3339)}
	for _, rec := range r.Records {
		resp.RecordIDs = append(resp.RecordIDs, rec.ID)
	}
	return resp
}

func toActivityDTO(rec activity.Record) activityRecordDTO {
	return activityRecordDTO{
		ID:         rec.ID,
		PropertyID: rec.PropertyID,
		Actor:      actorDTO{Role: string(rec.Actor.Role), ID: rec.Actor.ID, Label: rec.Actor.Label},
		Kind:       string(rec.Kind),
		Reference:  rec.Reference,
		Details:    rec.Details,
		CreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// lifecycleState is the phase surface shared by every lifecycle.State[T].
type lifecycleState interface {
	IsIdle() bool
	IsLoading() bool
	IsSuccess() bool
	Message() string
}

func toStateDTO(s lifecycleState) stateDTO {
	switch {
	case s.IsLoading():
		return stateDTO{Phase: "loading"}
	case s.IsSuccess():
		return stateDTO{Phase: "success"}
	case s.IsIdle():
		return stateDTO{Phase: "idle"}
	default:
		return stateDTO{Phase: "error", Message: s.Message()}
	}
}

func contextKindName(k desk.ContextKind) string {
	switch k {
	case desk.ContextNewBooking:
		return "new-booking"
	case desk.ContextBookingDetails:
		return "details"
	case desk.ContextRoomStatus:
		return "room-status"
	default:
		return "none"
	}
}
