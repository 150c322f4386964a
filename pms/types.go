/*
Package pms is the HTTP client for the upstream property-management system.

PURPOSE:
  Every network operation the desk performs goes through this client:
  availability snapshots, booking contexts, holds, room-status create
  and release, payment links, and cash bookings. Controllers depend on
  narrow interfaces they declare themselves; this client satisfies all
  of them.

WIRE CONVENTIONS:
  - Dates travel as YYYY-MM-DD, timestamps as RFC 3339
  - Currency amounts are plain decimal units on every endpoint EXCEPT
    the payment-link response, which reports amount in minor units
    (paise). That asymmetry is normalized HERE, once: the receipt the
    rest of the system sees is already divided by 100. Nothing
    downstream may ever convert units again.
  - Server errors carry {"error": "..."} or {"message": "..."}; the
    message is surfaced verbatim, with a generic fallback

SEE ALSO:
  - pms/pmstest: in-memory fake for controller tests
*/
package pms

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stayfront/frontdesk-engine/booking"
	"github.com/stayfront/frontdesk-engine/calendar"
	"github.com/stayfront/frontdesk-engine/pricing"
)

// =============================================================================
// HOLD
// =============================================================================

// HoldRequest asks the PMS to take rooms off the market until HoldUntil.
type HoldRequest struct {
	PropertyRoomTypeID string   `json:"propertyRoomTypeId"`
	RoomIDs            []string `json:"roomIds"`
	From               string   `json:"from"` // YYYY-MM-DD
	To                 string   `json:"to"`
	HoldUntil          string   `json:"holdUntil"` // RFC 3339
	BlockedBy          string   `json:"blockedBy"`
	Reason             string   `json:"reason,omitempty"`
}

// HoldRecord is one per-room hold row created server-side.
type HoldRecord struct {
	ID string `json:"id"`
}

// HoldReceipt is the server's confirmation of a placed hold.
type HoldReceipt struct {
	Records   []HoldRecord `json:"records"`
	HoldUntil time.Time    `json:"holdUntil"`
	RoomIDs   []string     `json:"-"` // echo of the request, kept for display
}

// =============================================================================
// ROOM STATUS
// =============================================================================

// StatusKind selects which of the three operational-status workflows a
// request addresses. Each kind is a distinct PMS operation.
type StatusKind string

const (
	StatusBlocked      StatusKind = "blocked"
	StatusMaintenance  StatusKind = "maintenance"
	StatusOutOfService StatusKind = "out_of_service"
)

// RoomStatusRequest creates one room-status record for one room and day.
type RoomStatusRequest struct {
	PropertyRoomTypeID string `json:"propertyRoomTypeId"`
	RoomID             string `json:"roomId"`
	Date               string `json:"date"` // YYYY-MM-DD
	ReleaseAfterHours  int    `json:"releaseAfterHours,omitempty"`
	Reason             string `json:"reason,omitempty"`
	BlockedBy          string `json:"blockedBy,omitempty"`
}

// =============================================================================
// PAYMENT LINK
// =============================================================================

// Recipient is who the payment link is sent to.
type Recipient struct {
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone"` // exactly 10 digits
}

// Creator identifies the desk actor finalizing the booking.
type Creator struct {
	Role  string `json:"role"` // "admin" or "host"
	ID    string `json:"id"`
	Label string `json:"label"`
}

// RoomCharge is one room's line of the pricing breakdown as submitted.
type RoomCharge struct {
	RoomIndex     int             `json:"roomIndex"`
	BasePerNight  decimal.Decimal `json:"basePerNight"`
	ExtraAdults   int             `json:"extraAdults"`
	ExtraChildren int             `json:"extraChildren"`
	ExtraInfants  int             `json:"extraInfants"`
	Total         decimal.Decimal `json:"total"`
	Tax           decimal.Decimal `json:"tax"`
	TotalWithTax  decimal.Decimal `json:"totalWithTax"`
}

// BookingFields is the draft portion shared by both finalize payloads.
type BookingFields struct {
	PropertyRoomTypeID string   `json:"propertyRoomTypeId"`
	RoomIDs            []string `json:"roomIds"`
	From               string   `json:"from"`
	To                 string   `json:"to"`
	Adults             int      `json:"adults"`
	Children           int      `json:"children"`
	Infants            int      `json:"infants"`
	MealPlanID         string   `json:"mealPlanId"`
	Notes              string   `json:"notes,omitempty"`
}

// PricingFields is the quoted price portion shared by both finalize payloads.
type PricingFields struct {
	Nights         int             `json:"nights"`
	TotalBasePrice decimal.Decimal `json:"totalBasePrice"`
	TotalTax       decimal.Decimal `json:"totalTax"`
	Total          decimal.Decimal `json:"total"`
	PerRoom        []RoomCharge    `json:"perRoom"`
}

// PaymentLinkPayload finalizes a held booking by sending a payment link.
type PaymentLinkPayload struct {
	Booking       BookingFields `json:"booking"`
	Pricing       PricingFields `json:"pricing"`
	HoldRecordIDs []string      `json:"holdRecordIds"`
	Recipient     Recipient     `json:"recipient"`
	CreatedBy     Creator       `json:"createdBy"`
}

// PaymentLinkReceipt is the normalized create-link response. Amount is in
// plain currency units - the paise division already happened.
type PaymentLinkReceipt struct {
	URL       string
	ExpiresAt time.Time
	OrderID   string
	Amount    decimal.Decimal
}

// =============================================================================
// CASH BOOKING
// =============================================================================

// CashPayment is the money-received portion of a cash finalization.
type CashPayment struct {
	Amount        decimal.Decimal `json:"amount"`
	ReceivedBy    string          `json:"receivedBy"`
	Date          string          `json:"date"` // YYYY-MM-DD
	ReceiptNumber string          `json:"receiptNumber,omitempty"`
}

// CashGuest is the guest identity collected at the desk.
type CashGuest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// CashBookingPayload finalizes a held booking paid in cash.
type CashBookingPayload struct {
	Booking       BookingFields `json:"booking"`
	Pricing       PricingFields `json:"pricing"`
	HoldRecordIDs []string      `json:"holdRecordIds"`
	Guest         CashGuest     `json:"guest"`
	Payment       CashPayment   `json:"payment"`
	CreatedBy     Creator       `json:"createdBy"`
}

// CashBookingReceipt confirms a finalized cash booking.
type CashBookingReceipt struct {
	BookingNumber string
	TransactionID string
	Amount        decimal.Decimal
}

// =============================================================================
// WIRE SHAPES - booking context
// =============================================================================

type wireBookingContext struct {
	Stay struct {
		From         string `json:"from"`
		To           string `json:"to"`
		Nights       int    `json:"nights"`
		CheckInTime  string `json:"checkInTime"`
		CheckOutTime string `json:"checkOutTime"`
	} `json:"stay"`
	RoomType struct {
		ID                 string `json:"id"`
		PropertyRoomTypeID string `json:"propertyRoomTypeId"`
		MinOccupancy       int    `json:"minOccupancy"`
		Occupancy          int    `json:"occupancy"`
		ExtraBedCapacity   int    `json:"extraBedCapacity"`
		Rooms              []struct {
			ID               string `json:"id"`
			Label            string `json:"label"`
			AvailableForStay bool   `json:"isAvailableForStay"`
		} `json:"rooms"`
	} `json:"roomType"`
	MealPlans []struct {
		ID       string `json:"id"`
		MealPlan struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"mealPlan"`
		RatePlan struct {
			Name string `json:"name"`
		} `json:"ratePlan"`
		Pricing struct {
			SingleOccupancy decimal.Decimal `json:"singleOccupancy"`
			DoubleOccupancy decimal.Decimal `json:"doubleOccupancy"`
			GroupOccupancy  decimal.Decimal `json:"groupOccupancy"`
			ExtraBedAdult   decimal.Decimal `json:"extraBedAdult"`
			ExtraBedChild   decimal.Decimal `json:"extraBedChild"`
			ExtraBedInfant  decimal.Decimal `json:"extraBedInfant"`
		} `json:"pricing"`
	} `json:"mealPlans"`
	AvailabilitySummary struct {
		CanFulfilRequest bool `json:"canFulfilRequest"`
	} `json:"availabilitySummary"`
}

func (w *wireBookingContext) toContext() (*booking.Context, error) {
	from, err := calendar.ParseDate(w.Stay.From)
	if err != nil {
		return nil, err
	}
	to, err := calendar.ParseDate(w.Stay.To)
	if err != nil {
		return nil, err
	}

	bc := &booking.Context{
		Stay: booking.Stay{
			From:         from,
			To:           to,
			Nights:       w.Stay.Nights,
			CheckInTime:  w.Stay.CheckInTime,
			CheckOutTime: w.Stay.CheckOutTime,
		},
		RoomType: booking.RoomType{
			ID:                 w.RoomType.ID,
			PropertyRoomTypeID: w.RoomType.PropertyRoomTypeID,
			MinOccupancy:       w.RoomType.MinOccupancy,
			Occupancy:          w.RoomType.Occupancy,
			ExtraBedCapacity:   w.RoomType.ExtraBedCapacity,
		},
		CanFulfilRequest: w.AvailabilitySummary.CanFulfilRequest,
	}
	for _, r := range w.RoomType.Rooms {
		bc.RoomType.Rooms = append(bc.RoomType.Rooms, booking.ContextRoom{
			ID: r.ID, Label: r.Label, AvailableForStay: r.AvailableForStay,
		})
	}
	for _, mp := range w.MealPlans {
		bc.MealPlans = append(bc.MealPlans, booking.PlanOption{
			ID:           mp.ID,
			MealPlanID:   mp.MealPlan.ID,
			MealPlanName: mp.MealPlan.Name,
			MealPlanKind: mp.MealPlan.Kind,
			RatePlanName: mp.RatePlan.Name,
			Rates: booking.PlanRates{
				SingleOccupancy: mp.Pricing.SingleOccupancy,
				DoubleOccupancy: mp.Pricing.DoubleOccupancy,
				GroupOccupancy:  mp.Pricing.GroupOccupancy,
				ExtraBedAdult:   mp.Pricing.ExtraBedAdult,
				ExtraBedChild:   mp.Pricing.ExtraBedChild,
				ExtraBedInfant:  mp.Pricing.ExtraBedInfant,
			},
		})
	}
	return bc, nil
}

// PricingFieldsFromSummary flattens an engine quote into the submit shape.
func PricingFieldsFromSummary(s *pricing.Summary) PricingFields {
	pf := PricingFields{
		Nights:         s.Nights,
		TotalBasePrice: s.TotalBasePrice,
		TotalTax:       s.TotalTax,
		Total:          s.Total,
	}
	for _, rb := range s.PerRoom {
		pf.PerRoom = append(pf.PerRoom, RoomCharge{
			RoomIndex:     rb.RoomIndex,
			BasePerNight:  rb.BasePerNight,
			ExtraAdults:   rb.Extras.Adults,
			ExtraChildren: rb.Extras.Children,
			ExtraInfants:  rb.Extras.Infants,
			Total:         rb.Total,
			Tax:           rb.Tax,
			TotalWithTax:  rb.TotalWithTax,
		})
	}
	return pf
}
