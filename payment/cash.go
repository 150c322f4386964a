package payment

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/stayfront/frontdesk-engine/actor"
	"github.com/stayfront/frontdesk-engine/booking"
	"github.com/stayfront/frontdesk-engine/calendar"
	"github.com/stayfront/frontdesk-engine/hold"
	"github.com/stayfront/frontdesk-engine/lifecycle"
	"github.com/stayfront/frontdesk-engine/pms"
)

// DefaultCascadeDelay is how long a cash confirmation stays on screen before
// the board refreshes and the workflow closes.
const DefaultCascadeDelay = 2 * time.Second

// CashBooker is the network dependency of the cash workflow.
type CashBooker interface {
	CreateCashBooking(ctx context.Context, propertyID string, payload pms.CashBookingPayload) (*pms.CashBookingReceipt, error)
}

// CashForm is what the operator types at the desk. It survives failures
// untouched so nothing has to be re-entered on retry.
type CashForm struct {
	FullName      string
	Email         string
	Phone         string
	ReceivedBy    string
	PaymentDate   calendar.Date
	ReceiptNumber string // optional
}

// CashController owns the cash-payment workflow for one desk session.
type CashController struct {
	booker     CashBooker
	drafts     *booking.Controller
	holds      *hold.Controller
	propertyID string
	by         actor.Actor
	today      func() calendar.Date

	mu    sync.Mutex
	form  CashForm
	state lifecycle.State[pms.CashBookingReceipt]
	seq   uint64

	// cascade runs after delay once a payment is confirmed; the desk wires
	// it to refresh + hold reset + context close.
	cascade func()
	delay   time.Duration
}

// NewCashController wires the cash workflow to its hold gate.
func NewCashController(booker CashBooker, drafts *booking.Controller, holds *hold.Controller, propertyID string, by actor.Actor) *CashController {
	return &CashController{
		booker:     booker,
		drafts:     drafts,
		holds:      holds,
		propertyID: propertyID,
		by:         by,
		today:      calendar.Today,
		state:      lifecycle.Idle[pms.CashBookingReceipt](),
		cascade:    func() {},
		delay:      DefaultCascadeDelay,
	}
}

// OnConfirmed registers the post-confirmation cascade and its delay.
func (c *CashController) OnConfirmed(fn func(), delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fn != nil {
		c.cascade = fn
	}
	if delay >= 0 {
		c.delay = delay
	}
}

// SetClock overrides the not-in-future reference day. Test hook.
func (c *CashController) SetClock(today func() calendar.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = today
}

// State returns the cash-request lifecycle value.
func (c *CashController) State() lifecycle.State[pms.CashBookingReceipt] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Form returns the operator's current entries.
func (c *CashController) Form() CashForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// UpdateForm replaces the operator's entries. No validation happens here;
// the form is validated at submit so typing is never interrupted.
func (c *CashController) UpdateForm(form CashForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = form
}

// validateForm returns the first field problem, or nil.
func (c *CashController) validateForm(form CashForm, today calendar.Date) error {
	switch {
	case !validFullName(form.FullName):
		return errors.Join(ErrFormInvalid, errors.New("guest name must be at least 2 characters"))
	case !validEmail(form.Email):
		return errors.Join(ErrFormInvalid, errors.New("email is not a valid address"))
	case !validPhone(form.Phone):
		return errors.Join(ErrFormInvalid, errors.New("phone must be exactly 10 digits"))
	case strings.TrimSpace(form.ReceivedBy) == "":
		return errors.Join(ErrFormInvalid, errors.New("received by is required"))
	case form.PaymentDate.IsZero():
		return errors.Join(ErrFormInvalid, errors.New("payment date is required"))
	case form.PaymentDate.After(today):
		return errors.Join(ErrFormInvalid, errors.New("payment date cannot be in the future"))
	}
	return nil
}

// Submit finalizes the held booking as paid in cash. On confirmation the
// cascade is scheduled after the configured delay.
func (c *CashController) Submit(ctx context.Context) error {
	receipt, ok := c.holds.Receipt()
	if !ok {
		return ErrNoHold
	}
	quote, err := c.drafts.Quote()
	if err != nil || quote == nil || !quote.Total.IsPositive() {
		return ErrNoPrice
	}
	bc, ok := c.drafts.State().Value()
	if !ok {
		return ErrNoPrice
	}
	draft := c.drafts.Draft()

	c.mu.Lock()
	if c.state.IsLoading() {
		c.mu.Unlock()
		return ErrInFlight
	}
	form := c.form
	if err := c.validateForm(form, c.today()); err != nil {
		c.mu.Unlock()
		return err
	}
	c.seq++
	seq := c.seq
	c.state = lifecycle.Loading[pms.CashBookingReceipt]()
	cascade, delay := c.cascade, c.delay
	c.mu.Unlock()

	holdIDs := make([]string, 0, len(receipt.Records))
	for _, r := range receipt.Records {
		holdIDs = append(holdIDs, r.ID)
	}

	bookingReceipt, err := c.booker.CreateCashBooking(ctx, c.propertyID, pms.CashBookingPayload{
		Booking: pms.BookingFields{
			PropertyRoomTypeID: bc.RoomType.PropertyRoomTypeID,
			RoomIDs:            draft.SelectedRoomIDs,
			From:               draft.From.String(),
			To:                 draft.To.String(),
			Adults:             draft.Adults,
			Children:           draft.Children,
			Infants:            draft.Infants,
			MealPlanID:         draft.MealPlanID,
			Notes:              draft.Notes,
		},
		Pricing:       pms.PricingFieldsFromSummary(quote),
		HoldRecordIDs: holdIDs,
		Guest: pms.CashGuest{
			FullName: strings.TrimSpace(form.FullName),
			Email:    form.Email,
			Phone:    form.Phone,
		},
		Payment: pms.CashPayment{
			Amount:        quote.Total,
			ReceivedBy:    strings.TrimSpace(form.ReceivedBy),
			Date:          form.PaymentDate.String(),
			ReceiptNumber: form.ReceiptNumber,
		},
		CreatedBy: pms.Creator{
			Role:  string(c.by.Role),
			ID:    c.by.ID,
			Label: c.by.Label,
		},
	})

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.state = lifecycle.Failed[pms.CashBookingReceipt](err.Error())
		c.mu.Unlock()
		return err
	}
	c.state = lifecycle.Succeeded(*bookingReceipt)
	c.mu.Unlock()

	// Leave the confirmation visible, then hand control back to the desk.
	time.AfterFunc(delay, cascade)
	return nil
}

// Reset drops the request state back to Idle. The form survives.
func (c *CashController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.state = lifecycle.Idle[pms.CashBookingReceipt]()
}

// ClearForm wipes the operator's entries. Part of the post-confirmation
// cascade, never of an error path.
func (c *CashController) ClearForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = CashForm{}
}
