package payment

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/stayfront/frontdesk-engine/actor"
	"github.com/stayfront/frontdesk-engine/booking"
	"github.com/stayfront/frontdesk-engine/hold"
	"github.com/stayfront/frontdesk-engine/lifecycle"
	"github.com/stayfront/frontdesk-engine/pms"
)

var (
	// ErrNoHold means no successful hold backs the payment attempt.
	ErrNoHold = errors.New("payment: no active hold")

	// ErrNoRecipient means recipient details were not saved yet.
	ErrNoRecipient = errors.New("payment: recipient details not saved")

	// ErrNoPrice means the draft has no positive-total quote.
	ErrNoPrice = errors.New("payment: booking has no positive price")

	// ErrRecipientInvalid carries a field-level recipient problem.
	ErrRecipientInvalid = errors.New("payment: recipient details invalid")

	// ErrFormInvalid carries a field-level cash form problem.
	ErrFormInvalid = errors.New("payment: cash form invalid")

	// ErrInFlight means a request of this kind is already running.
	ErrInFlight = errors.New("payment: request already in flight")
)

// LinkCreator is the network dependency of the link workflow.
type LinkCreator interface {
	CreatePaymentLink(ctx context.Context, propertyID string, payload pms.PaymentLinkPayload) (*pms.PaymentLinkReceipt, error)
}

// LinkController owns the payment-link workflow: the saved recipient and the
// link-creation request state, which are deliberately independent - resending
// a link never requires re-entering the recipient.
type LinkController struct {
	creator    LinkCreator
	drafts     *booking.Controller
	holds      *hold.Controller
	propertyID string
	by         actor.Actor

	mu        sync.Mutex
	recipient *pms.Recipient
	state     lifecycle.State[pms.PaymentLinkReceipt]
	seq       uint64
}

// NewLinkController wires the link workflow to its hold gate.
func NewLinkController(creator LinkCreator, drafts *booking.Controller, holds *hold.Controller, propertyID string, by actor.Actor) *LinkController {
	return &LinkController{
		creator:    creator,
		drafts:     drafts,
		holds:      holds,
		propertyID: propertyID,
		by:         by,
		state:      lifecycle.Idle[pms.PaymentLinkReceipt](),
	}
}

// State returns the link-request lifecycle value.
func (c *LinkController) State() lifecycle.State[pms.PaymentLinkReceipt] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Recipient returns the saved recipient, if any.
func (c *LinkController) Recipient() (pms.Recipient, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.recipient == nil {
		return pms.Recipient{}, false
	}
	return *c.recipient, true
}

// SaveRecipient validates and stores who the link goes to. Full name and a
// 10-digit phone are mandatory; email is optional but must parse when given.
func (c *LinkController) SaveRecipient(fullName, email, phone string) error {
	switch {
	case !validFullName(fullName):
		return errors.Join(ErrRecipientInvalid, errors.New("full name must be at least 2 characters"))
	case !validPhone(phone):
		return errors.Join(ErrRecipientInvalid, errors.New("phone must be exactly 10 digits"))
	case email != "" && !validEmail(email):
		return errors.Join(ErrRecipientInvalid, errors.New("email is not a valid address"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.recipient = &pms.Recipient{FullName: strings.TrimSpace(fullName), Email: email, Phone: phone}
	return nil
}

// Create asks the PMS to issue a payment link for the held booking. Calling
// it again resends: the same payload is rebuilt and submitted afresh.
func (c *LinkController) Create(ctx context.Context) error {
	receipt, ok := c.holds.Receipt()
	if !ok {
		return ErrNoHold
	}
	quote, err := c.drafts.Quote()
	if err != nil || quote == nil || !quote.Total.IsPositive() {
		return ErrNoPrice
	}
	bc, ok := c.drafts.State().Value()
	if !ok || bc.RoomType.PropertyRoomTypeID == "" {
		return ErrNoPrice
	}
	draft := c.drafts.Draft()

	c.mu.Lock()
	if c.recipient == nil {
		c.mu.Unlock()
		return ErrNoRecipient
	}
	if c.state.IsLoading() {
		c.mu.Unlock()
		return ErrInFlight
	}
	recipient := *c.recipient
	c.seq++
	seq := c.seq
	c.state = lifecycle.Loading[pms.PaymentLinkReceipt]()
	c.mu.Unlock()

	holdIDs := make([]string, 0, len(receipt.Records))
	for _, r := range receipt.Records {
		holdIDs = append(holdIDs, r.ID)
	}

	linkReceipt, err := c.creator.CreatePaymentLink(ctx, c.propertyID, pms.PaymentLinkPayload{
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
		Recipient:     recipient,
		CreatedBy: pms.Creator{
			Role:  string(c.by.Role),
			ID:    c.by.ID,
			Label: c.by.Label,
		},
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return nil
	}
	if err != nil {
		c.state = lifecycle.Failed[pms.PaymentLinkReceipt](err.Error())
		return err
	}
	c.state = lifecycle.Succeeded(*linkReceipt)
	return nil
}

// Reset drops the link-request state back to Idle. The saved recipient
// survives - it is user-entered data, not request state.
func (c *LinkController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.state = lifecycle.Idle[pms.PaymentLinkReceipt]()
}
