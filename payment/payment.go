/*
Package payment finalizes a held booking, by payment link or by cash.

PURPOSE:
  Once a hold succeeds the desk collects money one of two ways:

  - Payment link: save recipient details (name, 10-digit phone,
    optional email), then ask the PMS to issue a link. Resending simply
    repeats the create call; the saved recipient is reused.
  - Cash: collect guest identity and payment metadata, validate, and
    finalize the booking in one call.

  Both workflows are gated on a successful hold and both reset together
  whenever the hold resets. A failure never wipes what the operator
  typed - forms survive so the action can be retried.

TIMED CASCADE:
  A confirmed cash payment (and a confirmed room-status change, see the
  roomstatus package) schedules a follow-up after a short fixed delay,
  long enough for the confirmation to be seen: refresh the board, reset
  the hold, clear the form, close the active context. The delay is
  injectable so tests run instantly.
*/
package payment

import (
	"net/mail"
	"strings"
)

// validFullName requires a trimmed name of at least two characters.
func validFullName(name string) bool {
	return len(strings.TrimSpace(name)) >= 2
}

// validPhone requires exactly ten digits.
func validPhone(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validEmail requires an RFC-shaped address.
func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
