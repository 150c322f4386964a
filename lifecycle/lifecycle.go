/*
Package lifecycle provides the request-state sum type shared by all
front-desk controllers.

PURPOSE:
  Every workflow on the desk (context load, hold, payment link, cash
  payment, room status) goes through the same four phases:

    Idle -> Loading -> Success | Error

  This package makes that an explicit tagged value instead of a loose
  status string plus booleans. A State is either Idle, Loading, a
  Success carrying a typed payload, or an Error carrying a message.

DESIGN PRINCIPLES:
  1. Phase and payload travel together; a Success without its payload
     cannot be constructed through the public constructors
  2. States are values: transitions replace the whole state, there is
     no in-place mutation to observe half-done
  3. Error keeps the user-facing message only; the wrapped cause stays
     with the controller's logging, not in UI state

USAGE:
  st := lifecycle.Idle[HoldReceipt]()
  st = lifecycle.Loading[HoldReceipt]()
  st = lifecycle.Succeeded(receipt)
  st = lifecycle.Failed[HoldReceipt]("hold could not be placed")
*/
package lifecycle

// Phase is the discriminant of a State.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// State is one controller lifecycle value. The zero value is Idle.
type State[T any] struct {
	phase   Phase
	value   T
	message string
}

// Constructors
func Idle[T any]() State[T]    { return State[T]{phase: PhaseIdle} }
func Loading[T any]() State[T] { return State[T]{phase: PhaseLoading} }

func Succeeded[T any](value T) State[T] {
	return State[T]{phase: PhaseSuccess, value: value}
}

func Failed[T any](message string) State[T] {
	return State[T]{phase: PhaseError, message: message}
}

// Phase returns the discriminant.
func (s State[T]) Phase() Phase { return s.phase }

func (s State[T]) IsIdle() bool    { return s.phase == PhaseIdle }
func (s State[T]) IsLoading() bool { return s.phase == PhaseLoading }
func (s State[T]) IsSuccess() bool { return s.phase == PhaseSuccess }
func (s State[T]) IsError() bool   { return s.phase == PhaseError }

// Value returns the Success payload and whether one is present.
func (s State[T]) Value() (T, bool) {
	if s.phase != PhaseSuccess {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Message returns the Error message, empty for every other phase.
func (s State[T]) Message() string {
	if s.phase != PhaseError {
		return ""
	}
	return s.message
}
