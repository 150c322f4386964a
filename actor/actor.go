// Package actor identifies who is operating the front desk. The identity is
// an explicit value handed to controller constructors, never inferred from
// ambient routing or session state.
package actor

// Role is the kind of desk operator.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleHost  Role = "host"
)

// Actor is the resolved desk operator identity, stamped onto holds, payment
// payloads and room-status records.
type Actor struct {
	Role  Role
	ID    string
	Label string
}

// IsZero reports whether no operator has been resolved.
func (a Actor) IsZero() bool { return a.Role == "" && a.ID == "" }
