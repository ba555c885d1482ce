package screen

import "fmt"

// ConfirmState is the state of the confirmation gate.
type ConfirmState int

const (
	ConfirmIdle ConfirmState = iota
	PendingConfirmation
	Confirmed
	Cancelled
)

// Confirmation holds a destructive mutation until the user answers. Nothing
// is sent while it is pending or after it is declined.
type Confirmation struct {
	state    ConfirmState
	mutation Mutation
}

// Request asks for confirmation of m. Only deletes are accepted.
func (c *Confirmation) Request(m Mutation) error {
	if !m.Kind.Destructive() {
		return fmt.Errorf("%s does not need confirmation", m.Kind)
	}
	if c.state == PendingConfirmation {
		return fmt.Errorf("already confirming %s", c.mutation.Kind)
	}
	c.state = PendingConfirmation
	c.mutation = m
	return nil
}

// Pending returns the mutation awaiting an answer.
func (c *Confirmation) Pending() (Mutation, bool) {
	if c.state != PendingConfirmation {
		return Mutation{}, false
	}
	return c.mutation, true
}

// Confirm accepts the pending mutation and hands it back for execution.
func (c *Confirmation) Confirm() (Mutation, bool) {
	if c.state != PendingConfirmation {
		return Mutation{}, false
	}
	c.state = Confirmed
	m := c.mutation
	c.mutation = Mutation{}
	return m, true
}

// Decline drops the pending mutation.
func (c *Confirmation) Decline() {
	if c.state != PendingConfirmation {
		return
	}
	c.state = Cancelled
	c.mutation = Mutation{}
}

// State returns the gate's state.
func (c *Confirmation) State() ConfirmState {
	return c.state
}
