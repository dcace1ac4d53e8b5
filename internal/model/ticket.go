package model

// Ticket references an in-flight transaction on the backend.
type Ticket string

// String returns the string representation of the ticket.
func (t Ticket) String() string {
	return string(t)
}

// StatusPending is the only non-terminal ticket status code.
const StatusPending = 0

// TicketStatus is one answer of the result endpoint.
type TicketStatus struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

// IsPending reports whether the backend still considers the ticket in flight.
func (s TicketStatus) IsPending() bool {
	return s.Code == StatusPending
}

// Message renders the status the way it is shown to the player.
func (s TicketStatus) Message() string {
	return "Transaction status: " + s.Status
}
