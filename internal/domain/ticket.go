package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketStatuses lists every status in display order.
var TicketStatuses = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed}

// IsValid reports whether s is a known status.
func (s TicketStatus) IsValid() bool {
	return s.Rank() > 0
}

// Rank orders statuses for display. Unknown values rank 0.
func (s TicketStatus) Rank() int {
	switch s {
	case TicketStatusOpen:
		return 1
	case TicketStatusInProgress:
		return 2
	case TicketStatusClosed:
		return 3
	default:
		return 0
	}
}

// Importance enumerates how urgently a ticket needs attention.
type Importance string

const (
	ImportanceUrgent    Importance = "URGENT"
	ImportanceImportant Importance = "IMPORTANT"
	ImportanceLow       Importance = "LOW_IMPORTANCE"
)

// DefaultImportance is preselected by clients on the creation form.
const DefaultImportance = ImportanceImportant

// Importances lists every importance level in display order.
var Importances = []Importance{ImportanceUrgent, ImportanceImportant, ImportanceLow}

// IsValid reports whether i is a known importance level.
func (i Importance) IsValid() bool {
	return i.Rank() > 0
}

// Rank orders importance levels for display. Unknown values rank 0.
func (i Importance) Rank() int {
	switch i {
	case ImportanceUrgent:
		return 1
	case ImportanceImportant:
		return 2
	case ImportanceLow:
		return 3
	default:
		return 0
	}
}

// Label references an entry of a reference list, or carries a free-form
// value when Custom is set.
type Label struct {
	Name   string `json:"name"`
	Custom bool   `json:"custom"`
}

// SuggestedTicket is a related-ticket snapshot captured at creation time.
type SuggestedTicket struct {
	TicketID    string `json:"ticket_id"`
	Description string `json:"description"`
}

// Ticket is the aggregate for maintenance issues.
type Ticket struct {
	ID               string
	Description      string
	Location         Label
	RepairType       Label
	Status           TicketStatus
	Importance       Importance
	CreatedAt        time.Time
	UpdatedAt        time.Time
	SuggestedTickets []SuggestedTicket
}

// Clone returns a copy that shares no slices with t.
func (t Ticket) Clone() Ticket {
	if t.SuggestedTickets != nil {
		t.SuggestedTickets = append([]SuggestedTicket(nil), t.SuggestedTickets...)
	}
	return t
}
