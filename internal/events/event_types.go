package events

import (
	"time"

	"github.com/hotelmend/ticket-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventReferenceAdded      EventType = "reference_item_added"
	EventReferenceRemoved    EventType = "reference_item_removed"
	EventAccessCodeIssued    EventType = "access_code_issued"
	EventAccessCodeRevoked   EventType = "access_code_revoked"
)

// AllEventTypes lists every type, for sinks that forward everything.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketStatusChanged,
	EventTicketDeleted,
	EventReferenceAdded,
	EventReferenceRemoved,
	EventAccessCodeIssued,
	EventAccessCodeRevoked,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Location   string            `json:"location"`
	RepairType string            `json:"repair_type"`
	Importance domain.Importance `json:"importance"`
}

// TicketUpdatedPayload lists the fields an edit changed.
type TicketUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// ReferencePayload describes a reference list change.
type ReferencePayload struct {
	Kind domain.ReferenceKind `json:"kind"`
	Name string               `json:"name"`
}

// AccessCodePayload carries whether a code was generated. The code itself is
// never published.
type AccessCodePayload struct {
	Generated bool `json:"generated"`
}
