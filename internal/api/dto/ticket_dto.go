package dto

import (
	"time"

	"github.com/hotelmend/ticket-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Description      string                   `json:"description"`
	Location         domain.Label             `json:"location"`
	RepairType       domain.Label             `json:"repair_type"`
	Importance       domain.Importance        `json:"importance"`
	SuggestedTickets []domain.SuggestedTicket `json:"suggested_tickets"`
}

// UpdateTicketRequest carries only the fields to change.
type UpdateTicketRequest struct {
	Description *string              `json:"description"`
	Location    *domain.Label        `json:"location"`
	RepairType  *domain.Label        `json:"repair_type"`
	Importance  *domain.Importance   `json:"importance"`
	Status      *domain.TicketStatus `json:"status"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID               string                   `json:"id"`
	Description      string                   `json:"description"`
	Location         domain.Label             `json:"location"`
	RepairType       domain.Label             `json:"repair_type"`
	Status           domain.TicketStatus      `json:"status"`
	Importance       domain.Importance        `json:"importance"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
	SuggestedTickets []domain.SuggestedTicket `json:"suggested_tickets"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID         string                  `json:"id"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	OldValue   map[string]any          `json:"old_value,omitempty"`
	NewValue   map[string]any          `json:"new_value,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

// SuggestRequest payload.
type SuggestRequest struct {
	Description string `json:"description"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	suggested := t.SuggestedTickets
	if suggested == nil {
		suggested = []domain.SuggestedTicket{}
	}
	return TicketResponse{
		ID:               t.ID,
		Description:      t.Description,
		Location:         t.Location,
		RepairType:       t.RepairType,
		Status:           t.Status,
		Importance:       t.Importance,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		SuggestedTickets: suggested,
	}
}
