package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hotelmend/ticket-service/internal/domain"
	"github.com/hotelmend/ticket-service/internal/persistence/docstore"
)

// TicketsCollection is the document collection holding tickets.
const TicketsCollection = "tickets"

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	List(ctx context.Context) ([]domain.Ticket, error)
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	store docstore.Store
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(store docstore.Store) TicketRepository {
	return &ticketRepository{store: store}
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	docs, err := r.store.List(ctx, TicketsCollection)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	tickets := make([]domain.Ticket, 0, len(docs))
	for _, doc := range docs {
		tickets = append(tickets, decodeTicket(doc))
	}
	return tickets, nil
}

// Create persists the ticket and assigns its ID.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	fields := encodeTicket(ticket)
	fields["created_at"] = encodeTime(ticket.CreatedAt)
	id, err := r.store.Insert(ctx, TicketsCollection, fields)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	ticket.ID = id
	return nil
}

// Update writes every mutable field. created_at is never rewritten.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if err := r.store.Patch(ctx, TicketsCollection, ticket.ID, encodeTicket(ticket)); err != nil {
		return fmt.Errorf("update ticket %s: %w", ticket.ID, err)
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, TicketsCollection, id); err != nil {
		return fmt.Errorf("delete ticket %s: %w", id, err)
	}
	return nil
}

func encodeTicket(ticket *domain.Ticket) docstore.Fields {
	suggestions := make([]any, 0, len(ticket.SuggestedTickets))
	for _, s := range ticket.SuggestedTickets {
		suggestions = append(suggestions, map[string]any{
			"ticket_id":   s.TicketID,
			"description": s.Description,
		})
	}
	return docstore.Fields{
		"description":       ticket.Description,
		"location":          encodeLabel(ticket.Location),
		"repair_type":       encodeLabel(ticket.RepairType),
		"status":            string(ticket.Status),
		"importance":        string(ticket.Importance),
		"updated_at":        encodeTime(ticket.UpdatedAt),
		"suggested_tickets": suggestions,
	}
}

func decodeTicket(doc docstore.Document) domain.Ticket {
	f := doc.Fields
	ticket := domain.Ticket{
		ID:          doc.ID,
		Description: stringField(f, "description"),
		Location:    labelField(f, "location"),
		RepairType:  labelField(f, "repair_type"),
		Status:      domain.TicketStatus(stringField(f, "status")),
		Importance:  domain.Importance(stringField(f, "importance")),
		CreatedAt:   timeField(f, "created_at", doc.CreatedAt),
		UpdatedAt:   timeField(f, "updated_at", doc.UpdatedAt),
	}
	if raw, ok := f["suggested_tickets"].([]any); ok {
		for _, item := range raw {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			ticket.SuggestedTickets = append(ticket.SuggestedTickets, domain.SuggestedTicket{
				TicketID:    stringField(m, "ticket_id"),
				Description: stringField(m, "description"),
			})
		}
	}
	if ticket.UpdatedAt.Before(ticket.CreatedAt) {
		ticket.UpdatedAt = ticket.CreatedAt
	}
	return ticket
}

func encodeLabel(label domain.Label) map[string]any {
	return map[string]any{"name": label.Name, "custom": label.Custom}
}

// labelField also accepts a bare string, the format older records used.
func labelField(f docstore.Fields, key string) domain.Label {
	switch v := f[key].(type) {
	case string:
		return domain.Label{Name: v}
	case map[string]any:
		custom, _ := v["custom"].(bool)
		return domain.Label{Name: stringField(v, "name"), Custom: custom}
	default:
		return domain.Label{}
	}
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timeField falls back to the store-generated timestamp when the
// client-written one is missing or malformed.
func timeField(f map[string]any, key string, fallback time.Time) time.Time {
	s, ok := f[key].(string)
	if !ok || s == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fallback
	}
	return t
}

func stringField(f map[string]any, key string) string {
	s, _ := f[key].(string)
	return s
}
