package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/hotelmend/ticket-service/internal/domain"
	"github.com/hotelmend/ticket-service/internal/persistence/docstore"
)

const historyCollection = "ticket_history"

// TicketHistoryRepository stores audit entries.
type TicketHistoryRepository interface {
	Create(ctx context.Context, history *domain.TicketHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	store docstore.Store
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(store docstore.Store) TicketHistoryRepository {
	return &ticketHistoryRepository{store: store}
}

func (r *ticketHistoryRepository) Create(ctx context.Context, history *domain.TicketHistory) error {
	fields := docstore.Fields{
		"ticket_id":   history.TicketID,
		"change_type": string(history.ChangeType),
		"old_value":   history.OldValue,
		"new_value":   history.NewValue,
		"created_at":  encodeTime(history.CreatedAt),
	}
	id, err := r.store.Insert(ctx, historyCollection, fields)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	history.ID = id
	return nil
}

// ListByTicket returns entries oldest first.
func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	docs, err := r.store.List(ctx, historyCollection)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	var result []domain.TicketHistory
	// docs arrive newest first; walk backwards so equal timestamps keep insert order.
	for i := len(docs) - 1; i >= 0; i-- {
		doc := docs[i]
		if stringField(doc.Fields, "ticket_id") != ticketID {
			continue
		}
		oldValue, _ := doc.Fields["old_value"].(map[string]any)
		newValue, _ := doc.Fields["new_value"].(map[string]any)
		result = append(result, domain.TicketHistory{
			ID:         doc.ID,
			TicketID:   ticketID,
			ChangeType: domain.TicketChangeType(stringField(doc.Fields, "change_type")),
			OldValue:   oldValue,
			NewValue:   newValue,
			CreatedAt:  timeField(doc.Fields, "created_at", doc.CreatedAt),
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
