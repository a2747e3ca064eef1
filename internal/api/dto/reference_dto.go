package dto

import (
	"time"

	"github.com/hotelmend/ticket-service/internal/domain"
)

// ReferenceItemRequest names a location or repair type.
type ReferenceItemRequest struct {
	Name string `json:"name"`
}

// ReferenceItemResponse is the wire form of a reference entry.
type ReferenceItemResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReferenceItemResponse maps a domain item.
func NewReferenceItemResponse(item domain.ReferenceItem) ReferenceItemResponse {
	return ReferenceItemResponse{ID: item.ID, Name: item.Name, CreatedAt: item.CreatedAt}
}
