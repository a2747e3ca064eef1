package repository

import (
	"context"
	"fmt"

	"github.com/hotelmend/ticket-service/internal/domain"
	"github.com/hotelmend/ticket-service/internal/persistence/docstore"
)

// ReferenceRepository manages one reference list.
type ReferenceRepository interface {
	Kind() domain.ReferenceKind
	List(ctx context.Context) ([]domain.ReferenceItem, error)
	Create(ctx context.Context, item *domain.ReferenceItem) error
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

type referenceRepository struct {
	store docstore.Store
	kind  domain.ReferenceKind
}

// NewReferenceRepository builds the repository for a reference kind. The
// kind doubles as the collection name.
func NewReferenceRepository(store docstore.Store, kind domain.ReferenceKind) ReferenceRepository {
	return &referenceRepository{store: store, kind: kind}
}

func (r *referenceRepository) Kind() domain.ReferenceKind {
	return r.kind
}

func (r *referenceRepository) List(ctx context.Context) ([]domain.ReferenceItem, error) {
	docs, err := r.store.List(ctx, string(r.kind))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.kind, err)
	}
	items := make([]domain.ReferenceItem, 0, len(docs))
	for _, doc := range docs {
		name := stringField(doc.Fields, "name")
		if name == "" {
			continue
		}
		items = append(items, domain.ReferenceItem{ID: doc.ID, Name: name, CreatedAt: doc.CreatedAt})
	}
	return items, nil
}

func (r *referenceRepository) Create(ctx context.Context, item *domain.ReferenceItem) error {
	id, err := r.store.Insert(ctx, string(r.kind), docstore.Fields{"name": item.Name})
	if err != nil {
		return fmt.Errorf("insert %s: %w", r.kind, err)
	}
	item.ID = id
	return nil
}

func (r *referenceRepository) Rename(ctx context.Context, id, name string) error {
	if err := r.store.Patch(ctx, string(r.kind), id, docstore.Fields{"name": name}); err != nil {
		return fmt.Errorf("rename %s %s: %w", r.kind, id, err)
	}
	return nil
}

func (r *referenceRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, string(r.kind), id); err != nil {
		return fmt.Errorf("delete %s %s: %w", r.kind, id, err)
	}
	return nil
}
