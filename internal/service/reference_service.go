package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotelmend/ticket-service/internal/domain"
	"github.com/hotelmend/ticket-service/internal/events"
	"github.com/hotelmend/ticket-service/internal/repository"
	apperrors "github.com/hotelmend/ticket-service/pkg/util/errorutil"
)

// ReferenceService manages one reference list (locations or repair types).
type ReferenceService struct {
	repo       repository.ReferenceRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	// mu keeps the duplicate check and the write together.
	mu sync.Mutex
}

// NewReferenceService constructs the service. A nil logger discards output.
func NewReferenceService(repo repository.ReferenceRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{repo: repo, dispatcher: dispatcher, logger: logger}
}

// Kind names the list this service manages.
func (s *ReferenceService) Kind() domain.ReferenceKind {
	return s.repo.Kind()
}

// List returns the items sorted by name.
func (s *ReferenceService) List(ctx context.Context) ([]domain.ReferenceItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

// Add creates an item. Names collide case-insensitively.
func (s *ReferenceService) Add(ctx context.Context, name string) (*domain.ReferenceItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewFieldValidationError(map[string]string{"name": "required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	if existing := findByName(items, name); existing != nil {
		return nil, s.duplicate(name, existing)
	}

	item := &domain.ReferenceItem{Name: name, CreatedAt: time.Now()}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	s.publish(ctx, events.EventReferenceAdded, item)
	return item, nil
}

// Rename changes an item's name under the same collision rule as Add. An
// item may be renamed to a different casing of its own name.
func (s *ReferenceService) Rename(ctx context.Context, id, newName string) (*domain.ReferenceItem, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, apperrors.NewFieldValidationError(map[string]string{"name": "required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	var current *domain.ReferenceItem
	for i := range items {
		if items[i].ID == id {
			current = &items[i]
			break
		}
	}
	if current == nil {
		return nil, s.notFound(id)
	}
	if existing := findByName(items, newName); existing != nil && existing.ID != id {
		return nil, s.duplicate(newName, existing)
	}

	if err := s.repo.Rename(ctx, id, newName); err != nil {
		return nil, storeFailure(err, string(s.Kind()), id)
	}
	current.Name = newName
	return current, nil
}

// Remove deletes an item. Tickets that reference it are left untouched.
func (s *ReferenceService) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.List(ctx)
	if err != nil {
		return apperrors.NewStoreError(err)
	}
	var removed *domain.ReferenceItem
	for i := range items {
		if items[i].ID == id {
			removed = &items[i]
			break
		}
	}
	if removed == nil {
		return s.notFound(id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeFailure(err, string(s.Kind()), id)
	}
	s.publishRemoved(ctx, removed)
	return nil
}

// Resolve finds an item by case-insensitive name; it returns nil when absent.
func (s *ReferenceService) Resolve(ctx context.Context, name string) (*domain.ReferenceItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return findByName(items, strings.TrimSpace(name)), nil
}

// Seed adds the given names only when the list is empty, returning how many
// were added.
func (s *ReferenceService) Seed(ctx context.Context, names []string) (int, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return 0, apperrors.NewStoreError(err)
	}
	if len(items) > 0 {
		return 0, nil
	}
	added := 0
	for _, name := range names {
		if _, err := s.Add(ctx, name); err != nil {
			if apperrors.IsConflict(err) || apperrors.IsValidation(err) {
				continue
			}
			return added, err
		}
		added++
	}
	return added, nil
}

func (s *ReferenceService) notFound(id string) error {
	return apperrors.NewNotFound(string(s.Kind())+" item", map[string]any{"id": id})
}

func (s *ReferenceService) duplicate(name string, existing *domain.ReferenceItem) error {
	return apperrors.NewConflict("name already exists", map[string]any{
		"kind":     string(s.Kind()),
		"name":     name,
		"existing": existing.Name,
	})
}

func (s *ReferenceService) publish(ctx context.Context, eventType events.EventType, item *domain.ReferenceItem) {
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: item.ID,
		Timestamp: time.Now(),
		Payload:   events.ReferencePayload{Kind: s.Kind(), Name: item.Name},
	})
}

func (s *ReferenceService) publishRemoved(ctx context.Context, item *domain.ReferenceItem) {
	s.publish(ctx, events.EventReferenceRemoved, item)
}

func findByName(items []domain.ReferenceItem, name string) *domain.ReferenceItem {
	for i := range items {
		if strings.EqualFold(items[i].Name, name) {
			return &items[i]
		}
	}
	return nil
}
