package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotelmend/ticket-service/internal/domain"
	"github.com/hotelmend/ticket-service/internal/events"
	"github.com/hotelmend/ticket-service/internal/observability"
	"github.com/hotelmend/ticket-service/internal/persistence/docstore"
	"github.com/hotelmend/ticket-service/internal/repository"
	apperrors "github.com/hotelmend/ticket-service/pkg/util/errorutil"
)

// MinDescriptionLength is the shortest accepted ticket description, in characters.
const MinDescriptionLength = 10

// LabelResolver looks up reference list entries by name.
type LabelResolver interface {
	Resolve(ctx context.Context, name string) (*domain.ReferenceItem, error)
}

// TicketEngine owns the loaded ticket set and every mutation of it. The
// cached set only changes after the store has accepted a write.
type TicketEngine struct {
	repo        repository.TicketRepository
	history     repository.TicketHistoryRepository
	locations   LabelResolver
	repairTypes LabelResolver
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time

	writeMu sync.Mutex
	mu      sync.RWMutex
	tickets []domain.Ticket // newest first
}

// TicketEngineDependencies bundles collaborators for the engine.
type TicketEngineDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	Locations   LabelResolver
	RepairTypes LabelResolver
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Clock       func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Description      string
	Location         domain.Label
	RepairType       domain.Label
	Importance       domain.Importance
	SuggestedTickets []domain.SuggestedTicket
}

// TicketUpdateInput carries the fields to change; nil fields are kept.
type TicketUpdateInput struct {
	Description *string
	Location    *domain.Label
	RepairType  *domain.Label
	Importance  *domain.Importance
	Status      *domain.TicketStatus
}

// IsEmpty reports whether the update changes nothing.
func (in TicketUpdateInput) IsEmpty() bool {
	return in.Description == nil && in.Location == nil && in.RepairType == nil && in.Importance == nil && in.Status == nil
}

// NewTicketEngine constructs the engine. Call Load before serving reads.
func NewTicketEngine(deps TicketEngineDependencies) *TicketEngine {
	e := &TicketEngine{
		repo:        deps.TicketRepo,
		history:     deps.HistoryRepo,
		locations:   deps.Locations,
		repairTypes: deps.RepairTypes,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		now:         deps.Clock,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Load replaces the cached set with the store's contents.
func (e *TicketEngine) Load(ctx context.Context) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	tickets, err := e.repo.List(ctx)
	if err != nil {
		return apperrors.NewStoreError(err)
	}
	e.mu.Lock()
	e.tickets = tickets
	e.mu.Unlock()
	return nil
}

// List returns a copy of the cached set, newest first.
func (e *TicketEngine) List() []domain.Ticket {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.Ticket, len(e.tickets))
	for i, t := range e.tickets {
		out[i] = t.Clone()
	}
	return out
}

// View applies the filter and orders the result for display.
func (e *TicketEngine) View(filter TicketFilter) []domain.Ticket {
	return SortForDisplay(ApplyFilter(e.List(), filter))
}

// Get returns a cached ticket.
func (e *TicketEngine) Get(id string) (*domain.Ticket, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	idx := e.indexOf(id)
	if idx < 0 {
		return nil, ticketNotFound(id)
	}
	t := e.tickets[idx].Clone()
	return &t, nil
}

// Create validates and stores a new ticket, which becomes the newest entry.
func (e *TicketEngine) Create(ctx context.Context, input TicketCreateInput) (ticket *domain.Ticket, err error) {
	defer func() { e.metrics.RecordTicketMutation("create", err) }()

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	now := e.now()
	t := domain.Ticket{
		Description:      strings.TrimSpace(input.Description),
		Location:         input.Location,
		RepairType:       input.RepairType,
		Status:           domain.TicketStatusOpen,
		Importance:       input.Importance,
		CreatedAt:        now,
		UpdatedAt:        now,
		SuggestedTickets: append([]domain.SuggestedTicket(nil), input.SuggestedTickets...),
	}

	problems := map[string]string{}
	checkDescription(t.Description, problems)
	if err := e.checkLabel(ctx, "location", e.locations, &t.Location, problems); err != nil {
		return nil, err
	}
	if err := e.checkLabel(ctx, "repair_type", e.repairTypes, &t.RepairType, problems); err != nil {
		return nil, err
	}
	if !t.Importance.IsValid() {
		problems["importance"] = "must be one of URGENT, IMPORTANT, LOW_IMPORTANCE"
	}
	if len(problems) > 0 {
		return nil, apperrors.NewFieldValidationError(problems)
	}

	if err := e.repo.Create(ctx, &t); err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	e.mu.Lock()
	e.tickets = append([]domain.Ticket{t}, e.tickets...)
	e.mu.Unlock()

	e.recordHistory(ctx, t.ID, domain.ChangeTypeCreated, nil, map[string]any{
		"status":     string(t.Status),
		"importance": string(t.Importance),
	})
	e.publish(ctx, events.EventTicketCreated, t.ID, events.TicketCreatedPayload{
		Location:   t.Location.Name,
		RepairType: t.RepairType.Name,
		Importance: t.Importance,
	})

	out := t.Clone()
	return &out, nil
}

// Update merges the provided fields into the ticket. The ID and creation
// time never change.
func (e *TicketEngine) Update(ctx context.Context, id string, input TicketUpdateInput) (ticket *domain.Ticket, err error) {
	defer func() { e.metrics.RecordTicketMutation("update", err) }()

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	current, err := e.Get(id)
	if err != nil {
		return nil, err
	}
	next := current.Clone()

	problems := map[string]string{}
	if input.Description != nil {
		next.Description = strings.TrimSpace(*input.Description)
		checkDescription(next.Description, problems)
	}
	if input.Location != nil {
		next.Location = *input.Location
		if err := e.checkLabel(ctx, "location", e.locations, &next.Location, problems); err != nil {
			return nil, err
		}
	}
	if input.RepairType != nil {
		next.RepairType = *input.RepairType
		if err := e.checkLabel(ctx, "repair_type", e.repairTypes, &next.RepairType, problems); err != nil {
			return nil, err
		}
	}
	if input.Importance != nil {
		next.Importance = *input.Importance
		if !next.Importance.IsValid() {
			problems["importance"] = "must be one of URGENT, IMPORTANT, LOW_IMPORTANCE"
		}
	}
	if input.Status != nil {
		next.Status = *input.Status
		if !next.Status.IsValid() {
			problems["status"] = "must be one of OPEN, IN_PROGRESS, CLOSED"
		}
	}
	if len(problems) > 0 {
		return nil, apperrors.NewFieldValidationError(problems)
	}

	next.UpdatedAt = e.touch(current.UpdatedAt)
	if err := e.repo.Update(ctx, &next); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			e.evict(id)
		}
		return nil, storeFailure(err, "ticket", id)
	}

	e.mu.Lock()
	if idx := e.indexOf(id); idx >= 0 {
		e.tickets[idx] = next
	}
	e.mu.Unlock()

	e.recordChanges(ctx, *current, next)
	out := next.Clone()
	return &out, nil
}

// SetStatus changes only the status.
func (e *TicketEngine) SetStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	return e.Update(ctx, id, TicketUpdateInput{Status: &status})
}

// Delete removes a ticket. Deleting an id that is not loaded is NotFound,
// including a second delete of the same id.
func (e *TicketEngine) Delete(ctx context.Context, id string) (err error) {
	defer func() { e.metrics.RecordTicketMutation("delete", err) }()

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if _, err := e.Get(id); err != nil {
		return err
	}
	// A document already gone from the store was removed by another
	// session; dropping it locally is all that is left to do.
	if err := e.repo.Delete(ctx, id); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return apperrors.NewStoreError(err)
	}
	e.evict(id)
	e.publish(ctx, events.EventTicketDeleted, id, nil)
	return nil
}

// History returns the audit trail of a loaded ticket.
func (e *TicketEngine) History(ctx context.Context, id string) ([]domain.TicketHistory, error) {
	if _, err := e.Get(id); err != nil {
		return nil, err
	}
	if e.history == nil {
		return []domain.TicketHistory{}, nil
	}
	entries, err := e.history.ListByTicket(ctx, id)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return entries, nil
}

// touch returns the current time, forced strictly after prev.
func (e *TicketEngine) touch(prev time.Time) time.Time {
	now := e.now()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func (e *TicketEngine) evict(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if idx := e.indexOf(id); idx >= 0 {
		e.tickets = append(e.tickets[:idx:idx], e.tickets[idx+1:]...)
	}
}

// indexOf requires e.mu to be held.
func (e *TicketEngine) indexOf(id string) int {
	for i := range e.tickets {
		if e.tickets[i].ID == id {
			return i
		}
	}
	return -1
}

func checkDescription(desc string, problems map[string]string) {
	if utf8.RuneCountInString(desc) < MinDescriptionLength {
		problems["description"] = "must be at least 10 characters"
	}
}

// checkLabel validates a label in place. Non-custom labels must name an
// existing reference entry and take its canonical spelling.
func (e *TicketEngine) checkLabel(ctx context.Context, field string, resolver LabelResolver, label *domain.Label, problems map[string]string) error {
	label.Name = strings.TrimSpace(label.Name)
	if label.Name == "" {
		problems[field] = "required"
		return nil
	}
	if label.Custom || resolver == nil {
		return nil
	}
	item, err := resolver.Resolve(ctx, label.Name)
	if err != nil {
		return err
	}
	if item == nil {
		problems[field] = "unknown value; mark it as custom to use a free-form value"
		return nil
	}
	label.Name = item.Name
	return nil
}

func (e *TicketEngine) recordChanges(ctx context.Context, before, after domain.Ticket) {
	if before.Status != after.Status {
		e.recordHistory(ctx, after.ID, domain.ChangeTypeStatus,
			map[string]any{"status": string(before.Status)},
			map[string]any{"status": string(after.Status)})
		e.publish(ctx, events.EventTicketStatusChanged, after.ID, events.TicketStatusChangedPayload{
			OldStatus: before.Status,
			NewStatus: after.Status,
		})
	}

	oldValues, newValues := map[string]any{}, map[string]any{}
	if before.Description != after.Description {
		oldValues["description"], newValues["description"] = before.Description, after.Description
	}
	if before.Location != after.Location {
		oldValues["location"], newValues["location"] = before.Location.Name, after.Location.Name
	}
	if before.RepairType != after.RepairType {
		oldValues["repair_type"], newValues["repair_type"] = before.RepairType.Name, after.RepairType.Name
	}
	if before.Importance != after.Importance {
		oldValues["importance"], newValues["importance"] = string(before.Importance), string(after.Importance)
	}
	if len(newValues) == 0 {
		return
	}
	e.recordHistory(ctx, after.ID, domain.ChangeTypeFields, oldValues, newValues)
	fields := make([]string, 0, len(newValues))
	for _, name := range []string{"description", "location", "repair_type", "importance"} {
		if _, ok := newValues[name]; ok {
			fields = append(fields, name)
		}
	}
	e.publish(ctx, events.EventTicketUpdated, after.ID, events.TicketUpdatedPayload{Fields: fields})
}

// recordHistory is best effort: the ticket write has already succeeded.
func (e *TicketEngine) recordHistory(ctx context.Context, ticketID string, change domain.TicketChangeType, oldValue, newValue map[string]any) {
	if e.history == nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:   ticketID,
		ChangeType: change,
		OldValue:   oldValue,
		NewValue:   newValue,
		CreatedAt:  e.now(),
	}
	if err := e.history.Create(ctx, entry); err != nil {
		e.logger.Warn("failed to record ticket history",
			zap.String("ticket_id", ticketID),
			zap.String("change_type", string(change)),
			zap.Error(err))
	}
}

func (e *TicketEngine) publish(ctx context.Context, eventType events.EventType, ticketID string, payload any) {
	publishEvent(ctx, e.dispatcher, e.logger, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: ticketID,
		Timestamp: e.now(),
		Payload:   payload,
	})
}

func ticketNotFound(id string) error {
	return apperrors.NewNotFound("ticket", map[string]any{"id": id})
}
