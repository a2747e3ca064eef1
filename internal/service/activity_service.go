package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hotelmend/ticket-service/internal/events"
)

const defaultActivityCapacity = 100

// ActivityService records domain events in a bounded, newest-first feed and
// logs each one.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu       sync.RWMutex
	entries  []events.Event
	capacity int
}

// NewActivityService creates the service. capacity <= 0 uses the default.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, capacity int) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity <= 0 {
		capacity = defaultActivityCapacity
	}
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     logger,
		capacity:   capacity,
	}
}

// RegisterHandlers subscribes to every event type.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, t := range events.AllEventTypes {
		a.dispatcher.Subscribe(t, a.handle)
	}
}

func (a *ActivityService) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("event_type", string(event.Type))}
	if event.SubjectID != "" {
		fields = append(fields, zap.String("subject_id", event.SubjectID))
	}
	switch event.Type {
	case events.EventTicketDeleted, events.EventReferenceRemoved, events.EventAccessCodeRevoked:
		a.logger.Warn("activity", append(fields, zap.Any("payload", event.Payload))...)
	default:
		a.logger.Info("activity", append(fields, zap.Any("payload", event.Payload))...)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append([]events.Event{event}, a.entries...)
	if len(a.entries) > a.capacity {
		a.entries = a.entries[:a.capacity]
	}
	return nil
}

// Recent returns up to limit events, newest first. limit <= 0 returns all.
func (a *ActivityService) Recent(limit int) []events.Event {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := len(a.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]events.Event, n)
	copy(out, a.entries[:n])
	return out
}
