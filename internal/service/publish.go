package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/hotelmend/ticket-service/internal/events"
)

// publishEvent dispatches event and logs handler failures. The mutation that
// raised the event has already been stored, so failures are not returned.
func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("subject_id", event.SubjectID),
			zap.Error(err),
		)
	}
}
