package worker

import (
	"go.uber.org/zap"

	"github.com/hotelmend/ticket-service/internal/events"
	"github.com/hotelmend/ticket-service/internal/service"
)

// StartActivityWorker registers the activity feed and, when configured, the
// Kafka sink on the dispatcher. The returned sink is nil without brokers.
func StartActivityWorker(dispatcher events.Dispatcher, activity *service.ActivityService, brokers []string, topic string, logger *zap.Logger) *events.KafkaSink {
	if activity != nil {
		activity.RegisterHandlers()
	}
	if dispatcher == nil || len(brokers) == 0 {
		return nil
	}
	sink := events.NewKafkaSink(brokers, topic, logger)
	sink.Attach(dispatcher)
	if logger != nil {
		logger.Info("forwarding events to kafka", zap.Strings("brokers", brokers), zap.String("topic", sink.Topic()))
	}
	return sink
}
