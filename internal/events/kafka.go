package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	defaultSinkQueueSize = 1024
	sinkWriteTimeout     = 10 * time.Second
	sinkDrainTimeout     = 5 * time.Second
)

var (
	// ErrSinkFull is returned when the sink queue cannot take another event.
	ErrSinkFull = errors.New("kafka sink queue is full")
	// ErrSinkClosed is returned for events handled after Close.
	ErrSinkClosed = errors.New("kafka sink is closed")
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink forwards published events to a Kafka topic, keyed by subject so
// events of one ticket stay ordered within a partition. Handle only queues
// the event; a single goroutine writes them in order.
type KafkaSink struct {
	writer    messageWriter
	topic     string
	logger    *zap.Logger
	queue     chan kafka.Message
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewKafkaSink starts a sink writing to the topic.
func NewKafkaSink(brokers []string, topic string, logger *zap.Logger) *KafkaSink {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return newKafkaSink(w, topic, logger, defaultSinkQueueSize)
}

func newKafkaSink(w messageWriter, topic string, logger *zap.Logger, queueSize int) *KafkaSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	k := &KafkaSink{
		writer: w,
		topic:  topic,
		logger: logger,
		queue:  make(chan kafka.Message, queueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go k.run()
	return k
}

// Attach subscribes the sink to every event type.
func (k *KafkaSink) Attach(d Dispatcher) {
	for _, t := range AllEventTypes {
		d.Subscribe(t, k.Handle)
	}
}

// Handle queues a single event without waiting for the broker.
func (k *KafkaSink) Handle(_ context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := kafka.Message{Key: []byte(event.SubjectID), Value: value}
	select {
	case <-k.stop:
		return ErrSinkClosed
	default:
	}
	select {
	case k.queue <- msg:
		return nil
	default:
		return ErrSinkFull
	}
}

func (k *KafkaSink) run() {
	defer close(k.done)
	for {
		select {
		case msg := <-k.queue:
			ctx, cancel := context.WithTimeout(context.Background(), sinkWriteTimeout)
			k.write(ctx, msg)
			cancel()
		case <-k.stop:
			k.drain()
			return
		}
	}
}

// drain flushes what is still queued, bounded by sinkDrainTimeout overall.
func (k *KafkaSink) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), sinkDrainTimeout)
	defer cancel()
	for {
		select {
		case msg := <-k.queue:
			k.write(ctx, msg)
		default:
			return
		}
	}
}

func (k *KafkaSink) write(ctx context.Context, msg kafka.Message) {
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		k.logger.Warn("failed to write event to kafka",
			zap.String("topic", k.topic),
			zap.ByteString("key", msg.Key),
			zap.Error(err),
		)
	}
}

func (k *KafkaSink) Topic() string {
	return k.topic
}

// Close stops accepting events, flushes the queue and closes the writer.
func (k *KafkaSink) Close() error {
	var err error
	k.closeOnce.Do(func() {
		close(k.stop)
		<-k.done
		err = k.writer.Close()
	})
	return err
}
