package events

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type countingDispatcher struct {
	subscribed map[EventType]int
}

func (d *countingDispatcher) Publish(context.Context, Event) error { return nil }

func (d *countingDispatcher) Subscribe(t EventType, _ EventHandler) {
	d.subscribed[t]++
}

// gatedWriter blocks every write until release is closed.
type gatedWriter struct {
	release chan struct{}
	mu      sync.Mutex
	keys    []string
	closed  bool
}

func (w *gatedWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	select {
	case <-w.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, m := range msgs {
		w.keys = append(w.keys, string(m.Key))
	}
	return nil
}

func (w *gatedWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestKafkaSinkAttachesToEveryEventType(t *testing.T) {
	sink := NewKafkaSink([]string{"127.0.0.1:9092"}, "hotelmend.tickets", zap.NewNop())
	defer sink.Close()

	d := &countingDispatcher{subscribed: map[EventType]int{}}
	sink.Attach(d)

	if sink.Topic() != "hotelmend.tickets" {
		t.Fatalf("unexpected topic %q", sink.Topic())
	}
	for _, eventType := range AllEventTypes {
		if d.subscribed[eventType] != 1 {
			t.Errorf("%s subscribed %d times", eventType, d.subscribed[eventType])
		}
	}
}

func TestKafkaSinkHandleDoesNotWaitForBroker(t *testing.T) {
	w := &gatedWriter{release: make(chan struct{})}
	sink := newKafkaSink(w, "hotelmend.tickets", zap.NewNop(), 8)

	handled := make(chan error, 1)
	go func() {
		for _, id := range []string{"t1", "t2", "t3"} {
			if err := sink.Handle(context.Background(), Event{Type: EventTicketUpdated, SubjectID: id}); err != nil {
				handled <- err
				return
			}
		}
		handled <- nil
	}()

	select {
	case err := <-handled:
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("handle blocked on a stalled writer")
	}

	close(w.release)
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !reflect.DeepEqual(w.keys, []string{"t1", "t2", "t3"}) {
		t.Fatalf("expected events flushed in order, got %v", w.keys)
	}
	if !w.closed {
		t.Fatal("expected writer to be closed")
	}
}

func TestKafkaSinkRejectsWhenQueueFull(t *testing.T) {
	w := &gatedWriter{release: make(chan struct{})}
	sink := newKafkaSink(w, "hotelmend.tickets", zap.NewNop(), 1)

	var full bool
	for i := 0; i < 3 && !full; i++ {
		err := sink.Handle(context.Background(), Event{Type: EventTicketCreated, SubjectID: "t"})
		full = errors.Is(err, ErrSinkFull)
	}
	if !full {
		t.Fatal("expected ErrSinkFull with a stalled writer and a one-slot queue")
	}

	close(w.release)
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := sink.Handle(context.Background(), Event{Type: EventTicketCreated}); !errors.Is(err, ErrSinkClosed) {
		t.Fatalf("expected ErrSinkClosed after close, got %v", err)
	}
}
