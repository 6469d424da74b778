package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sink delivers one event somewhere outside the process.
type Sink interface {
	Name() string
	Send(ctx context.Context, e Event) error
}

// Dispatcher queues events and hands them to every sink from a single worker.
// A full queue drops the event; publishers never block.
type Dispatcher struct {
	queue   chan Event
	sinks   []Sink
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(size int, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	d := &Dispatcher{
		queue:   make(chan Event, size),
		sinks:   sinks,
		timeout: 10 * time.Second,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) Publish(_ context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- e:
	default:
		slog.Warn("notification queue full, dropping event", "type", e.Type, "entity_id", e.EntityID)
	}
}

// Close stops accepting events and waits for the queued ones to be delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		for _, sink := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			if err := sink.Send(ctx, e); err != nil {
				slog.Error("notification delivery failed", "sink", sink.Name(), "type", e.Type, "error", err)
			}
			cancel()
		}
	}
}
