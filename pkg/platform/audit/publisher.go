package audit

import (
	"context"
	"sync"
	"time"
)

// Sink receives audit events from the worker. Implementations: Kafka for
// deployments, Memory for tests and broker-less dev runs.
type Sink interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Publisher is the producer half handed to services. Emit is non-blocking:
// a full inbox drops the event with a counter rather than stalling a request
// handler on the audit path.
type Publisher struct {
	inbox   chan Event
	dropped int64
	mu      sync.Mutex
}

func NewPublisher(buffer int) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{inbox: make(chan Event, buffer)}
}

// Emit queues an event, stamping the timestamp and category if unset.
func (p *Publisher) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Category == "" {
		event.Category = CategoryOf(event.Action)
	}
	select {
	case p.inbox <- event:
	default:
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
	}
}

// Dropped reports how many events were lost to a full inbox.
func (p *Publisher) Dropped() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Inbox exposes the consuming side for the worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }

// MemorySink buffers events in memory. Used by tests and when no brokers are
// configured.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Publish(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event{}, s.events...)
}

func (s *MemorySink) Close() {}
