package audit

import (
	"context"
	"log/slog"
)

// Worker consumes events from the publisher inbox and hands them to the sink.
// A sink error is logged and the event dropped; the audit trail is best-effort
// everywhere except where services choose to emit synchronously.
type Worker struct {
	inbox  <-chan Event
	sink   Sink
	logger *slog.Logger
}

func NewWorker(publisher *Publisher, sink Sink, logger *slog.Logger) *Worker {
	return &Worker{inbox: publisher.Inbox(), sink: sink, logger: logger}
}

// Run processes events until ctx is cancelled, then drains whatever is still
// buffered before returning so shutdown doesn't lose queued events.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.publish(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	// Detached context: the run context is already cancelled.
	ctx := context.Background()
	for {
		select {
		case event := <-w.inbox:
			w.publish(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) publish(ctx context.Context, event Event) {
	if err := w.sink.Publish(ctx, event); err != nil {
		w.logger.Error("audit publish failed",
			"action", event.Action,
			"actor_id", event.ActorID,
			"error", err,
		)
	}
}
