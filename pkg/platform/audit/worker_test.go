package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorkerDeliversToSink(t *testing.T) {
	publisher := NewPublisher(8)
	sink := NewMemorySink()
	worker := NewWorker(publisher, sink, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	publisher.Emit(Event{Action: ActionPaymentVerified, ActorID: "admin-1", SubjectID: "reg-1"})
	publisher.Emit(Event{Action: ActionTeamCreated, ActorID: "user-1"})

	require.Eventually(t, func() bool {
		return len(sink.Events()) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	events := sink.Events()
	assert.Equal(t, ActionPaymentVerified, events[0].Action)
	assert.Equal(t, CategoryCompliance, events[0].Category, "category stamped from action")
	assert.Equal(t, CategoryOperations, events[1].Category)
	assert.False(t, events[0].Timestamp.IsZero(), "timestamp stamped on emit")
}

func TestWorkerDrainsOnShutdown(t *testing.T) {
	publisher := NewPublisher(8)
	sink := NewMemorySink()
	worker := NewWorker(publisher, sink, discardLogger())

	// Queue before the worker starts, then cancel immediately: drain must
	// still flush the inbox.
	publisher.Emit(Event{Action: ActionRegistrationBackfill, ActorID: "admin-1"})
	publisher.Emit(Event{Action: ActionPaymentRejected, ActorID: "admin-1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := worker.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, sink.Events(), 2)
}

func TestPublisherDropsWhenFull(t *testing.T) {
	publisher := NewPublisher(1)
	publisher.Emit(Event{Action: ActionTeamCreated})
	publisher.Emit(Event{Action: ActionTeamCreated})
	assert.EqualValues(t, 1, publisher.Dropped())
}
