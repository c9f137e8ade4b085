package registration

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/participant"
	"rollcall/internal/platform/metrics"
)

func newWorkerUnderTest(inbox chan Event) (*Worker, *fakeEmailSender) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender := &fakeEmailSender{}
	return NewWorker(sender, inbox, log, metrics.New(prometheus.NewRegistry())), sender
}

func TestWorker_SendsWelcomeEmails(t *testing.T) {
	inbox := make(chan Event, 4)
	worker, sender := newWorkerUnderTest(inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	inbox <- Event{Participant: participant.Participant{ID: 1, FirstName: "Jane", Email: "jane@x.com"}}

	require.Eventually(t, func() bool { return sender.count() == 1 }, time.Second, 10*time.Millisecond)

	sender.mu.Lock()
	assert.Equal(t, "jane@x.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Body, "Jane")
	sender.mu.Unlock()

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestWorker_DrainsBufferedEventsOnShutdown(t *testing.T) {
	inbox := make(chan Event, 4)
	worker, sender := newWorkerUnderTest(inbox)

	inbox <- Event{Participant: participant.Participant{ID: 1, Email: "a@x.com"}}
	inbox <- Event{Participant: participant.Participant{ID: 2, Email: "b@x.com"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, worker.Run(ctx), context.Canceled)
	assert.Equal(t, 2, sender.count(), "buffered welcomes must be attempted before shutdown")
}

func TestWorker_SendFailureDoesNotStopTheLoop(t *testing.T) {
	inbox := make(chan Event, 4)
	worker, sender := newWorkerUnderTest(inbox)
	sender.fail = true

	inbox <- Event{Participant: participant.Participant{ID: 1, Email: "a@x.com"}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// Give the worker a beat to process the failing send, then recover.
	time.Sleep(20 * time.Millisecond)
	sender.mu.Lock()
	sender.fail = false
	sender.mu.Unlock()

	inbox <- Event{Participant: participant.Participant{ID: 2, Email: "b@x.com"}}
	require.Eventually(t, func() bool { return sender.count() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
