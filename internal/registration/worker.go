package registration

import (
	"context"
	"fmt"
	"log/slog"

	"rollcall/internal/notify"
	"rollcall/internal/participant"
	"rollcall/internal/platform/logger"
	"rollcall/internal/platform/metrics"
)

// Event carries a confirmed participant to the background worker.
type Event struct {
	Participant participant.Participant
}

// Worker consumes confirmation events from a bounded channel and sends the
// welcome email off the request path. Send failures are logged and counted;
// they never reach the confirm caller.
type Worker struct {
	email   notify.EmailSender
	inbox   <-chan Event
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewWorker(email notify.EmailSender, inbox <-chan Event, log *slog.Logger, m *metrics.Metrics) *Worker {
	return &Worker{email: email, inbox: inbox, log: log, metrics: m}
}

// Run processes events until ctx is cancelled, then drains whatever is still
// buffered so queued welcomes are attempted before shutdown.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.send(event)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.send(event)
		default:
			return
		}
	}
}

func (w *Worker) send(event Event) {
	p := event.Participant
	subject := "Welcome aboard"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour registration is confirmed. See you there!\n", p.FirstName)
	if err := w.email.Send(context.Background(), p.Email, subject, body); err != nil {
		w.log.Warn("welcome email failed",
			slog.Int64("id", p.ID), slog.String("email", p.Email), logger.Err(err))
		w.metrics.NotifyFailures.WithLabelValues("email").Inc()
		return
	}
	w.log.Info("welcome email sent", slog.Int64("id", p.ID))
}
