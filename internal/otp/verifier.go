package otp

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"rollcall/internal/platform/logger"
)

var verifyDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "rollcall_otp_verify_duration_ms",
	Help:    "Latency of one-time code verification in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

// Verifier checks submitted codes against the CodeStore. Matching and
// consumption happen in one atomic backend operation, so a valid code
// verifies at most once.
type Verifier struct {
	store CodeStore
	log   *slog.Logger
}

func NewVerifier(store CodeStore, log *slog.Logger) *Verifier {
	return &Verifier{store: store, log: log}
}

// Verify reports whether code is the current pending code for identifier and
// consumes it on success. The operation fails closed: backend errors are
// logged and collapsed into false, never propagated to the caller.
func (v *Verifier) Verify(ctx context.Context, identifier, code string) bool {
	start := time.Now()
	defer func() {
		verifyDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if identifier == "" || code == "" {
		return false
	}

	ok, err := v.store.ConsumeIfMatch(ctx, identifier, code)
	if err != nil {
		// Callers only see false; the log line is the one place an operator
		// can tell a backend outage apart from a wrong code.
		v.log.Error("code verification failed on backend",
			slog.String("identifier", identifier), logger.Err(err))
		return false
	}
	return ok
}
