package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the registration flow.
type Metrics struct {
	ParticipantsCreated prometheus.Counter
	CodesIssued         prometheus.Counter
	VerifyTotal         *prometheus.CounterVec
	NotifyFailures      *prometheus.CounterVec
}

// New creates and registers all collectors against the given registerer.
// Tests pass a throwaway prometheus.NewRegistry to avoid duplicate
// registration panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ParticipantsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_participants_created_total",
			Help: "Total number of participant records created",
		}),
		CodesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_otp_issued_total",
			Help: "Total number of one-time codes issued",
		}),
		VerifyTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_otp_verify_total",
			Help: "Verification attempts partitioned by outcome",
		}, []string{"result"}),
		NotifyFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_notify_failures_total",
			Help: "Notification dispatch failures partitioned by channel",
		}, []string{"channel"}),
	}
}
