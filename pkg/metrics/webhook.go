package metrics

import "github.com/prometheus/client_golang/prometheus"

// Webhook result labels.
const (
	ResultReconciled       = "reconciled"
	ResultDuplicate        = "duplicate"
	ResultSignatureInvalid = "signature_invalid"
	ResultParseFailure     = "parse_failure"
	ResultUnknownOrder     = "unknown_order"
	ResultError            = "error"
)

var (
	WebhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storepay",
			Subsystem: "webhook",
			Name:      "notifications_total",
			Help:      "Payment notifications by provider and terminal result",
		},
		[]string{"provider", "result"},
	)

	ReconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storepay",
			Subsystem: "webhook",
			Name:      "reconcile_duration_seconds",
			Help:      "Reconciliation transaction latency in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"provider"},
	)
)

func init() {
	Registry.MustRegister(WebhooksTotal, ReconcileDuration)
}
