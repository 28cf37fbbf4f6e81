package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session lifecycle metrics
	sessionsOpenedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_sessions_opened_total",
		Help: "Total number of checkout sessions opened",
	})

	sessionsClosedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_sessions_closed_total",
		Help: "Total number of checkout sessions closed",
	})

	// Handshake metrics
	handshakeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_handshake_failures_total",
		Help: "Total secure-fields handshake failures",
	}, []string{
		"stage", // init, init_send, tokenize, tokenize_send
	})

	// Submission metrics
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Total gateway submissions by reconciled outcome",
	}, []string{
		"outcome", // success, declined, system_error
		"code",    // gateway response code, empty on success
	})

	gatewaySubmitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "checkout_gateway_submit_duration_seconds",
		Help: "Duration of gateway submission calls",
		// 100ms to 30s covers typical gateway latency
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	// Channel metrics
	inboundMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_channel_inbound_messages_total",
		Help: "Inbound messages from the secure capture surface",
	}, []string{
		"action",
		"accepted", // true, or false for origin-rejected/unattached
	})
)

// RecordSessionOpened increments the opened-sessions counter
func RecordSessionOpened() {
	sessionsOpenedTotal.Inc()
}

// RecordSessionClosed increments the closed-sessions counter
func RecordSessionClosed() {
	sessionsClosedTotal.Inc()
}

// RecordHandshakeFailure records a handshake failure at the given stage
func RecordHandshakeFailure(stage string) {
	handshakeFailuresTotal.WithLabelValues(stage).Inc()
}

// RecordSubmission records a reconciled submission outcome
func RecordSubmission(outcome, code string) {
	submissionsTotal.WithLabelValues(outcome, code).Inc()
}

// ObserveGatewaySubmit records the duration of one gateway call
func ObserveGatewaySubmit(d time.Duration) {
	gatewaySubmitDuration.Observe(d.Seconds())
}

// RecordInboundMessage records an inbound channel message and whether it
// was accepted for delivery
func RecordInboundMessage(action string, accepted bool) {
	label := "false"
	if accepted {
		label = "true"
	}
	inboundMessagesTotal.WithLabelValues(action, label).Inc()
}
