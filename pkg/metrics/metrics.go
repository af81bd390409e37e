package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ecotrack"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	reportTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_transitions_total",
			Help:      "Report status transitions by origin and target status",
		},
		[]string{"from", "to"},
	)

	reportTransitionConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_transition_conflicts_total",
			Help:      "Transitions rejected because another writer changed the status first",
		},
		[]string{"to"},
	)

	scannerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overdue_scanner_runs_total",
			Help:      "Completed overdue scanner sweeps",
		},
	)

	scannerRevertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overdue_scanner_reverted_total",
			Help:      "Reports reverted to pending after missing their deadline",
		},
	)

	scannerFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overdue_scanner_failures_total",
			Help:      "Overdue reports the scanner failed to revert",
		},
	)

	scannerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overdue_scanner_duration_seconds",
			Help:      "Overdue scanner sweep duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Outbound notifications by template and result",
		},
		[]string{"template", "result"},
	)

	eventsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Domain events dropped because the notifier buffer was full",
		},
	)
)

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func IncInFlight() { httpRequestsInFlight.Inc() }
func DecInFlight() { httpRequestsInFlight.Dec() }

func RecordTransition(from, to string) {
	reportTransitionsTotal.WithLabelValues(from, to).Inc()
}

func RecordTransitionConflict(to string) {
	reportTransitionConflicts.WithLabelValues(to).Inc()
}

func RecordScannerRun(reverted, failed int, duration time.Duration) {
	scannerRunsTotal.Inc()
	scannerRevertedTotal.Add(float64(reverted))
	scannerFailuresTotal.Add(float64(failed))
	scannerDuration.Observe(duration.Seconds())
}

func RecordNotification(template string, success bool) {
	result := "sent"
	if !success {
		result = "failed"
	}
	notificationsTotal.WithLabelValues(template, result).Inc()
}

func RecordDroppedEvent() {
	eventsDroppedTotal.Inc()
}
