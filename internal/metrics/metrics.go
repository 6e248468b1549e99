package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP запросы (секунды)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	StageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stage_transitions_total",
			Help: "Project stage transitions applied",
		},
		[]string{"from", "to"},
	)

	QuoteDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_decisions_total",
			Help: "Quote accept/reject/revoke decisions",
		},
		[]string{"decision", "actor"}, // actor: operator, customer
	)

	InvoicesIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoices_issued_total",
			Help: "Invoices issued by type",
		},
		[]string{"type"},
	)

	// Выставлено в SAR
	InvoicedAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invoiced_amount_sar_total",
			Help: "Total amount invoiced in SAR",
		},
	)

	BookingsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_submitted_total",
			Help: "Public booking submissions",
		},
		[]string{"result"}, // accepted, invalid, rate_limited
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Operations notifications by channel and outcome",
		},
		[]string{"channel", "status"},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementStageTransition(from, to string) {
	StageTransitions.WithLabelValues(from, to).Inc()
}

func IncrementQuoteDecision(decision, actor string) {
	QuoteDecisions.WithLabelValues(decision, actor).Inc()
}

func RecordInvoiceIssued(invoiceType string, amount int64) {
	InvoicesIssued.WithLabelValues(invoiceType).Inc()
	InvoicedAmount.Add(float64(amount))
}

func IncrementBooking(result string) {
	BookingsSubmitted.WithLabelValues(result).Inc()
}

func IncrementNotification(channel, status string) {
	NotificationsSent.WithLabelValues(channel, status).Inc()
}
