package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the HTTP surface, the
// lifecycles and the background jobs. All methods are safe on a nil receiver.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	DonationTransitions *prometheus.CounterVec
	RequestTransitions  *prometheus.CounterVec

	InventoryUnits  *prometheus.GaugeVec
	InventoryClamps prometheus.Counter

	NotificationFailures *prometheus.CounterVec
	JobRuns              *prometheus.CounterVec
}

// New registers every collector with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_http_requests_total",
			Help: "HTTP requests by method, route template and status code",
		}, []string{"method", "route", "status"}),

		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bloodbank_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route template",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),

		DonationTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_donation_transitions_total",
			Help: "Donation status transitions by target status",
		}, []string{"status"}),

		RequestTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_request_transitions_total",
			Help: "Blood request status transitions by target status",
		}, []string{"status"}),

		InventoryUnits: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bloodbank_inventory_units",
			Help: "Units on hand per blood type as of the last ledger write",
		}, []string{"blood_type"}),

		InventoryClamps: f.NewCounter(prometheus.CounterOpts{
			Name: "bloodbank_inventory_clamped_adjustments_total",
			Help: "Inventory adjustments that would have gone negative and were clamped at zero",
		}),

		NotificationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_notification_failures_total",
			Help: "Notification sends that failed and were swallowed, by kind",
		}, []string{"kind"}),

		JobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_job_runs_total",
			Help: "Background job runs by job name and outcome",
		}, []string{"job", "outcome"}),
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) IncDonationTransition(status string) {
	if m != nil {
		m.DonationTransitions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncRequestTransition(status string) {
	if m != nil {
		m.RequestTransitions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) SetInventoryUnits(bloodType string, units int32) {
	if m != nil {
		m.InventoryUnits.WithLabelValues(bloodType).Set(float64(units))
	}
}

func (m *Metrics) IncInventoryClamp() {
	if m != nil {
		m.InventoryClamps.Inc()
	}
}

func (m *Metrics) IncNotificationFailure(kind string) {
	if m != nil {
		m.NotificationFailures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncJobRun(job string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.JobRuns.WithLabelValues(job, outcome).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
