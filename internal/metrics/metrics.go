// Package metrics exposes booking counters and latencies to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records booking activity.
type Collector struct {
	bookings         *prometheus.CounterVec
	bookingFailures  *prometheus.CounterVec
	logins           *prometheus.CounterVec
	reconcileIssues  *prometheus.GaugeVec
	requestDuration  *prometheus.HistogramVec
	requestsByStatus *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_appointments_booked_total",
			Help: "Appointments created, by whether the slot state was persisted.",
		}, []string{"slot_persisted"}),
		bookingFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_appointments_failed_total",
			Help: "Failed booking attempts by error kind.",
		}, []string{"kind"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_sign_ins_total",
			Help: "Successful logins and signups by role.",
		}, []string{"role"}),
		reconcileIssues: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "booking_reconcile_issues",
			Help: "Issues found by the last slot reconciliation, by kind.",
		}, []string{"kind"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "booking_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		requestsByStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.bookings,
		c.bookingFailures,
		c.logins,
		c.reconcileIssues,
		c.requestDuration,
		c.requestsByStatus,
	)
	return c
}

// RecordBooking counts a successful booking.
func (c *Collector) RecordBooking(slotPersisted bool) {
	c.bookings.WithLabelValues(strconv.FormatBool(slotPersisted)).Inc()
}

// RecordBookingFailure counts a failed booking.
func (c *Collector) RecordBookingFailure(kind string) {
	if kind == "" {
		kind = "unexpected"
	}
	c.bookingFailures.WithLabelValues(kind).Inc()
}

// RecordSignIn counts a login or signup.
func (c *Collector) RecordSignIn(role string) {
	c.logins.WithLabelValues(role).Inc()
}

// SetReconcileIssues replaces the issue gauges with counts. Kinds absent from
// counts are reset to zero.
func (c *Collector) SetReconcileIssues(counts map[string]int, kinds []string) {
	for _, kind := range kinds {
		c.reconcileIssues.WithLabelValues(kind).Set(float64(counts[kind]))
	}
}

// RecordRequest observes one HTTP exchange.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	c.requestsByStatus.WithLabelValues(strconv.Itoa(status)).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
