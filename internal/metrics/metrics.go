// Package metrics provides Prometheus metrics for the vendor registration service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendorgrid_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vendorgrid_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Registration metrics
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendorgrid_registrations_total",
			Help: "Total number of registration form submissions",
		},
		[]string{"status"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendorgrid_validation_failures_total",
			Help: "Total number of rejected form fields",
		},
		[]string{"form", "field"},
	)

	// Spreadsheet metrics
	SheetParseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vendorgrid_sheet_parse_duration_seconds",
			Help:    "Time taken to parse uploaded spreadsheets",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"format", "status"},
	)

	SheetRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vendorgrid_sheet_rows",
			Help:    "Number of data rows per uploaded spreadsheet",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	UploadsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vendorgrid_uploads_active",
			Help: "Number of spreadsheets currently being parsed",
		},
	)

	// Session metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vendorgrid_sessions_active",
			Help: "Number of open display sessions",
		},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vendorgrid_sessions_expired_total",
			Help: "Total number of display sessions removed by the sweeper",
		},
	)

	// Grid metrics
	GridOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendorgrid_grid_operations_total",
			Help: "Total number of grid operations by type and outcome",
		},
		[]string{"operation", "status"},
	)
)

// Status label values.
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordGridOp counts one grid operation.
func RecordGridOp(op string, err error) {
	GridOperations.WithLabelValues(op, statusOf(err)).Inc()
}

// RecordSheetParse records the parse duration and row count of an upload.
func RecordSheetParse(format string, rows int, duration time.Duration, err error) {
	SheetParseDuration.WithLabelValues(format, statusOf(err)).Observe(duration.Seconds())
	if err == nil {
		SheetRows.Observe(float64(rows))
	}
}

// RecordValidationFailure counts one rejected field.
func RecordValidationFailure(form, field string) {
	ValidationFailures.WithLabelValues(form, field).Inc()
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func statusOf(err error) string {
	if err == nil {
		return StatusOK
	}
	return StatusError
}
