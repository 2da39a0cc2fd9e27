package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects scan and HTTP metrics on its own registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	scansTotal      *prometheus.CounterVec
	instrumentsRows *prometheus.CounterVec
	scanDuration    prometheus.Histogram
	fetchDuration   *prometheus.HistogramVec
	lastTotalScore  *prometheus.GaugeVec
	httpRequests    *prometheus.CounterVec
}

// New creates a recorder with a fresh registry
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		scansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swingscan_scans_total",
				Help: "Total number of scans by outcome",
			},
			[]string{"outcome"},
		),
		instrumentsRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swingscan_rows_total",
				Help: "Scan result rows by status",
			},
			[]string{"status"},
		),
		scanDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "swingscan_scan_duration_seconds",
				Help:    "Wall time of a full universe scan",
				Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swingscan_fetch_duration_seconds",
				Help:    "Duration of history fetches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		lastTotalScore: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "swingscan_last_total_score",
				Help: "Total score from the most recent scan",
			},
			[]string{"symbol"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swingscan_http_requests_total",
				Help: "HTTP requests served by route and status class",
			},
			[]string{"route", "method", "class"},
		),
	}
}

// RecordScan records one finished scan
func (r *Recorder) RecordScan(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.scansTotal.WithLabelValues(outcome).Inc()
	r.scanDuration.Observe(d.Seconds())
}

// RecordRow records one result row
func (r *Recorder) RecordRow(status string, symbol string, total float64) {
	if r == nil {
		return
	}
	r.instrumentsRows.WithLabelValues(status).Inc()
	r.lastTotalScore.WithLabelValues(symbol).Set(total)
}

// RecordFetch records a history fetch latency
func (r *Recorder) RecordFetch(result string, d time.Duration) {
	if r == nil {
		return
	}
	r.fetchDuration.WithLabelValues(result).Observe(d.Seconds())
}

// RecordHTTP records a served request
func (r *Recorder) RecordHTTP(route, method string, status int) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, statusClass(status)).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
