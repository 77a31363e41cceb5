package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpDurationBuckets       = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	capabilityDurationBuckets = []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 45, 60}
)

// Metrics holds the Prometheus instruments of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CapabilityCallsTotal *prometheus.CounterVec
	CapabilityDuration   *prometheus.HistogramVec

	ValidationVerdictsTotal *prometheus.CounterVec
	MediaProbesTotal        *prometheus.CounterVec

	WizardOutcomesTotal *prometheus.CounterVec
	ActiveSessions      prometheus.Gauge
}

// InitMetrics creates and registers all instruments on reg.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogstudio_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalogstudio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),

		CapabilityCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogstudio_capability_calls_total",
			Help: "Total number of language model calls.",
		}, []string{"operation", "provider", "outcome"}),
		CapabilityDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalogstudio_capability_duration_seconds",
			Help:    "Language model call duration in seconds.",
			Buckets: capabilityDurationBuckets,
		}, []string{"operation", "provider"}),

		ValidationVerdictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogstudio_validation_verdicts_total",
			Help: "Validation verdicts by branch.",
		}, []string{"branch", "passed"}),
		MediaProbesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogstudio_media_probes_total",
			Help: "Media analysis probes by outcome.",
		}, []string{"outcome"}),

		WizardOutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogstudio_wizard_outcomes_total",
			Help: "Per-field enhancement wizard outcomes.",
		}, []string{"status"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalogstudio_active_sessions",
			Help: "Enhancement sessions currently held in memory.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CapabilityCallsTotal,
		m.CapabilityDuration,
		m.ValidationVerdictsTotal,
		m.MediaProbesTotal,
		m.WizardOutcomesTotal,
		m.ActiveSessions,
	)
	return m
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, pathPattern string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
}

// RecordCapabilityCall records one language model call. Outcome is "ok" or
// the failure reason.
func (m *Metrics) RecordCapabilityCall(operation, provider, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.CapabilityCallsTotal.WithLabelValues(operation, provider, outcome).Inc()
	m.CapabilityDuration.WithLabelValues(operation, provider).Observe(duration.Seconds())
}

// RecordVerdict records a validation verdict for a dispatch branch.
func (m *Metrics) RecordVerdict(branch string, passed bool) {
	if m == nil {
		return
	}
	m.ValidationVerdictsTotal.WithLabelValues(branch, strconv.FormatBool(passed)).Inc()
}

// RecordMediaProbe records whether a media analysis produced data.
func (m *Metrics) RecordMediaProbe(outcome string) {
	if m == nil {
		return
	}
	m.MediaProbesTotal.WithLabelValues(outcome).Inc()
}

// RecordWizardOutcome records the summary status of one field.
func (m *Metrics) RecordWizardOutcome(status string) {
	if m == nil {
		return
	}
	m.WizardOutcomesTotal.WithLabelValues(status).Inc()
}

// SetActiveSessions sets the number of live sessions.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// MetricsMiddleware records request metrics labelled with chi's route
// pattern rather than the raw path.
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.RecordHTTPRequest(r.Method, routePattern(r), sw.status, time.Since(start))
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	pattern := strings.TrimSuffix(strings.Join(rctx.RoutePatterns, ""), "/*")
	if pattern == "" {
		return r.URL.Path
	}
	return pattern
}

type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}
