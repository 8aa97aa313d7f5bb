package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_registrations_total",
			Help: "Total number of registration attempts by outcome.",
		},
		[]string{"service", "result"},
	)

	SignInsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_signins_total",
			Help: "Total number of sign-in attempts by outcome.",
		},
		[]string{"service", "result"},
	)

	EmailAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_email_attempts_total",
			Help: "Outbound email log entries by type and status.",
		},
		[]string{"service", "type", "status"},
	)

	AdminChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_admin_checks_total",
			Help: "Admin authorization decisions by the path that decided them.",
		},
		[]string{"service", "source"},
	)
)

var registerOnce sync.Once

// MustRegister binds the service label and registers every collector with
// the default registry. Later calls are no-ops.
func MustRegister(serviceName string) {
	registerOnce.Do(func() {
		labels := prometheus.Labels{"service": serviceName}
		HTTPRequestsTotal = HTTPRequestsTotal.MustCurryWith(labels)
		HTTPRequestDurationSeconds = HTTPRequestDurationSeconds.MustCurryWith(labels).(*prometheus.HistogramVec)
		RegistrationsTotal = RegistrationsTotal.MustCurryWith(labels)
		SignInsTotal = SignInsTotal.MustCurryWith(labels)
		EmailAttemptsTotal = EmailAttemptsTotal.MustCurryWith(labels)
		AdminChecksTotal = AdminChecksTotal.MustCurryWith(labels)

		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			RegistrationsTotal,
			SignInsTotal,
			EmailAttemptsTotal,
			AdminChecksTotal,
		)
	})
}

// The helpers below work before and after MustRegister; unregistered
// collectors simply are not exported.

func ObserveRegistration(result string) { with(RegistrationsTotal, result).Inc() }

func ObserveSignIn(result string) { with(SignInsTotal, result).Inc() }

func ObserveEmail(emailType, status string) { with(EmailAttemptsTotal, emailType, status).Inc() }

func ObserveAdminCheck(source string) { with(AdminChecksTotal, source).Inc() }

// with fills the service label when the vector has not been curried yet.
func with(vec *prometheus.CounterVec, values ...string) prometheus.Counter {
	c, err := vec.GetMetricWithLabelValues(values...)
	if err == nil {
		return c
	}
	return vec.WithLabelValues(append([]string{""}, values...)...)
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// HTTPMiddleware counts requests by route pattern, not raw path.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(rec.status)

		if c, err := HTTPRequestsTotal.GetMetricWithLabelValues(r.Method, path, status); err == nil {
			c.Inc()
		}
		if h, err := HTTPRequestDurationSeconds.GetMetricWithLabelValues(r.Method, path); err == nil {
			h.Observe(time.Since(start).Seconds())
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
