package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RequestLatency       *prometheus.HistogramVec
	RegistrationsCreated prometheus.Counter
	PaymentsVerified     prometheus.Counter
	PaymentsRejected     prometheus.Counter
	TeamsCreated         prometheus.Counter
	PostsCreated         prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on the given registerer. Tests pass a fresh
// registry so fixtures do not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "felicity_http_request_duration_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"method", "status"}),
		RegistrationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "felicity_registrations_created_total",
			Help: "Total number of event registrations created",
		}),
		PaymentsVerified: factory.NewCounter(prometheus.CounterOpts{
			Name: "felicity_payments_verified_total",
			Help: "Total number of payments confirmed or manually verified",
		}),
		PaymentsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "felicity_payments_rejected_total",
			Help: "Total number of payments marked failed",
		}),
		TeamsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "felicity_teams_created_total",
			Help: "Total number of teams created",
		}),
		PostsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "felicity_forum_posts_created_total",
			Help: "Total number of forum posts created",
		}),
	}
}

// statusRecorder captures the downstream status for the latency label.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Latency observes per-request latency labeled by method and status class.
func (m *Metrics) Latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.RequestLatency.WithLabelValues(r.Method, statusClass(rec.status)).
			Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	})
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
