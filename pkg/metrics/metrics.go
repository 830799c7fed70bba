package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: "winddash",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0, 32.0},
		},
		[]string{"verb", "path", "code"},
	)

	upstreamFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "upstream_fetches_total",
			Subsystem: "winddash",
			Help:      "Upstream data fetches by source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	staleRefreshes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:      "stale_refreshes_total",
			Subsystem: "winddash",
			Help:      "Dashboard refreshes discarded because a newer one started.",
		},
	)

	liveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:      "sessions",
			Subsystem: "winddash",
			Help:      "Dashboard sessions held in memory.",
		},
	)
)

// Outcomes for ObserveUpstream.
const (
	OutcomeOK     = "ok"
	OutcomeCached = "cached"
	OutcomeError  = "error"
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		upstreamFetches,
		staleRefreshes,
		liveSessions,
	)
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

// ObserveUpstream counts one fetch from an upstream source.
func ObserveUpstream(source, outcome string) {
	upstreamFetches.With(prometheus.Labels{
		"source":  source,
		"outcome": outcome,
	}).Inc()
}

func ObserveStaleRefresh() {
	staleRefreshes.Inc()
}

func SetSessions(n int) {
	liveSessions.Set(float64(n))
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// LatencyHandler observes the latency of every request by route template.
func LatencyHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		verb := r.Method
		path := ""
		if r.URL != nil {
			path = r.URL.Path
		}
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		// Defer metric observing. Any panics in next are reported as 500 errors
		// and then re-thrown.
		defer func() {
			if err := recover(); err != nil {
				ObserveRequestLatency(verb, path, "500", time.Since(t).Seconds())
				panic(err)
			}
			ObserveRequestLatency(verb, path, strconv.Itoa(rec.code), time.Since(t).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}
