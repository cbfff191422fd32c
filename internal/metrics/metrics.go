// Package metrics exposes Prometheus collectors for the recompute cycle and HTTP API.
// All methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
)

const namespace = "climate_sentinel"

type Metrics struct {
	registry *prometheus.Registry

	recomputeRuns     *prometheus.CounterVec
	recomputeDuration prometheus.Histogram
	zoneScore         *prometheus.GaugeVec
	alertsCreated     *prometheus.CounterVec
	alertsDeactivated prometheus.Counter
	baselineFallbacks prometheus.Counter
	scoreCacheHits    prometheus.Counter
	scoreCacheMisses  prometheus.Counter
	breakerState      *prometheus.GaugeVec
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New registers every collector on a dedicated registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		recomputeRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recompute_runs_total",
			Help:      "Recompute cycles by result.",
		}, []string{"result"}),
		recomputeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_duration_seconds",
			Help:      "Duration of recompute cycles.",
			Buckets:   prometheus.DefBuckets,
		}),
		zoneScore: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "zone_res_score",
			Help:      "Latest Environmental Resilience Score per zone.",
		}, []string{"zone_id", "zone_name"}),
		alertsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_created_total",
			Help:      "Alerts created by severity.",
		}, []string{"severity"}),
		alertsDeactivated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_deactivated_total",
			Help:      "Alerts deactivated by the recompute cycle.",
		}),
		baselineFallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "baseline_fallbacks_total",
			Help:      "Cycles that used the default PM2.5 baseline.",
		}),
		scoreCacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_cache_hits_total",
			Help:      "Score reads served from the cache.",
		}),
		scoreCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_cache_misses_total",
			Help:      "Score reads that triggered a recompute.",
		}),
		breakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		}, []string{"target"}),
		httpRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Registry the registry backing Handler
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecomputeFinished records one cycle
func (m *Metrics) RecomputeFinished(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.recomputeRuns.WithLabelValues(result).Inc()
	m.recomputeDuration.Observe(d.Seconds())
}

// ZoneScore sets the latest score gauge of a zone
func (m *Metrics) ZoneScore(zoneID, zoneName string, score float64) {
	if m == nil {
		return
	}
	m.zoneScore.WithLabelValues(zoneID, zoneName).Set(score)
}

func (m *Metrics) AlertCreated(severity string) {
	if m == nil {
		return
	}
	m.alertsCreated.WithLabelValues(severity).Inc()
}

func (m *Metrics) AlertDeactivated() {
	if m == nil {
		return
	}
	m.alertsDeactivated.Inc()
}

func (m *Metrics) BaselineFallback() {
	if m == nil {
		return
	}
	m.baselineFallbacks.Inc()
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.scoreCacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.scoreCacheMisses.Inc()
}

// BreakerStateChanged mirrors a gobreaker transition into the state gauge
func (m *Metrics) BreakerStateChanged(target string, state gobreaker.State) {
	if m == nil {
		return
	}
	var v float64
	switch state {
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	}
	m.breakerState.WithLabelValues(target).Set(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler counts requests and observes latency under route
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
