package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okulsoft/dersplan/internal/solver"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the solve pipeline.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	solveTotal      *prometheus.CounterVec
	solveDuration   prometheus.Histogram
	modelVariables  prometheus.Gauge
	modelConstrs    prometheus.Gauge
	objectiveValue  prometheus.Gauge
	placementsTotal prometheus.Gauge
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	solveTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solve_runs_total",
		Help: "Solve runs by outcome",
	}, []string{"outcome"})

	solveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "solve_duration_seconds",
		Help:    "Wall-clock duration of solve runs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	modelVariables := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solve_model_variables",
		Help: "Decision and auxiliary variables in the last model",
	})

	modelConstrs := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solve_model_constraints",
		Help: "Constraints in the last model",
	})

	objectiveValue := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solve_objective_value",
		Help: "Objective value of the last feasible solve",
	})

	placementsTotal := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_placements",
		Help: "Placements written by the last solve",
	})

	registry.MustRegister(requestDuration, requestTotal, solveTotal, solveDuration,
		modelVariables, modelConstrs, objectiveValue, placementsTotal)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		solveTotal:      solveTotal,
		solveDuration:   solveDuration,
		modelVariables:  modelVariables,
		modelConstrs:    modelConstrs,
		objectiveValue:  objectiveValue,
		placementsTotal: placementsTotal,
	}
}

// Handler exposes the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one request sample.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	s.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(method, path, code).Inc()
}

// ObserveSolve records one finished solve run.
func (s *MetricsService) ObserveSolve(outcome string, duration time.Duration, stats solver.Stats) {
	s.solveTotal.WithLabelValues(outcome).Inc()
	s.solveDuration.Observe(duration.Seconds())
	if stats.Variables > 0 {
		s.modelVariables.Set(float64(stats.Variables))
		s.modelConstrs.Set(float64(stats.Constraints))
		s.objectiveValue.Set(float64(stats.Cost))
		s.placementsTotal.Set(float64(stats.Placements))
	}
}
