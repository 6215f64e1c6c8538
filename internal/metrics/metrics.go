package metrics

import (
	"net/http"
	"time"

	"rcinit/internal/api"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects supervisor metrics on its own prometheus registry.
//
// A nil *Recorder is valid and records nothing, so components can be built
// without metrics in tests and CLI one-shots.
type Recorder struct {
	registry *prometheus.Registry

	resolutionDuration *prometheus.HistogramVec
	resolutionErrors   *prometheus.CounterVec
	transitions        *prometheus.CounterVec
	startDuration      *prometheus.HistogramVec
	recoveryAttempts   *prometheus.CounterVec
	bulkOperations     *prometheus.CounterVec
	reloads            *prometheus.CounterVec
	servicesRunning    prometheus.Gauge
}

// NewRecorder creates a Recorder and registers all collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		resolutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rcinit_resolution_duration_seconds",
				Help:    "Time taken to resolve the start order of a run-level.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"runlevel"},
		),
		resolutionErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rcinit_resolution_errors_total",
				Help: "Number of failed run-level resolutions.",
			},
			[]string{"runlevel"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rcinit_service_transitions_total",
				Help: "Number of service state transitions by target state.",
			},
			[]string{"service", "state"},
		),
		startDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rcinit_service_start_duration_seconds",
				Help:    "Time taken by service start actions.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		),
		recoveryAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rcinit_service_recovery_attempts_total",
				Help: "Number of automatic restart attempts after a failed start.",
			},
			[]string{"service"},
		),
		bulkOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rcinit_bulk_operations_total",
				Help: "Number of run-level switches and shutdowns by result.",
			},
			[]string{"operation", "result"},
		),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rcinit_registry_reloads_total",
				Help: "Number of service registry reloads by result.",
			},
			[]string{"result"},
		),
		servicesRunning: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rcinit_services_running",
				Help: "Number of services currently running.",
			},
		),
	}

	r.registry.MustRegister(
		r.resolutionDuration,
		r.resolutionErrors,
		r.transitions,
		r.startDuration,
		r.recoveryAttempts,
		r.bulkOperations,
		r.reloads,
		r.servicesRunning,
	)
	return r
}

// Registry returns the underlying prometheus registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler returns an HTTP handler exposing the recorded metrics.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveResolution records the duration and outcome of a run-level resolution.
func (r *Recorder) ObserveResolution(runLevel string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.resolutionDuration.WithLabelValues(runLevel).Observe(d.Seconds())
	if err != nil {
		r.resolutionErrors.WithLabelValues(runLevel).Inc()
	}
}

// ObserveTransition records a service entering state.
func (r *Recorder) ObserveTransition(service, from, to string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(service, to).Inc()
	running := api.StateRunning.String()
	switch {
	case to == running && from != running:
		r.servicesRunning.Inc()
	case from == running && to != running:
		r.servicesRunning.Dec()
	}
}

// ObserveStart records how long a start action took.
func (r *Recorder) ObserveStart(service string, d time.Duration) {
	if r == nil {
		return
	}
	r.startDuration.WithLabelValues(service).Observe(d.Seconds())
}

// IncRecoveryAttempt counts a scheduled automatic restart.
func (r *Recorder) IncRecoveryAttempt(service string) {
	if r == nil {
		return
	}
	r.recoveryAttempts.WithLabelValues(service).Inc()
}

// ObserveBulk records the result of a bulk operation.
func (r *Recorder) ObserveBulk(operation string, failed bool) {
	if r == nil {
		return
	}
	result := "success"
	if failed {
		result = "failure"
	}
	r.bulkOperations.WithLabelValues(operation, result).Inc()
}

// ObserveReload records a registry reload triggered by a file change.
func (r *Recorder) ObserveReload(err error) {
	if r == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	r.reloads.WithLabelValues(result).Inc()
}
