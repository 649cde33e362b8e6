package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics tracks the classification side of the pipeline.
type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec
	outcomeTotal    *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shotsort",
			Subsystem: "worker",
			Name:      "screenshot_process_total",
			Help:      "Total processed screenshots by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shotsort",
			Subsystem: "worker",
			Name:      "screenshot_process_duration_seconds",
			Help:      "Screenshot processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "shotsort",
			Subsystem: "worker",
			Name:      "screenshot_process_in_flight",
			Help:      "Number of in-flight screenshot classification tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shotsort",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between import and classification start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	outcomeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shotsort",
			Subsystem: "worker",
			Name:      "classify_outcome_total",
			Help:      "Classification completions by path (remote, fallback, gate_skip).",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, queueLag, outcomeTotal)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		queueLag:        queueLag,
		outcomeTotal:    outcomeTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartScreenshot() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishScreenshot(service string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) ObserveOutcome(service, outcome string) {
	m.outcomeTotal.WithLabelValues(service, outcome).Inc()
}
