package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ImporterMetrics tracks library scans and per-asset import outcomes.
type ImporterMetrics struct {
	registry *prometheus.Registry

	scanTotal   *prometheus.CounterVec
	importTotal *prometheus.CounterVec
}

func NewImporterMetrics(service string) *ImporterMetrics {
	registry := prometheus.NewRegistry()

	scanTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shotsort",
			Subsystem: "importer",
			Name:      "scan_total",
			Help:      "Library scans by result.",
		},
		[]string{"service", "result"},
	)
	importTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shotsort",
			Subsystem: "importer",
			Name:      "asset_import_total",
			Help:      "Assets handled per scan by outcome (imported, skipped, error).",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(scanTotal, importTotal)

	return &ImporterMetrics{
		registry:    registry,
		scanTotal:   scanTotal,
		importTotal: importTotal,
	}
}

func (m *ImporterMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ImporterMetrics) ObserveScan(service string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.scanTotal.WithLabelValues(service, result).Inc()
}

func (m *ImporterMetrics) ObserveAsset(service, outcome string) {
	m.importTotal.WithLabelValues(service, outcome).Inc()
}
