// Package metrics holds the prometheus collectors for rendering and export.
// Collectors register on the default registry; the server exposes them at
// /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "watermark"

// Render kinds.
const (
	KindPreview = "preview"
	KindExport  = "export"
)

// Export results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	// RendersTotal counts frames drawn, by kind.
	RendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "renders_total",
		Help:      "Frames rendered, by kind (preview or export).",
	}, []string{"kind"})

	// ExportsTotal counts finished export jobs.
	ExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Export jobs, by format and result.",
	}, []string{"format", "result"})

	// ExportDuration observes wall time per export job.
	ExportDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "export_duration_seconds",
		Help:      "Time spent producing an export, by format.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"format"})

	// HitTestsTotal counts pointer hit tests, by outcome.
	HitTestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hit_tests_total",
		Help:      "Pointer hit tests, by matched handle.",
	}, []string{"handle"})

	// ImagesLoaded counts decode attempts at the upload boundary.
	ImagesLoaded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_loaded_total",
		Help:      "Input images decoded, by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(RendersTotal, ExportsTotal, ExportDuration, HitTestsTotal, ImagesLoaded)
}

// ObserveExport records one finished export job.
func ObserveExport(format string, started time.Time, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	ExportsTotal.WithLabelValues(format, result).Inc()
	ExportDuration.WithLabelValues(format).Observe(time.Since(started).Seconds())
}
