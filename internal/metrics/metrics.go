// Package metrics provides Prometheus metrics for the snapshot diff
// engine. Hosts embedding the library scrape these alongside their own
// collectors via the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Comparison metrics
	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapdiff_comparisons_total",
			Help: "Total number of entity snapshot comparisons",
		},
		[]string{"result"}, // "changed" or "unchanged"
	)

	CatalogDiffsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapdiff_catalog_diffs_total",
			Help: "Total number of full catalog diff runs",
		},
	)

	// Screenshot pipeline metrics
	ScreenshotDecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapdiff_screenshot_decode_failures_total",
			Help: "Screenshots that could not be decoded for perceptual comparison",
		},
	)

	ScreenshotDecodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapdiff_screenshot_decode_duration_seconds",
			Help:    "Time taken to decode and downsample one screenshot",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// Text diff metrics
	TextDiffFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapdiff_textdiff_fallbacks_total",
			Help: "Text diffs that exceeded the LCS table ceiling and used the coarse fallback",
		},
	)
)
