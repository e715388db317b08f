// Package metrics registers the registry's Prometheus instrumentation:
// catalog size, queue depths, rate-limit rejections, and promotion events.
// Collectors are package-level vars registered via promauto against the
// default registry, exposed on /metrics by internal/api's router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skillregistry",
		Name:      "catalog_size",
		Help:      "Number of skills currently in the catalog.",
	})

	EnrichmentQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skillregistry",
		Subsystem: "enrichment",
		Name:      "queue_depth",
		Help:      "Number of enrichment jobs currently tracked, any status.",
	})

	AnalysisQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skillregistry",
		Subsystem: "analysis",
		Name:      "queue_depth",
		Help:      "Number of analysis jobs currently tracked, any status.",
	})

	JobsCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skillregistry",
		Name:      "jobs_completed_total",
		Help:      "Completed jobs by queue and terminal status.",
	}, []string{"queue", "status"})

	RateLimitRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skillregistry",
		Subsystem: "ratelimit",
		Name:      "rejections_total",
		Help:      "Install requests refused by the sliding-window ledger.",
	})

	PromotionEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skillregistry",
		Subsystem: "promotion",
		Name:      "events_total",
		Help:      "Analysis promotion outcomes: promoted (stronger-or-equal model displayed) or archived (weaker model kept in history only).",
	}, []string{"outcome"})

	RetentionSweptTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skillregistry",
		Subsystem: "retention",
		Name:      "swept_total",
		Help:      "Terminal jobs and rate-limit entries removed per sweep target.",
	}, []string{"target"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skillregistry",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and status class.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)
