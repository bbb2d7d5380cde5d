package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediascraper",
		Name:      "provider_requests_total",
		Help:      "Total search requests sent to metadata providers by provider, language and outcome.",
	}, []string{"provider", "language", "outcome"})

	SearchResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediascraper",
		Name:      "search_results_total",
		Help:      "Total completed searches by provider and final status.",
	}, []string{"provider", "status"})

	LanguageReordersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediascraper",
		Name:      "language_reorders_total",
		Help:      "Searches where the English ranking replaced the native ordering.",
	}, []string{"provider"})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mediascraper",
		Name:      "cache_hits_total",
		Help:      "Total number of provider response cache hits.",
	})

	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mediascraper",
		Name:      "cache_misses_total",
		Help:      "Total number of provider response cache misses.",
	})

	ProviderUp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mediascraper",
		Name:      "provider_up",
		Help:      "Whether the last health check reached the provider (1) or not (0).",
	}, []string{"provider"})

	ArtworkDownloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediascraper",
		Name:      "artwork_downloads_total",
		Help:      "Artwork downloads by type and result.",
	}, []string{"type", "result"})
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		ProviderRequestsTotal,
		SearchResultsTotal,
		LanguageReordersTotal,
		CacheHitsTotal,
		CacheMissesTotal,
		ProviderUp,
		ArtworkDownloadsTotal,
	)
}
