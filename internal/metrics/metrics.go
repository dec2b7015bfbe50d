// Package metrics provides Prometheus metrics for newspulse.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedFetchTotal counts source fetches by outcome.
	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newspulse",
			Name:      "feed_fetch_total",
			Help:      "Total number of feed fetches",
		},
		[]string{"source", "status"},
	)

	// FeedFetchDuration measures single source fetch latency.
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newspulse",
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of feed fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// ArticlesFetched observes how many articles each aggregation batch produced.
	ArticlesFetched = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "newspulse",
			Name:      "aggregation_batch_size",
			Help:      "Distribution of articles per aggregation batch",
			Buckets:   []float64{0, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// CacheRequests counts article cache lookups.
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newspulse",
			Name:      "cache_requests_total",
			Help:      "Article cache lookups by result",
		},
		[]string{"backend", "result"},
	)

	// EnrichTotal counts enrichments by classifier and outcome.
	EnrichTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newspulse",
			Name:      "enrich_total",
			Help:      "Article enrichments by classifier",
		},
		[]string{"classifier", "status"},
	)

	// GeoLookups counts IP lookups by provider and outcome.
	GeoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newspulse",
			Name:      "geo_lookups_total",
			Help:      "Geolocation lookups by provider",
		},
		[]string{"provider", "status"},
	)

	// TranslationCacheRequests counts translation cache lookups.
	TranslationCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newspulse",
			Name:      "translation_cache_requests_total",
			Help:      "Translation cache lookups by result",
		},
		[]string{"result"},
	)

	// TranslationsSwept counts expired translation records removed.
	TranslationsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "newspulse",
			Name:      "translations_swept_total",
			Help:      "Expired translation records deleted by the sweep",
		},
	)
)
