package metrics

import "github.com/prometheus/client_golang/prometheus"

// Application Prometheus metrics.
var (
	ScrapePagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paperdesk",
			Name:      "scrape_pages_total",
			Help:      "Scholar result pages fetched, by outcome",
		},
		[]string{"outcome"}, // "ok" / "blocked" / "error"
	)

	ScrapeRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "paperdesk",
			Name:      "scrape_retries_total",
			Help:      "Backoff retries after a blocked scholar page",
		},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paperdesk",
			Name:      "search_cache_total",
			Help:      "Search result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	TopicGenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paperdesk",
			Name:      "topic_generation_duration_seconds",
			Help:      "Topic generation duration per stage",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"}, // "keywords" / "cluster" / "lda" / "total"
	)

	PDFExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paperdesk",
			Name:      "pdf_extractions_total",
			Help:      "PDF abstract extractions, by method that succeeded",
		},
		[]string{"method"}, // "pattern" / "structure" / "paragraph" / "none" / "error"
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paperdesk",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paperdesk",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)
)

// RegisterAppMetrics registers application metrics explicitly (no init()).
func RegisterAppMetrics() {
	prometheus.MustRegister(
		ScrapePagesTotal,
		ScrapeRetriesTotal,
		SearchCacheTotal,
		TopicGenerationDuration,
		PDFExtractionsTotal,
		EmbeddingCacheTotal,
		EmbeddingRequestsTotal,
	)
}
