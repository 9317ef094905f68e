package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal counts enforcement report fetches by outcome
	// (ok, transport, status, malformed).
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recallviz_fetches_total",
			Help: "Total number of openFDA enforcement fetches",
		},
		[]string{"outcome"},
	)

	// FetchDuration tracks how long a fetch took, failures included.
	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recallviz_fetch_duration_seconds",
			Help:    "openFDA fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RecordsLoaded is the size of the dataset currently cached.
	RecordsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recallviz_records_loaded",
			Help: "Number of recall records in the cached dataset",
		},
	)

	// CategoryRecords counts cached records per reason category after
	// categorization. Uncategorized reasons are reported as "Other".
	CategoryRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recallviz_category_records",
			Help: "Number of cached records per recall reason category",
		},
		[]string{"category"},
	)

	// CacheLoads counts dataset loads, split by whether a fetch was needed.
	CacheLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recallviz_cache_loads_total",
			Help: "Total number of dataset cache loads",
		},
		[]string{"result"},
	)
)
