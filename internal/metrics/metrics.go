// Package metrics provides Prometheus metrics for the build catalog service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service
type Metrics struct {
	// Query metrics
	QueryParsesTotal *prometheus.CounterVec
	MatchesTotal     prometheus.Counter
	MatchResults     prometheus.Counter
	MatchDuration    prometheus.Histogram

	// Catalog metrics
	CatalogBuilds prometheus.Gauge

	// Feed metrics
	FeedIngestTotal  *prometheus.CounterVec
	FeedPollDuration *prometheus.HistogramVec

	// Server metrics
	ServerStartTime     time.Time
	ServerUptimeSeconds prometheus.Gauge
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		ServerStartTime: time.Now(),
	}

	// Query metrics
	m.QueryParsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildcat_query_parse_total",
			Help: "Total number of version search query parses by outcome",
		},
		[]string{"outcome"},
	)

	m.MatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buildcat_match_total",
			Help: "Total number of catalog match operations",
		},
	)

	m.MatchResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buildcat_match_results_total",
			Help: "Total number of builds returned by match operations",
		},
	)

	m.MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "buildcat_match_duration_seconds",
			Help:    "Catalog match duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Catalog metrics
	m.CatalogBuilds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "buildcat_catalog_builds",
			Help: "Number of builds currently in the catalog",
		},
	)

	// Feed metrics
	m.FeedIngestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildcat_feed_ingest_total",
			Help: "Total number of feed ingest attempts by feed and outcome",
		},
		[]string{"feed", "outcome"},
	)

	m.FeedPollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buildcat_feed_poll_duration_seconds",
			Help:    "Feed poll duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"feed"},
	)

	// Server metrics
	m.ServerUptimeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "buildcat_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
	)

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime periodically updates the server uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.ServerUptimeSeconds.Set(time.Since(m.ServerStartTime).Seconds())
	}
}

// RecordQueryParse records a query parse attempt with its outcome
func (m *Metrics) RecordQueryParse(outcome string) {
	if m == nil {
		return
	}
	m.QueryParsesTotal.WithLabelValues(outcome).Inc()
}

// RecordMatch records a catalog match operation
func (m *Metrics) RecordMatch(results int, duration time.Duration) {
	if m == nil {
		return
	}
	m.MatchesTotal.Inc()
	m.MatchResults.Add(float64(results))
	m.MatchDuration.Observe(duration.Seconds())
}

// RecordFeedIngest records a feed ingest attempt
func (m *Metrics) RecordFeedIngest(feed string, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.FeedIngestTotal.WithLabelValues(feed, outcome).Inc()
	m.FeedPollDuration.WithLabelValues(feed).Observe(duration.Seconds())
}

// SetCatalogSize updates the catalog size gauge
func (m *Metrics) SetCatalogSize(count int) {
	if m == nil {
		return
	}
	m.CatalogBuilds.Set(float64(count))
}
