// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Feed Serving Metrics
	FeedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of feed pages served",
		},
		[]string{"mode"}, // "cold", "refresh"
	)

	FeedCatalogExhaustions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_catalog_exhaustions_total",
			Help: "Total number of times the served-article set wrapped around",
		},
	)

	// Ranking Metrics
	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rank_duration_seconds",
			Help:    "Duration of similarity ranking passes in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	RankedArticles = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranked_articles",
			Help:    "Number of articles scored per ranking pass",
			Buckets: []float64{5, 10, 15, 25, 50, 100, 250, 500},
		},
	)

	// Engagement Metrics
	ReadsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reads_recorded_total",
			Help: "Total number of read events received",
		},
		[]string{"outcome"}, // "recorded", "duplicate"
	)

	// Keyword Extraction Metrics
	ExtractionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyword_extraction_requests_total",
			Help: "Total number of keyword extraction attempts",
		},
		[]string{"result"}, // "success", "failure", "rejected", "empty"
	)

	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "keyword_extraction_duration_seconds",
			Help:    "Duration of keyword extraction calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Profile Store Metrics
	ProfileStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_store_errors_total",
			Help: "Total number of profile store failures",
		},
		[]string{"operation"}, // "get", "put"
	)

	// Audit Metrics
	AuditEventsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_events_written_total",
			Help: "Total number of audit events written",
		},
	)

	AuditEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_events_dropped_total",
			Help: "Total number of audit events dropped due to a full buffer",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordAPIRequest records a completed HTTP request
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRanking records one similarity ranking pass
func RecordRanking(articles int, duration time.Duration) {
	RankDuration.Observe(duration.Seconds())
	RankedArticles.Observe(float64(articles))
}

// RecordExtraction records the outcome of one keyword extraction attempt
func RecordExtraction(result string, duration time.Duration) {
	ExtractionRequests.WithLabelValues(result).Inc()
	ExtractionDuration.Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
