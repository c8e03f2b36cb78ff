// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

/*
Package metrics provides Prometheus metrics collection and export for observability.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - Feed serving (cold vs refresh pages, catalog wrap-arounds)
  - Similarity ranking latency and batch size
  - Read events (recorded vs duplicate)
  - Keyword extraction outcomes and latency
  - Profile store failures
  - Audit pipeline writes and drops
  - Circuit breaker state transitions

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Usage Example

	start := time.Now()
	ranked, err := engine.Rank(profile, articles)
	metrics.RecordRanking(len(articles), time.Since(start))

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels use the chi route pattern, not the raw URL path
  - User and article identifiers are never used as labels
  - Extraction results are limited to predefined constants
*/
package metrics
