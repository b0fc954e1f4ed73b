// Package metrics provides the centralized Prometheus metrics registry
// for the pager. All metrics are defined in their respective packages
// (pager, view) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the pager.
// All metrics are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Load Cycle Metrics (pkg/pager):
//   - pager_requests_total{endpoint, status} (Counter): Total requests by endpoint path and HTTP status
//   - pager_request_duration_seconds{endpoint} (Histogram): Load-cycle duration by endpoint path
//   - pager_errors_total{class} (Counter): Errors by class (client, server, network, parse)
//   - pager_loads_superseded_total (Counter): Loads discarded because a newer load started
//
// Document Metrics (pkg/view):
//   - pager_region_updates_total{op} (Counter): Region mutations by operation
//     (rows, pagination_replace, pagination_insert, pagination_remove)
//
// Example Prometheus Queries:
//
//   # Load Error Rate
//   rate(pager_errors_total[5m]) / rate(pager_requests_total[5m])
//
//   # P95 Load Latency
//   histogram_quantile(0.95, rate(pager_request_duration_seconds_bucket[5m]))
//
//   # Supersede Rate (users outpacing the backend)
//   rate(pager_loads_superseded_total[5m])
//
//   # Pagination Churn
//   sum by (op) (rate(pager_region_updates_total{op=~"pagination.*"}[5m]))
