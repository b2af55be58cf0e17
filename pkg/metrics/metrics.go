// Package metrics provides the Prometheus registry reference for the az-fda pipeline.
// All metrics are defined in their respective packages (client, pagination, label, store)
// to maintain modularity and avoid circular dependencies.
//
// The pipeline is a short-lived batch job, so instead of serving /metrics it can
// dump the registry to a node-exporter textfile at the end of a run.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the pipeline.
// All metrics are automatically registered via promauto in their respective
// packages, and WriteTextfile gathers from it.
var Registry = prometheus.DefaultRegisterer.(*prometheus.Registry)

// WriteTextfile writes every metric in Registry to path in the text
// exposition format. Missing parent directories are created.
func WriteTextfile(path string) error {
	return writeTextfile(path, Registry)
}

func writeTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return fmt.Errorf("metrics file path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - fda_requests_total{status} (Counter): Total requests by HTTP status (or "network_error")
//   - fda_request_duration_seconds (Histogram): Request duration
//   - fda_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Pagination Metrics (pkg/pagination):
//   - fda_pages_fetched_total (Counter): Result pages retrieved
//   - fda_records_fetched_total (Counter): Raw label records retrieved
//
// Extraction Metrics (pkg/label):
//   - fda_records_extracted_total (Counter): Records turned into rows
//
// Store Metrics (pkg/store):
//   - fda_store_writes_total{backend, result} (Counter): Result sink writes by backend (redis, sqlite) and outcome
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(fda_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(fda_request_duration_seconds_bucket[5m]))
//
//   # Records per page
//   fda_records_fetched_total / fda_pages_fetched_total
