// Package store publishes finished analyses to optional result sinks.
//
// Two backends are provided:
//
//   - RedisStore keeps the latest run per (query, analysis kind) and each run
//     by ID, both with a TTL, for dashboards or other consumers.
//   - SQLiteStore appends every run and its summary rows to a local archive.
//
// Sinks are written after the analysis completes. Nothing here is consulted
// before retrieval: every run fetches the full result set from openFDA.
//
// # Key Format
//
//	azfda:latest:<kind>:<query url>
//	azfda:run:<run id>
//
// # Metrics
//
//   - fda_store_writes_total{backend, result}: writes by backend (redis, sqlite) and outcome (ok, error)
package store
