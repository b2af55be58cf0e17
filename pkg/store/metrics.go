package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	backendRedis  = "redis"
	backendSQLite = "sqlite"
)

// StoreWrites tracks sink writes by backend and outcome
var StoreWrites = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fda_store_writes_total",
		Help: "Total number of result sink writes",
	},
	[]string{"backend", "result"}, // "redis"/"sqlite", "ok"/"error"
)

func recordWrite(backend string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreWrites.WithLabelValues(backend, result).Inc()
}
