package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProbeAttemptsTotal tracks readiness probe attempts per service
	ProbeAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orchestrator_probe_attempts_total",
			Help: "Total number of readiness probe attempts",
		},
		[]string{"service"},
	)

	// ServiceReady tracks whether a supervised service is ready (1) or not (0)
	ServiceReady = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "orchestrator_service_ready",
			Help: "Whether a supervised service is ready",
		},
		[]string{"service"},
	)

	// APICallsTotal tracks analytics API calls per operation
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orchestrator_api_calls_total",
			Help: "Total number of analytics API calls",
		},
		[]string{"op"},
	)

	// APIRetriesTotal tracks retried analytics API calls per operation
	APIRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orchestrator_api_retries_total",
			Help: "Total number of retried analytics API calls",
		},
		[]string{"op"},
	)

	// BatchesTotal tracks processed batches
	BatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orchestrator_batches_total",
			Help: "Total number of bulk batches processed",
		},
	)

	// BatchFailuresTotal tracks batches that exhausted their retries
	BatchFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orchestrator_batch_failures_total",
			Help: "Total number of batches failed after retry exhaustion",
		},
	)

	// RecordsCollectedTotal tracks collected analytics records
	RecordsCollectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orchestrator_records_collected_total",
			Help: "Total number of analytics records collected",
		},
	)

	// InvalidAddressesTotal tracks locally rejected addresses
	InvalidAddressesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orchestrator_invalid_addresses_total",
			Help: "Total number of addresses rejected by local validation",
		},
	)

	// CacheHitsTotal tracks analytics cache hits
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orchestrator_cache_hits_total",
			Help: "Total number of analytics cache hits",
		},
	)
)
