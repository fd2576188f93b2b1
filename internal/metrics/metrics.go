package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConversionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stillcast_conversions_started_total",
		Help: "Total number of encoding jobs started",
	})

	ConversionsSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stillcast_conversions_succeeded_total",
		Help: "Total number of encoding jobs that produced an artifact",
	})

	ConversionsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stillcast_conversions_failed_total",
		Help: "Total number of encoding jobs that failed",
	})

	ConversionsTimedOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stillcast_conversions_timed_out_total",
		Help: "Total number of encoding jobs killed by the watchdog",
	})

	EncodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stillcast_encode_duration_seconds",
		Help:    "Encoding job duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	UploadsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stillcast_uploads_rejected_total",
		Help: "Total number of rejected upload requests",
	}, []string{"reason"})

	DownloadsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stillcast_downloads_served_total",
		Help: "Total number of artifacts streamed to clients",
	})

	RegistryEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stillcast_registry_entries",
		Help: "Current number of live download registry entries",
	})

	RegistryEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stillcast_registry_evictions_total",
		Help: "Total number of registry entries evicted by TTL or lazy checks",
	})
)
