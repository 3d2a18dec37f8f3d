package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Resolutions    *prometheus.CounterVec
	CacheHits      prometheus.Counter
	APIErrors      prometheus.Counter
	RequestSeconds *prometheus.HistogramVec
	MarkersTracked prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Resolutions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocoding_resolutions_total",
			Help: "Total number of geocoding lookups by resulting status.",
		}, []string{"status"}),
		CacheHits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geocoding_cache_hits_total",
			Help: "Total number of resolutions answered from the marker's last geocoded address.",
		}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geocoding_provider_api_errors_total",
			Help: "Total number of lookups that did not produce a readable provider response.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geocoding_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		MarkersTracked: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "geocoding_markers_tracked",
			Help: "Current number of markers held in memory.",
		}),
	}
}
