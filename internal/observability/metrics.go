package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PhotoUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "talia",
		Name:      "photo_uploads_total",
		Help:      "Photo uploads by validation result",
	}, []string{"result"})

	Recommendations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "talia",
		Name:      "recommendations_total",
		Help:      "Completed recommendation runs by outcome",
	}, []string{"outcome"})

	StageTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "talia",
		Name:      "stage_transitions_total",
		Help:      "Workflow stage transitions by target stage",
	}, []string{"to"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "talia",
		Name:      "sessions_active",
		Help:      "Number of live color picker sessions",
	})

	LivePhotos = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "talia",
		Name:      "photo_references_live",
		Help:      "Number of unreleased photo references",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "talia",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
