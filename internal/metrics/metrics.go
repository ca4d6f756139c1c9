package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipzone_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clipzone_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Clip lifecycle metrics
	ClipSubmissionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clipzone_clip_submissions_total",
			Help: "Total number of clips submitted",
		},
	)

	ModerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipzone_moderations_total",
			Help: "Total number of moderation decisions applied",
		},
		[]string{"status"},
	)

	ModerationConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clipzone_moderation_conflicts_total",
			Help: "Moderations rejected after losing a concurrent update race",
		},
	)

	// Settlement metrics
	CreditsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clipzone_credits_total",
			Help: "Total number of balance credits applied",
		},
	)

	CreditedAmountTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clipzone_credited_amount_total",
			Help: "Cumulative amount credited to clipper balances",
		},
	)

	// Media upload metrics
	MediaUploadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clipzone_media_uploads_total",
			Help: "Total number of clip media uploads",
		},
	)

	MediaUploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clipzone_media_upload_size_bytes",
			Help:    "Size of uploaded clip media in bytes",
			Buckets: prometheus.ExponentialBuckets(1024*1024, 2, 12), // 1MB to 2GB
		},
	)

	// Settlement notification metrics
	SettlementEventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clipzone_settlement_events_published_total",
			Help: "Settlement events published to the queue",
		},
	)

	WebhookDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipzone_webhook_deliveries_total",
			Help: "Settlement webhook delivery attempts",
		},
		[]string{"result"},
	)
)
