package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// ReviewsSubmitted counts review submissions by outcome
	// (created, updated, rejected).
	ReviewsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handicapper_reviews_submitted_total",
			Help: "Review submissions by outcome",
		},
		[]string{"outcome"},
	)

	PurchasesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handicapper_purchases_completed_total",
			Help: "Completed purchases by product type",
		},
		[]string{"product_type"},
	)

	PushesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handicapper_push_notifications_total",
			Help: "Push notification deliveries by provider and result",
		},
		[]string{"provider", "result"},
	)

	AnalyticsEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handicapper_analytics_events_total",
			Help: "Analytics events recorded by name and result",
		},
		[]string{"name", "result"},
	)

	ChatMessagesDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "handicapper_chat_messages_delivered_total",
			Help: "Chat messages handed to live websocket connections",
		},
	)
)

const (
	OutcomeCreated  = "created"
	OutcomeUpdated  = "updated"
	OutcomeRejected = "rejected"

	ResultSuccess = "success"
	ResultFailure = "failure"
)
