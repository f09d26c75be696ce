// Package metrics defines the Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConversationStepsTotal counts processed conversation answers by step
	// and outcome (accepted, rejected).
	ConversationStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selector_conversation_steps_total",
			Help: "Total conversation step answers processed",
		},
		[]string{"step", "outcome"},
	)

	// ConversationsCompletedTotal counts conversations that reached the
	// terminal step.
	ConversationsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "selector_conversations_completed_total",
			Help: "Total conversations that collected all answers",
		},
	)

	// SizingComputationsTotal counts sizing runs by application category.
	SizingComputationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selector_sizing_computations_total",
			Help: "Total sizing computations performed",
		},
		[]string{"application"},
	)

	// QuotesIssuedTotal counts assembled quotes by match category of the
	// top-ranked product (perfect, over_specified, higher_capacity, none).
	QuotesIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selector_quotes_issued_total",
			Help: "Total quotes issued",
		},
		[]string{"top_match"},
	)

	// QuoteDispatchTotal counts quote email deliveries by result.
	QuoteDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selector_quote_dispatch_total",
			Help: "Total quote email dispatch attempts",
		},
		[]string{"result"},
	)

	// CatalogRefreshTotal counts catalog reloads by result.
	CatalogRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selector_catalog_refresh_total",
			Help: "Total catalog refresh attempts",
		},
		[]string{"result"},
	)

	// CatalogProducts reports the size of the active catalog snapshot.
	CatalogProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "selector_catalog_products",
			Help: "Number of products in the active catalog snapshot",
		},
	)

	// HTTPRequestDuration observes request latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "selector_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)
