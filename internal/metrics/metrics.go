// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DeliberationsTotal counts finished deliberations by outcome state.
	DeliberationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sanhedrin_deliberations_total",
		Help: "Deliberations finished, labeled by terminal state.",
	}, []string{"outcome"})

	// ActiveDeliberations tracks deliberations currently pending or running.
	ActiveDeliberations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sanhedrin_active_deliberations",
		Help: "Deliberations currently pending or in progress.",
	})

	// VerdictsTotal counts collected verdicts by decision value.
	VerdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sanhedrin_verdicts_total",
		Help: "Valid verdicts collected, labeled by decision.",
	}, []string{"decision"})

	// JurorFailuresTotal counts jurors that produced no verdict, by reason.
	JurorFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sanhedrin_juror_failures_total",
		Help: "Jurors that produced no verdict, labeled by non-response reason.",
	}, []string{"reason"})

	// DispatchDuration observes how long panel dispatch takes end to end.
	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sanhedrin_dispatch_duration_seconds",
		Help:    "Panel dispatch duration from fan-out to finalization.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// HTTPRequestDuration observes request latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sanhedrin_http_request_duration_seconds",
		Help:    "HTTP request latency, labeled by route and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sanhedrin_rate_limited_total",
		Help: "Requests rejected with 429 by the rate limiter.",
	})
)
