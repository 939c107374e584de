// Package metrics holds Prometheus instruments used across the API. All
// collectors are registered with the global registry, so mounting
// promhttp.Handler() on /metrics is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Submissions counts public submissions by form and outcome
	// (accepted, invalid, rate_limited, failed; subscribe reports
	// subscribed, resubscribed or already_subscribed instead of accepted).
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uxdj_public_submissions_total",
			Help: "Public form submissions by form and outcome.",
		}, []string{"form", "outcome"})

	// RateLimited counts requests rejected by a rate limiter.
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uxdj_rate_limited_total",
			Help: "Requests rejected by a rate limiter.",
		}, []string{"limiter"})

	// ImageFallbacks counts article images replaced by the placeholder.
	ImageFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uxdj_image_fallbacks_total",
			Help: "Article images replaced by the deterministic placeholder, by reason.",
		}, []string{"reason"})

	// SlugCollisions counts slug candidates that were already taken.
	SlugCollisions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "uxdj_slug_collisions_total",
			Help: "Article creations whose first slug candidate was already taken.",
		})

	// HTTPRequests observes request latency by route pattern and status.
	HTTPRequests = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uxdj_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		Submissions,
		RateLimited,
		ImageFallbacks,
		SlugCollisions,
		HTTPRequests,
	)
}
