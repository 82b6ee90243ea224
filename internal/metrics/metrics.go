package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blogspace_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Votes
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blogspace_votes_total",
			Help: "Votes applied, by entity and resulting action",
		},
		[]string{"entity", "action"}, // entity: post|comment; action: added|removed|switched
	)

	// Recommendations
	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "blogspace_recommendation_duration_seconds",
			Help:    "End-to-end duration of building recommendations, classifier included",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	RecommendationsServed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "blogspace_recommendations_returned",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	ScoringFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blogspace_scoring_failures_total",
			Help: "Posts skipped because scoring them failed",
		},
	)

	// Classifier
	ClassifierRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blogspace_classifier_requests_total",
			Help: "Category classifier calls by strategy and outcome",
		},
		[]string{"classifier", "outcome"}, // outcome: ok|error|fallback|cache_hit
	)
)

// VoteAction names the label value for a vote transition.
func VoteAction(removed, added bool) string {
	switch {
	case removed && added:
		return "switched"
	case removed:
		return "removed"
	default:
		return "added"
	}
}
