package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecommendRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "movierec_recommend_requests_total",
		Help: "Total recommendation requests",
	})
	EmptyRecommendations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "movierec_empty_recommendations_total",
		Help: "Recommendation requests answered with an empty list, by reason",
	}, []string{"reason"})
	RecommendDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "movierec_recommend_duration_seconds",
		Help:    "Recommendation computation duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	RatingsAppended = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "movierec_ratings_appended_total",
		Help: "Total ratings durably appended to the incremental log",
	})
	AppendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "movierec_append_errors_total",
		Help: "Total failed durable appends",
	})
	UsersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "movierec_users_created_total",
		Help: "Total user ids allocated for onboarding",
	})
)

func init() {
	prometheus.MustRegister(
		RecommendRequests,
		EmptyRecommendations,
		RecommendDuration,
		RatingsAppended,
		AppendErrors,
		UsersCreated,
	)
}

// ObserveRecommendDuration records one recommendation computation.
func ObserveRecommendDuration(start time.Time) {
	RecommendDuration.Observe(time.Since(start).Seconds())
}
