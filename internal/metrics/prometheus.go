package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dreamforge_analysis_total",
			Help: "Total number of image analyses processed",
		},
		[]string{"status"},
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dreamforge_analysis_duration_seconds",
			Help:    "Vision model call duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	MockResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dreamforge_mock_responses_total",
			Help: "Responses served by the mock generators instead of a model",
		},
		[]string{"service"},
	)

	FeedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dreamforge_feedback_total",
			Help: "Feedback submissions persisted, by vote direction",
		},
		[]string{"vote"},
	)

	FeedbackDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dreamforge_feedback_dropped_total",
			Help: "Feedback submissions accepted but not persisted (bad analysis reference)",
		},
	)

	RewardUpdateBatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dreamforge_reward_update_batches_total",
			Help: "Reward updater batch runs",
		},
	)

	RewardUpdatesApplied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dreamforge_reward_updates_applied_total",
			Help: "Feedback rows whose reward score was recomputed",
		},
	)

	ChatTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dreamforge_chat_total",
			Help: "Playground chat completions",
		},
		[]string{"status"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dreamforge_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dreamforge_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)
)

func Init() {
	prometheus.MustRegister(AnalysisTotal)
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(MockResponses)
	prometheus.MustRegister(FeedbackTotal)
	prometheus.MustRegister(FeedbackDropped)
	prometheus.MustRegister(RewardUpdateBatches)
	prometheus.MustRegister(RewardUpdatesApplied)
	prometheus.MustRegister(ChatTotal)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
