package reward

import "github.com/jadenfix/DF-sub000/internal/storage/models"

// Weights are the admin-tunable coefficients of the scoring rule.
type Weights struct {
	Accuracy    float64
	Helpfulness float64
	Latency     float64
}

// MinWeight and MaxWeight bound every admin-supplied weight.
const (
	MinWeight = -10.0
	MaxWeight = 10.0
)

// latencyScaleMS maps a model-call latency onto [0, 1]: an instant response
// scores 0, ten seconds or slower scores 1.
const latencyScaleMS = 10000.0

// Compute returns the scalar reward for one feedback/analysis pair.
//
// The signals are deliberately simple proxies: an upvote stands in for
// accuracy, a non-empty comment for helpfulness, and the measured call
// latency (normalized) for the latency term. Deterministic, no side effects.
func Compute(f models.Feedback, a models.Analysis, w Weights) float64 {
	accuracy := 0.0
	if f.Upvote {
		accuracy = 1.0
	}

	helpfulness := 0.0
	if f.Comment != "" {
		helpfulness = 1.0
	}

	latency := float64(a.LatencyMS) / latencyScaleMS
	if latency > 1.0 {
		latency = 1.0
	}
	if latency < 0 {
		latency = 0
	}

	return w.Accuracy*accuracy + w.Helpfulness*helpfulness + w.Latency*latency
}
