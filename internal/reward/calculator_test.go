package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jadenfix/DF-sub000/internal/storage/models"
)

func TestComputeUpvoteWithComment(t *testing.T) {
	f := models.Feedback{Upvote: true, Comment: "nice"}
	a := models.Analysis{}
	w := Weights{Accuracy: 2, Helpfulness: 1, Latency: -1}

	// accuracy=1, helpfulness=1, latency=0 -> 2*1 + 1*1 + (-1)*0
	assert.Equal(t, 3.0, Compute(f, a, w))
}

func TestComputeDownvoteNoComment(t *testing.T) {
	f := models.Feedback{Upvote: false}
	a := models.Analysis{}
	w := Weights{Accuracy: 2, Helpfulness: 1, Latency: -1}

	assert.Equal(t, 0.0, Compute(f, a, w))
}

func TestComputeDeterministic(t *testing.T) {
	f := models.Feedback{Upvote: true, Comment: "detailed thoughts"}
	a := models.Analysis{LatencyMS: 2500}
	w := Weights{Accuracy: 1.5, Helpfulness: -0.5, Latency: 3}

	first := Compute(f, a, w)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Compute(f, a, w))
	}
}

func TestComputeLatencySignal(t *testing.T) {
	f := models.Feedback{}
	w := Weights{Latency: -1}

	// 2.5s out of the 10s scale.
	assert.InDelta(t, -0.25, Compute(f, models.Analysis{LatencyMS: 2500}, w), 1e-9)

	// Clamped at the scale ceiling.
	assert.Equal(t, -1.0, Compute(f, models.Analysis{LatencyMS: 60000}, w))

	// Untracked latency contributes nothing.
	assert.Equal(t, 0.0, Compute(f, models.Analysis{}, w))
}

func TestComputeNegativeWeights(t *testing.T) {
	f := models.Feedback{Upvote: true, Comment: "x"}
	a := models.Analysis{}
	w := Weights{Accuracy: -10, Helpfulness: 10, Latency: 0}

	assert.Equal(t, 0.0, Compute(f, a, w))
}
