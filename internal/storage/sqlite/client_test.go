package sqlite

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jadenfix/DF-sub000/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.InitSchema())
	return c
}

func insertAnalysis(t *testing.T, c *Client, sessionID string, createdAt time.Time) *models.Analysis {
	t.Helper()

	a := &models.Analysis{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Prompt:    "what is in this image",
		Image:     "aGVsbG8=",
		Answer:    "a test fixture",
		LatencyMS: 1200,
		CreatedAt: createdAt,
	}
	require.NoError(t, c.InsertAnalysis(a))
	return a
}

func TestGetAnalysisMissing(t *testing.T) {
	c := newTestClient(t)

	a, err := c.GetAnalysis(uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestAnalysisRoundTrip(t *testing.T) {
	c := newTestClient(t)
	inserted := insertAnalysis(t, c, "sess-1", time.Now())

	got, err := c.GetAnalysis(inserted.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, inserted.ID, got.ID)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, inserted.Answer, got.Answer)
	assert.Equal(t, 1200, got.LatencyMS)
}

func TestCountAnalysesBySessionWindow(t *testing.T) {
	c := newTestClient(t)
	now := time.Now()

	insertAnalysis(t, c, "sess-1", now.Add(-2*time.Hour))
	insertAnalysis(t, c, "sess-1", now)
	insertAnalysis(t, c, "sess-2", now)

	count, err := c.CountAnalysesBySession("sess-1", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = c.CountAnalysesBySession("sess-1", now.Add(-3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRewardConfigNilBeforeFirstWrite(t *testing.T) {
	c := newTestClient(t)

	cfg, err := c.GetRewardConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestRewardConfigUpsertIdempotent(t *testing.T) {
	c := newTestClient(t)

	first, err := c.UpsertRewardConfig(2, 1, -1)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := c.UpsertRewardConfig(2, 1, -1)
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, 2.0, second.Accuracy)
	assert.Equal(t, 1.0, second.Helpfulness)
	assert.Equal(t, -1.0, second.Latency)
}

func TestRewardConfigUpsertOverwrites(t *testing.T) {
	c := newTestClient(t)

	_, err := c.UpsertRewardConfig(2, 1, -1)
	require.NoError(t, err)

	updated, err := c.UpsertRewardConfig(5, -3, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.Accuracy)
	assert.Equal(t, -3.0, updated.Helpfulness)
	assert.Equal(t, 0.5, updated.Latency)

	// Still a single logical row.
	stored, err := c.GetRewardConfig()
	require.NoError(t, err)
	assert.Equal(t, 5.0, stored.Accuracy)
}

func TestGetRecentFeedbackOrderAndLimit(t *testing.T) {
	c := newTestClient(t)
	now := time.Now()

	var feedbackIDs []string
	for i := 0; i < 5; i++ {
		a := insertAnalysis(t, c, "sess-1", now)
		f := &models.Feedback{
			ID:         uuid.New().String(),
			AnalysisID: a.ID,
			Upvote:     i%2 == 0,
			CreatedAt:  now.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, c.InsertFeedback(f))
		feedbackIDs = append(feedbackIDs, f.ID)
	}

	pairs, err := c.GetRecentFeedback(3)
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	// Newest first.
	assert.Equal(t, feedbackIDs[4], pairs[0].Feedback.ID)
	assert.Equal(t, feedbackIDs[3], pairs[1].Feedback.ID)
	assert.Equal(t, feedbackIDs[2], pairs[2].Feedback.ID)

	// Joined analysis comes back with the latency the calculator needs.
	assert.Equal(t, 1200, pairs[0].Analysis.LatencyMS)
}

func TestUpdateFeedbackReward(t *testing.T) {
	c := newTestClient(t)
	a := insertAnalysis(t, c, "sess-1", time.Now())

	f := &models.Feedback{
		ID:         uuid.New().String(),
		AnalysisID: a.ID,
		Upvote:     true,
		Comment:    "great",
		CreatedAt:  time.Now(),
	}
	require.NoError(t, c.InsertFeedback(f))

	require.NoError(t, c.UpdateFeedbackReward(f.ID, 3.0))

	pairs, err := c.GetRecentFeedback(1)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.NotNil(t, pairs[0].Feedback.RewardScore)
	assert.Equal(t, 3.0, *pairs[0].Feedback.RewardScore)
}
