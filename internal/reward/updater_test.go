package reward

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jadenfix/DF-sub000/internal/storage/models"
	"github.com/jadenfix/DF-sub000/internal/storage/sqlite"
)

func newTestDB(t *testing.T) *sqlite.Client {
	t.Helper()

	db, err := sqlite.NewClient(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.InitSchema())
	return db
}

func seedFeedback(t *testing.T, db *sqlite.Client, n int, createdBase time.Time) []string {
	t.Helper()

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		a := &models.Analysis{
			ID:        uuid.New().String(),
			SessionID: "sess",
			Prompt:    "prompt",
			Answer:    "answer",
			CreatedAt: createdBase,
		}
		require.NoError(t, db.InsertAnalysis(a))

		f := &models.Feedback{
			ID:         uuid.New().String(),
			AnalysisID: a.ID,
			Upvote:     true,
			Comment:    "nice",
			CreatedAt:  createdBase.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, db.InsertFeedback(f))
		ids = append(ids, f.ID)
	}
	return ids
}

func TestUpdaterUsesDefaultsWithoutStoredConfig(t *testing.T) {
	db := newTestDB(t)
	seedFeedback(t, db, 1, time.Now())

	u := NewUpdater(db, Weights{Accuracy: 2, Helpfulness: 1, Latency: -1})

	report, err := u.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 0, report.Failed)

	pairs, err := db.GetRecentFeedback(1)
	require.NoError(t, err)
	require.NotNil(t, pairs[0].Feedback.RewardScore)
	// upvote + comment, zero latency: 2*1 + 1*1 + (-1)*0
	assert.Equal(t, 3.0, *pairs[0].Feedback.RewardScore)
}

func TestUpdaterUsesStoredConfig(t *testing.T) {
	db := newTestDB(t)
	seedFeedback(t, db, 1, time.Now())

	_, err := db.UpsertRewardConfig(4, 0.5, 0)
	require.NoError(t, err)

	u := NewUpdater(db, Weights{Accuracy: 2, Helpfulness: 1, Latency: -1})

	_, err = u.Run(context.Background(), 10)
	require.NoError(t, err)

	pairs, err := db.GetRecentFeedback(1)
	require.NoError(t, err)
	require.NotNil(t, pairs[0].Feedback.RewardScore)
	assert.Equal(t, 4.5, *pairs[0].Feedback.RewardScore)
}

func TestUpdaterRespectsLimitAndRecency(t *testing.T) {
	db := newTestDB(t)
	ids := seedFeedback(t, db, 5, time.Now())

	u := NewUpdater(db, Weights{Accuracy: 1})

	report, err := u.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 2, report.Updated)

	pairs, err := db.GetRecentFeedback(5)
	require.NoError(t, err)
	require.Len(t, pairs, 5)

	scored := map[string]bool{}
	for _, p := range pairs {
		if p.Feedback.RewardScore != nil {
			scored[p.Feedback.ID] = true
		}
	}

	// Only the two most recent got touched.
	assert.Len(t, scored, 2)
	assert.True(t, scored[ids[4]])
	assert.True(t, scored[ids[3]])
}

func TestUpdaterDefaultLimit(t *testing.T) {
	db := newTestDB(t)
	seedFeedback(t, db, 3, time.Now())

	u := NewUpdater(db, Weights{Accuracy: 1})

	report, err := u.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Updated)
}

func TestUpdaterEmptyBatch(t *testing.T) {
	db := newTestDB(t)

	u := NewUpdater(db, Weights{Accuracy: 1})

	report, err := u.Run(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
}
