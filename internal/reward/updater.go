package reward

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jadenfix/DF-sub000/internal/storage/sqlite"
	"github.com/jadenfix/DF-sub000/pkg/logger"
)

// Updater recomputes stale reward scores for recent feedback.
type Updater struct {
	db       *sqlite.Client
	defaults Weights
}

// Report summarizes one batch run. Per-record failures do not abort the
// batch; they are counted here instead.
type Report struct {
	Processed int
	Updated   int
	Failed    int
}

func NewUpdater(db *sqlite.Client, defaults Weights) *Updater {
	return &Updater{
		db:       db,
		defaults: defaults,
	}
}

// Run refreshes the reward score of up to limit of the most recent feedback
// records. The weights are snapshotted once before the loop, so a concurrent
// config write takes effect on the next run, never mid-batch.
func (u *Updater) Run(ctx context.Context, limit int) (*Report, error) {
	if limit <= 0 {
		limit = 100
	}

	weights := u.defaults
	cfg, err := u.db.GetRewardConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load reward config: %w", err)
	}
	if cfg != nil {
		weights = Weights{
			Accuracy:    cfg.Accuracy,
			Helpfulness: cfg.Helpfulness,
			Latency:     cfg.Latency,
		}
	}

	pairs, err := u.db.GetRecentFeedback(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent feedback: %w", err)
	}

	report := &Report{}
	for _, pair := range pairs {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		report.Processed++

		score := Compute(pair.Feedback, pair.Analysis, weights)
		if err := u.db.UpdateFeedbackReward(pair.Feedback.ID, score); err != nil {
			report.Failed++
			logger.Warn("Failed to update reward score",
				zap.String("feedback_id", pair.Feedback.ID),
				zap.Error(err),
			)
			continue
		}
		report.Updated++
	}

	logger.Info("Reward update batch complete",
		zap.Int("processed", report.Processed),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
	)

	return report, nil
}
