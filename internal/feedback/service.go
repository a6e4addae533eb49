package feedback

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jadenfix/DF-sub000/internal/metrics"
	"github.com/jadenfix/DF-sub000/internal/storage/models"
	"github.com/jadenfix/DF-sub000/internal/storage/sqlite"
	"github.com/jadenfix/DF-sub000/pkg/logger"
)

type Service struct {
	db *sqlite.Client
}

func NewService(db *sqlite.Client) *Service {
	return &Service{db: db}
}

type Submission struct {
	AnalysisID string
	Upvote     bool
	Comment    string
}

// Submit records one feedback reaction. A malformed analysis id, or one that
// resolves to no stored analysis, is tolerated: the submission is accepted
// and dropped so stale playground state never surfaces an error to the demo.
// Persisted reports whether a row was actually written.
func (s *Service) Submit(sub Submission) (persisted bool, err error) {
	if _, err := uuid.Parse(sub.AnalysisID); err != nil {
		logger.Warn("Dropping feedback with malformed analysis id",
			zap.String("analysis_id", sub.AnalysisID),
		)
		metrics.FeedbackDropped.Inc()
		return false, nil
	}

	a, err := s.db.GetAnalysis(sub.AnalysisID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve analysis: %w", err)
	}
	if a == nil {
		logger.Warn("Dropping feedback for unknown analysis",
			zap.String("analysis_id", sub.AnalysisID),
		)
		metrics.FeedbackDropped.Inc()
		return false, nil
	}

	f := &models.Feedback{
		ID:         uuid.New().String(),
		AnalysisID: sub.AnalysisID,
		Upvote:     sub.Upvote,
		Comment:    sub.Comment,
		CreatedAt:  time.Now(),
	}

	if err := s.db.InsertFeedback(f); err != nil {
		return false, fmt.Errorf("failed to store feedback: %w", err)
	}

	vote := "down"
	if sub.Upvote {
		vote = "up"
	}
	metrics.FeedbackTotal.WithLabelValues(vote).Inc()

	return true, nil
}
