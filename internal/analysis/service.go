package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jadenfix/DF-sub000/internal/metrics"
	"github.com/jadenfix/DF-sub000/internal/storage/models"
	"github.com/jadenfix/DF-sub000/internal/storage/sqlite"
	"github.com/jadenfix/DF-sub000/internal/vlm"
	"github.com/jadenfix/DF-sub000/pkg/logger"
	"github.com/jadenfix/DF-sub000/pkg/utils"
)

// ErrGuestLimitExceeded is returned when an anonymous session has used up its
// analysis quota.
var ErrGuestLimitExceeded = errors.New("guest analysis limit exceeded")

// Cache is the response/usage cache the service needs; the redis client
// satisfies it, tests substitute an in-memory double.
type Cache interface {
	GetAnalysisResponse(ctx context.Context, key string, response interface{}) (bool, error)
	SetAnalysisResponse(ctx context.Context, key string, response interface{}, ttl time.Duration) error
	IncrGuestUsage(ctx context.Context, sessionID string, window time.Duration) (int64, error)
	GetGuestUsage(ctx context.Context, sessionID string) (int64, error)
}

type Service struct {
	db          *sqlite.Client
	cache       Cache
	vlmClient   *vlm.Client
	guestMax    int
	guestWindow time.Duration
	cacheTTL    time.Duration
}

type Request struct {
	Prompt      string
	ImageBase64 string
	ImageURL    string
	UserID      string
	SessionID   string
}

type Response struct {
	ID        string `json:"id"`
	Answer    string `json:"answer"`
	LatencyMS int    `json:"latency_ms"`
	Mock      bool   `json:"mock"`
	Cached    bool   `json:"cached"`
}

// NewService wires the analyze flow. cache may be nil; the service then
// counts guest usage from stored rows and skips response caching.
func NewService(db *sqlite.Client, cache Cache, vlmClient *vlm.Client, guestMax, guestWindowSec, cacheTTLSec int) *Service {
	return &Service{
		db:          db,
		cache:       cache,
		vlmClient:   vlmClient,
		guestMax:    guestMax,
		guestWindow: time.Duration(guestWindowSec) * time.Second,
		cacheTTL:    time.Duration(cacheTTLSec) * time.Second,
	}
}

func (s *Service) Analyze(ctx context.Context, req Request) (*Response, error) {
	image := req.ImageURL
	if image == "" {
		image = req.ImageBase64
	}

	if req.UserID == "" {
		if err := s.checkGuestQuota(ctx, req.SessionID); err != nil {
			return nil, err
		}
	}

	cacheKey := utils.AnalysisCacheKey(req.Prompt, image)

	var cached Response
	if s.cache != nil {
		hit, err := s.cache.GetAnalysisResponse(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warn("Analysis cache lookup failed", zap.Error(err))
		}
		if hit {
			metrics.CacheHits.WithLabelValues("analysis").Inc()
			resp, err := s.record(req, cached.Answer, cached.Mock, 0, true)
			if err != nil {
				return nil, err
			}
			s.bumpGuestUsage(ctx, req)
			return resp, nil
		}
		metrics.CacheMisses.WithLabelValues("analysis").Inc()
	}

	start := time.Now()
	result, err := s.vlmClient.Analyze(ctx, req.Prompt, image)
	if err != nil {
		metrics.AnalysisTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("vision analysis failed: %w", err)
	}
	latencyMS := int(time.Since(start).Milliseconds())

	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	if result.Mock {
		metrics.MockResponses.WithLabelValues("vlm").Inc()
	}

	resp, err := s.record(req, result.Answer, result.Mock, latencyMS, false)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetAnalysisResponse(ctx, cacheKey, resp, s.cacheTTL); err != nil {
			logger.Warn("Failed to cache analysis response", zap.Error(err))
		}
	}

	s.bumpGuestUsage(ctx, req)

	return resp, nil
}

func (s *Service) bumpGuestUsage(ctx context.Context, req Request) {
	if req.UserID != "" || req.SessionID == "" || s.cache == nil {
		return
	}
	if _, err := s.cache.IncrGuestUsage(ctx, req.SessionID, s.guestWindow); err != nil {
		logger.Warn("Failed to bump guest usage counter", zap.Error(err))
	}
}

// record persists the analysis row and builds the response. Cached answers
// still create a row: usage history and the guest quota both count them.
func (s *Service) record(req Request, answer string, mock bool, latencyMS int, cached bool) (*Response, error) {
	image := req.ImageURL
	if image == "" {
		image = req.ImageBase64
	}

	a := &models.Analysis{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Prompt:    req.Prompt,
		Image:     image,
		Answer:    answer,
		Mock:      mock,
		LatencyMS: latencyMS,
		CreatedAt: time.Now(),
	}

	if err := s.db.InsertAnalysis(a); err != nil {
		return nil, fmt.Errorf("failed to persist analysis: %w", err)
	}

	metrics.AnalysisTotal.WithLabelValues("ok").Inc()

	logger.Info("Analysis recorded",
		zap.String("analysis_id", a.ID),
		zap.Int("latency_ms", latencyMS),
		zap.Bool("mock", mock),
		zap.Bool("cached", cached),
	)

	return &Response{
		ID:        a.ID,
		Answer:    answer,
		LatencyMS: latencyMS,
		Mock:      mock,
		Cached:    cached,
	}, nil
}

func (s *Service) checkGuestQuota(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		// No session to scope the quota to; let the IP rate limiter carry it.
		return nil
	}

	if s.cache != nil {
		count, err := s.cache.GetGuestUsage(ctx, sessionID)
		if err == nil {
			if count >= int64(s.guestMax) {
				return ErrGuestLimitExceeded
			}
			return nil
		}
		logger.Warn("Guest usage lookup failed, falling back to store", zap.Error(err))
	}

	count, err := s.db.CountAnalysesBySession(sessionID, time.Now().Add(-s.guestWindow))
	if err != nil {
		return fmt.Errorf("failed to count guest usage: %w", err)
	}
	if count >= s.guestMax {
		return ErrGuestLimitExceeded
	}
	return nil
}

func (s *Service) History(userID, sessionID string, limit int) ([]models.Analysis, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.db.ListAnalyses(userID, sessionID, limit)
}
