package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/jadenfix/DF-sub000/internal/storage/models"
	"github.com/jadenfix/DF-sub000/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		session_id TEXT,
		prompt TEXT NOT NULL,
		image TEXT,
		answer TEXT,
		mock INTEGER DEFAULT 0,
		latency_ms INTEGER DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_user ON analyses(user_id);
	CREATE INDEX IF NOT EXISTS idx_analyses_session ON analyses(session_id);
	CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);

	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		analysis_id TEXT NOT NULL,
		upvote INTEGER NOT NULL,
		comment TEXT,
		reward_score REAL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_analysis ON feedback(analysis_id);
	CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback(created_at);

	CREATE TABLE IF NOT EXISTS reward_config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		accuracy REAL NOT NULL,
		helpfulness REAL NOT NULL,
		latency REAL NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertAnalysis(a *models.Analysis) error {
	query := `
		INSERT INTO analyses (id, user_id, session_id, prompt, image, answer, mock, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	mock := 0
	if a.Mock {
		mock = 1
	}

	_, err := c.db.Exec(
		query,
		a.ID,
		a.UserID,
		a.SessionID,
		a.Prompt,
		a.Image,
		a.Answer,
		mock,
		a.LatencyMS,
		a.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	logger.Debug("Analysis inserted", zap.String("analysis_id", a.ID))
	return nil
}

// GetAnalysis returns (nil, nil) when no row matches so callers can tell
// "missing" apart from a storage failure.
func (c *Client) GetAnalysis(id string) (*models.Analysis, error) {
	query := `SELECT id, user_id, session_id, prompt, image, answer, mock, latency_ms, created_at FROM analyses WHERE id = ?`

	var a models.Analysis
	var mock int
	var createdAt int64

	err := c.db.QueryRow(query, id).Scan(
		&a.ID,
		&a.UserID,
		&a.SessionID,
		&a.Prompt,
		&a.Image,
		&a.Answer,
		&mock,
		&a.LatencyMS,
		&createdAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	a.Mock = mock == 1
	a.CreatedAt = time.Unix(createdAt, 0)

	return &a, nil
}

func (c *Client) ListAnalyses(userID, sessionID string, limit int) ([]models.Analysis, error) {
	query := `
		SELECT id, user_id, session_id, prompt, answer, mock, latency_ms, created_at
		FROM analyses
		WHERE (? != '' AND user_id = ?) OR (? != '' AND session_id = ?)
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, userID, userID, sessionID, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var result []models.Analysis
	for rows.Next() {
		var a models.Analysis
		var mock int
		var createdAt int64

		err := rows.Scan(&a.ID, &a.UserID, &a.SessionID, &a.Prompt, &a.Answer, &mock, &a.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		a.Mock = mock == 1
		a.CreatedAt = time.Unix(createdAt, 0)
		result = append(result, a)
	}

	return result, nil
}

func (c *Client) CountAnalysesBySession(sessionID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM analyses WHERE session_id = ? AND created_at >= ?`

	var count int
	err := c.db.QueryRow(query, sessionID, since.Unix()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}

	return count, nil
}

func (c *Client) InsertFeedback(f *models.Feedback) error {
	query := `INSERT INTO feedback (id, analysis_id, upvote, comment, reward_score, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	upvote := 0
	if f.Upvote {
		upvote = 1
	}

	_, err := c.db.Exec(
		query,
		f.ID,
		f.AnalysisID,
		upvote,
		f.Comment,
		f.RewardScore,
		f.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}

	logger.Info("Feedback stored",
		zap.String("feedback_id", f.ID),
		zap.String("analysis_id", f.AnalysisID),
		zap.Bool("upvote", f.Upvote),
	)

	return nil
}

// FeedbackWithAnalysis pairs a feedback row with its analysis for reward
// recomputation.
type FeedbackWithAnalysis struct {
	Feedback models.Feedback
	Analysis models.Analysis
}

func (c *Client) GetRecentFeedback(limit int) ([]FeedbackWithAnalysis, error) {
	query := `
		SELECT f.id, f.analysis_id, f.upvote, f.comment, f.reward_score, f.created_at,
			a.id, a.prompt, a.answer, a.latency_ms, a.created_at
		FROM feedback f
		JOIN analyses a ON a.id = f.analysis_id
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent feedback: %w", err)
	}
	defer rows.Close()

	var result []FeedbackWithAnalysis
	for rows.Next() {
		var pair FeedbackWithAnalysis
		var upvote int
		var fCreated, aCreated int64

		err := rows.Scan(
			&pair.Feedback.ID,
			&pair.Feedback.AnalysisID,
			&upvote,
			&pair.Feedback.Comment,
			&pair.Feedback.RewardScore,
			&fCreated,
			&pair.Analysis.ID,
			&pair.Analysis.Prompt,
			&pair.Analysis.Answer,
			&pair.Analysis.LatencyMS,
			&aCreated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		pair.Feedback.Upvote = upvote == 1
		pair.Feedback.CreatedAt = time.Unix(fCreated, 0)
		pair.Analysis.CreatedAt = time.Unix(aCreated, 0)
		result = append(result, pair)
	}

	return result, nil
}

func (c *Client) UpdateFeedbackReward(feedbackID string, reward float64) error {
	query := `UPDATE feedback SET reward_score = ? WHERE id = ?`

	_, err := c.db.Exec(query, reward, feedbackID)
	if err != nil {
		return fmt.Errorf("failed to update feedback reward: %w", err)
	}

	return nil
}

func (c *Client) CountFeedback() (int, error) {
	var count int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM feedback`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return count, nil
}

// GetRewardConfig returns (nil, nil) before the first write.
func (c *Client) GetRewardConfig() (*models.RewardConfig, error) {
	query := `SELECT accuracy, helpfulness, latency, updated_at FROM reward_config WHERE id = 1`

	var cfg models.RewardConfig
	var updatedAt int64

	err := c.db.QueryRow(query).Scan(&cfg.Accuracy, &cfg.Helpfulness, &cfg.Latency, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward config: %w", err)
	}

	cfg.UpdatedAt = time.Unix(updatedAt, 0)
	return &cfg, nil
}

func (c *Client) UpsertRewardConfig(accuracy, helpfulness, latency float64) (*models.RewardConfig, error) {
	now := time.Now()

	query := `
		INSERT INTO reward_config (id, accuracy, helpfulness, latency, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			accuracy = excluded.accuracy,
			helpfulness = excluded.helpfulness,
			latency = excluded.latency,
			updated_at = excluded.updated_at
	`

	_, err := c.db.Exec(query, accuracy, helpfulness, latency, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to upsert reward config: %w", err)
	}

	logger.Info("Reward config updated",
		zap.Float64("accuracy", accuracy),
		zap.Float64("helpfulness", helpfulness),
		zap.Float64("latency", latency),
	)

	return c.GetRewardConfig()
}
