package models

import "time"

// Analysis is the stored result of one image+prompt request to the
// vision-language model. Rows are immutable after creation; guest usage
// counting is derived from them.
type Analysis struct {
	ID        string
	UserID    string
	SessionID string
	Prompt    string
	Image     string
	Answer    string
	Mock      bool
	LatencyMS int
	CreatedAt time.Time
}

// Feedback is a user's reaction to one Analysis. RewardScore is computed by
// the reward updater, never supplied by the client; it is the only field
// mutated after creation.
type Feedback struct {
	ID          string
	AnalysisID  string
	Upvote      bool
	Comment     string
	RewardScore *float64
	CreatedAt   time.Time
}

// RewardConfig is the singleton set of admin-tunable scoring weights.
type RewardConfig struct {
	Accuracy    float64
	Helpfulness float64
	Latency     float64
	UpdatedAt   time.Time
}

// ChatMessage is one turn of playground chat history.
type ChatMessage struct {
	Role    string
	Content string
}
