package models

import (
	"time"

	"github.com/google/uuid"
)

type QuizResult struct {
	ID             uuid.UUID `json:"id"`
	GoogleID       string    `json:"-"`
	QuizID         int64     `json:"quiz_id"`
	QuizName       string    `json:"quiz_name,omitempty"`
	Score          int       `json:"score"`
	QuestionsCount int       `json:"questions_count"`
	PercentScore   int       `json:"percent_score"`
	FinishedAt     time.Time `json:"finished_at"`
}

// ResultJob is pushed to the results queue when a signed-in user finishes a quiz.
type ResultJob struct {
	ID         uuid.UUID     `json:"id"`
	GoogleID   string        `json:"google_id"`
	UserName   string        `json:"user_name"`
	Summary    FinishSummary `json:"summary"`
	FinishedAt time.Time     `json:"finished_at"`
	RetryCount int           `json:"retry_count,omitempty"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type ResultEvent struct {
	UserName       string `json:"user_name"`
	QuizID         int64  `json:"quiz_id"`
	QuizName       string `json:"quiz_name"`
	Score          int    `json:"score"`
	QuestionsCount int    `json:"questions_count"`
	PercentScore   int    `json:"percent_score"`
}
