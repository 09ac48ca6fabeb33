package models

import (
	"time"

	"github.com/google/uuid"
)

// WebSocket / pub-sub messages

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type LevelUpEvent struct {
	Level   int `json:"level"`
	TotalXP int `json:"total_xp"`
}

type StreakEvent struct {
	Streak int `json:"streak"`
}

type StreakReminderEvent struct {
	Streak     int       `json:"streak"`
	ExpiresEnd time.Time `json:"expires_end_of_day"`
}

type CardClassifiedEvent struct {
	CardID          uuid.UUID       `json:"card_id"`
	TotalDifficulty int             `json:"total_difficulty"`
	DifficultyLevel DifficultyLevel `json:"difficulty_level"`
}

// ClassificationJob is the queue payload for the classification worker.
type ClassificationJob struct {
	ID         uuid.UUID `json:"id"`
	CardID     uuid.UUID `json:"card_id"`
	Reason     string    `json:"reason"` // "import" or "edit"
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// API Error response

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
