package models

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseResult is the append-only audit record for a single answered
// question. Never mutated after creation.
type ExerciseResult struct {
	ID            uuid.UUID    `json:"id"`
	UserID        uuid.UUID    `json:"user_id"`
	CardID        uuid.UUID    `json:"card_id"`
	SessionID     *uuid.UUID   `json:"session_id"`
	QuestionType  QuestionType `json:"question_type"`
	Correct       bool         `json:"correct"`
	UserAnswer    string       `json:"user_answer"`
	CorrectAnswer string       `json:"correct_answer"`
	TimeTakenMs   int          `json:"time_taken_ms"`
	HintsUsed     int          `json:"hints_used"`
	CreatedAt     time.Time    `json:"created_at"`
}
