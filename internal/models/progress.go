package models

import (
	"time"

	"github.com/google/uuid"
)

// MasteryLevel is derived from the repetition count for a (user, card) pair.
type MasteryLevel string

const (
	MasteryLearning MasteryLevel = "learning"
	MasteryFamiliar MasteryLevel = "familiar"
	MasteryMastered MasteryLevel = "mastered"
)

// UserCardProgress is the spaced-repetition state for one (user, card) pair.
// Mutated exclusively by the scheduler; Version backs the optimistic
// concurrency check so two concurrent answers are never both applied.
type UserCardProgress struct {
	UserID            uuid.UUID    `json:"user_id"`
	CardID            uuid.UUID    `json:"card_id"`
	LastReviewed      time.Time    `json:"last_reviewed"`
	NextReview        time.Time    `json:"next_review"`
	IntervalDays      int          `json:"interval_days"`
	EaseFactor        float64      `json:"ease_factor"`
	Repetitions       int          `json:"repetitions"`
	CorrectCount      int          `json:"correct_count"`
	IncorrectCount    int          `json:"incorrect_count"`
	AverageResponseMs float64      `json:"average_response_ms"`
	MasteryLevel      MasteryLevel `json:"mastery_level"`
	FirstSeen         time.Time    `json:"first_seen"`
	Version           int          `json:"-"`
}

type AnswerSubmission struct {
	CardID        uuid.UUID  `json:"card_id"`
	SessionID     *uuid.UUID `json:"session_id"`
	QuestionType  string     `json:"question_type"`
	Correct       bool       `json:"correct"`
	UserAnswer    string     `json:"user_answer"`
	CorrectAnswer string     `json:"correct_answer"`
	TimeTakenMs   int        `json:"time_taken_ms"`
	HintsUsed     int        `json:"hints_used"`
}

// AnswerResult is returned to the caller after an answer is recorded.
type AnswerResult struct {
	Correct      bool         `json:"correct"`
	Repetitions  int          `json:"repetitions"`
	IntervalDays int          `json:"interval_days"`
	EaseFactor   float64      `json:"ease_factor"`
	MasteryLevel MasteryLevel `json:"mastery_level"`
	NextReview   time.Time    `json:"next_review"`
	Feedback     string       `json:"feedback"`
}
