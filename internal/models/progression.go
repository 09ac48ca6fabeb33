package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProgression is the long-running per-user aggregate: XP, level, streak
// and the adaptive difficulty band used by question selection. Mutated only
// by the progression engine, once per completed session.
type UserProgression struct {
	UserID                 uuid.UUID  `json:"user_id"`
	Level                  int        `json:"level"` // [1,50]
	XP                     int        `json:"xp"`
	Streak                 int        `json:"streak"`
	CurrentDifficulty      int        `json:"current_difficulty"` // [0,100]
	TotalSessions          int        `json:"total_sessions"`
	TotalCorrectAnswers    int        `json:"total_correct_answers"`
	TotalQuestionsAnswered int        `json:"total_questions_answered"`
	LastSessionDate        *time.Time `json:"last_session_date"`
	LevelUpDate            *time.Time `json:"level_up_date"`
	Version                int        `json:"-"`
}

// ProgressionSession is the immutable audit record for one completed session.
type ProgressionSession struct {
	ID                    uuid.UUID `json:"id"`
	UserID                uuid.UUID `json:"user_id"`
	SessionDate           time.Time `json:"session_date"`
	StartingDifficulty    int       `json:"starting_difficulty"`
	EndingDifficulty      int       `json:"ending_difficulty"`
	XPEarned              int       `json:"xp_earned"`
	QuestionsAnswered     int       `json:"questions_answered"`
	CorrectAnswers        int       `json:"correct_answers"`
	SessionAccuracy       float64   `json:"session_accuracy"` // [0,100]
	DifficultyAdjustments int       `json:"difficulty_adjustments"`
}

type SessionSummary struct {
	QuestionsAnswered int       `json:"questions_answered"`
	CorrectAnswers    int       `json:"correct_answers"`
	DurationSeconds   int       `json:"duration_seconds"`
	SessionDate       time.Time `json:"session_date"`
}

type CompleteSessionRequest struct {
	QuestionsAnswered int `json:"questions_answered"`
	CorrectAnswers    int `json:"correct_answers"`
	DurationSeconds   int `json:"duration_seconds"`
}

// SessionOutcome is returned after a session commit.
type SessionOutcome struct {
	Progression *UserProgression    `json:"progression"`
	Session     *ProgressionSession `json:"session"`
	LeveledUp   bool                `json:"leveled_up"`
}
