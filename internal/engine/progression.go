package engine

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"lexica-backend/internal/models"
)

// ErrInvalidSummary rejects session summaries that violate the basic
// accounting invariant (correct <= answered, answered > 0).
var ErrInvalidSummary = errors.New("invalid session summary")

// NewProgression is the starting state for a user's first session.
func NewProgression(userID uuid.UUID, p Params) models.UserProgression {
	return models.UserProgression{
		UserID:            userID,
		Level:             1,
		CurrentDifficulty: p.InitialDifficulty,
	}
}

// ApplySession folds one completed session into the user's progression and
// produces the immutable audit record for it. The difficulty nudge is applied
// once per session at commit time; difficulty_adjustments is therefore 0 or 1.
func ApplySession(prev models.UserProgression, summary models.SessionSummary, p Params) (models.UserProgression, models.ProgressionSession, bool, error) {
	if summary.QuestionsAnswered <= 0 || summary.CorrectAnswers < 0 || summary.CorrectAnswers > summary.QuestionsAnswered {
		return prev, models.ProgressionSession{}, false, ErrInvalidSummary
	}

	next := prev
	accuracy := float64(summary.CorrectAnswers) / float64(summary.QuestionsAnswered) * 100

	// XP: per-correct base, a bonus scaled by the difficulty band the session
	// was played at, and a flat speed bonus for quick sessions.
	xpEarned := summary.CorrectAnswers * p.XPPerCorrect
	xpEarned += summary.CorrectAnswers * prev.CurrentDifficulty / p.XPDifficultyDivisor
	if summary.DurationSeconds > 0 && summary.DurationSeconds < summary.QuestionsAnswered*p.FastSessionSecPerQ {
		xpEarned += p.XPSpeedBonus
	}
	next.XP += xpEarned

	leveledUp := false
	derivedLevel := next.XP/p.XPPerLevel + 1
	if derivedLevel > p.MaxLevel {
		derivedLevel = p.MaxLevel
	}
	if derivedLevel > next.Level {
		next.Level = derivedLevel
		t := summary.SessionDate
		next.LevelUpDate = &t
		leveledUp = true
	}

	next.Streak = nextStreak(prev.Streak, prev.LastSessionDate, summary.SessionDate)

	adjustments := 0
	if accuracy >= p.HighAccuracy {
		next.CurrentDifficulty = clip(prev.CurrentDifficulty+p.DifficultyStep, 100)
		adjustments = 1
	} else if accuracy < p.LowAccuracy {
		next.CurrentDifficulty = clip(prev.CurrentDifficulty-p.DifficultyStep, 100)
		adjustments = 1
	}

	next.TotalSessions++
	next.TotalCorrectAnswers += summary.CorrectAnswers
	next.TotalQuestionsAnswered += summary.QuestionsAnswered
	sessionDate := summary.SessionDate
	next.LastSessionDate = &sessionDate

	session := models.ProgressionSession{
		UserID:                prev.UserID,
		SessionDate:           summary.SessionDate,
		StartingDifficulty:    prev.CurrentDifficulty,
		EndingDifficulty:      next.CurrentDifficulty,
		XPEarned:              xpEarned,
		QuestionsAnswered:     summary.QuestionsAnswered,
		CorrectAnswers:        summary.CorrectAnswers,
		SessionAccuracy:       accuracy,
		DifficultyAdjustments: adjustments,
	}

	return next, session, leveledUp, nil
}

// nextStreak walks calendar days in UTC: same day keeps the streak,
// the previous day extends it, anything else restarts at 1.
func nextStreak(streak int, last *time.Time, now time.Time) int {
	if last == nil {
		return 1
	}
	today := dateOf(now)
	previous := dateOf(*last)
	switch {
	case previous.Equal(today):
		return streak
	case previous.Equal(today.AddDate(0, 0, -1)):
		return streak + 1
	default:
		return 1
	}
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
