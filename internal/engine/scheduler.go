package engine

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"lexica-backend/internal/models"
)

// ErrScheduleOutOfRange guards the scheduler invariants (ease >= minimum,
// interval >= 0). It should never fire given the transition rules below.
var ErrScheduleOutOfRange = errors.New("schedule state out of range")

// NewProgress initializes spaced-repetition state for a card the user has
// never answered. FirstSeen is set once and never changes afterwards.
func NewProgress(userID, cardID uuid.UUID, now time.Time, p Params) models.UserCardProgress {
	return models.UserCardProgress{
		UserID:       userID,
		CardID:       cardID,
		EaseFactor:   p.InitialEase,
		MasteryLevel: models.MasteryLearning,
		FirstSeen:    now,
		LastReviewed: now,
		NextReview:   now,
	}
}

// Review applies one answer to the spaced-repetition state and returns the
// next state. SM-2 family:
//
//	incorrect: repetitions -> 0, interval -> 1 day, ease -= fail step (floored)
//	correct:   repetitions++, interval 1 / 6 / round(prev * ease),
//	           ease nudged up on a fast answer (never down on a correct one)
//
// The previous state is taken by value; persistence and the concurrency
// check around it belong to the caller.
func Review(prev models.UserCardProgress, correct bool, responseTimeMs int, now time.Time, p Params) (models.UserCardProgress, error) {
	next := prev

	if correct {
		next.Repetitions++
		next.CorrectCount++

		switch next.Repetitions {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(prev.IntervalDays) * prev.EaseFactor))
		}
		if next.IntervalDays > p.MaxIntervalDays {
			next.IntervalDays = p.MaxIntervalDays
		}

		if responseTimeMs >= 0 && responseTimeMs < p.FastAnswerMs {
			next.EaseFactor = math.Min(p.MaxEase, prev.EaseFactor+p.EaseFastBonus)
		}
	} else {
		next.Repetitions = 0
		next.IncorrectCount++
		next.IntervalDays = 1
		next.EaseFactor = math.Max(p.MinEase, prev.EaseFactor-p.EaseFailStep)
	}

	if next.EaseFactor < p.MinEase || next.IntervalDays < 0 {
		return prev, ErrScheduleOutOfRange
	}

	answers := next.CorrectCount + next.IncorrectCount
	next.AverageResponseMs = prev.AverageResponseMs + (float64(responseTimeMs)-prev.AverageResponseMs)/float64(answers)

	next.MasteryLevel = MasteryFor(next.Repetitions)
	next.LastReviewed = now
	next.NextReview = now.AddDate(0, 0, next.IntervalDays)

	return next, nil
}
