package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"lexica-backend/internal/engine"
	"lexica-backend/internal/models"
	"lexica-backend/internal/repository"
)

// LearningService records answers and advances per-card review state.
type LearningService struct {
	cardRepo     *repository.CardRepo
	progressRepo *repository.ProgressRepo
	params       engine.Params
	retries      int
}

func NewLearningService(cardRepo *repository.CardRepo, progressRepo *repository.ProgressRepo, params engine.Params, retries int) *LearningService {
	return &LearningService{
		cardRepo:     cardRepo,
		progressRepo: progressRepo,
		params:       params,
		retries:      retries,
	}
}

// RecordAnswer applies one answer to the user's review state for the card and
// appends the immutable result row, both in one transaction. A concurrent
// answer for the same card loses the version check and is retried against the
// fresh state, so both answers count exactly once.
func (s *LearningService) RecordAnswer(ctx context.Context, userID uuid.UUID, sub models.AnswerSubmission) (*models.AnswerResult, error) {
	fieldErrors := make(map[string]string)

	if sub.CardID == uuid.Nil {
		fieldErrors["card_id"] = "card_id is required"
	}
	qType, ok := models.ParseQuestionType(sub.QuestionType)
	if !ok {
		fieldErrors["question_type"] = fmt.Sprintf("unknown question type %q", sub.QuestionType)
	}
	if sub.TimeTakenMs < 0 {
		fieldErrors["time_taken_ms"] = "time_taken_ms must not be negative"
	}
	if sub.HintsUsed < 0 {
		fieldErrors["hints_used"] = "hints_used must not be negative"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	if _, err := s.cardRepo.GetByID(ctx, sub.CardID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Card not found"}
		}
		return nil, err
	}

	now := time.Now().UTC()

	for attempt := 0; attempt <= s.retries; attempt++ {
		prev, isNew, err := s.loadOrInit(ctx, userID, sub.CardID, now)
		if err != nil {
			return nil, err
		}

		next, err := engine.Review(*prev, sub.Correct, sub.TimeTakenMs, now, s.params)
		if err != nil {
			return nil, err
		}

		result := &models.ExerciseResult{
			UserID:        userID,
			CardID:        sub.CardID,
			SessionID:     sub.SessionID,
			QuestionType:  qType,
			Correct:       sub.Correct,
			UserAnswer:    sub.UserAnswer,
			CorrectAnswer: sub.CorrectAnswer,
			TimeTakenMs:   sub.TimeTakenMs,
			HintsUsed:     sub.HintsUsed,
			CreatedAt:     now,
		}

		err = s.progressRepo.SaveWithResult(ctx, &next, isNew, result)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return &models.AnswerResult{
			Correct:      sub.Correct,
			Repetitions:  next.Repetitions,
			IntervalDays: next.IntervalDays,
			EaseFactor:   next.EaseFactor,
			MasteryLevel: next.MasteryLevel,
			NextReview:   next.NextReview,
			Feedback:     feedbackFor(sub.Correct, next),
		}, nil
	}

	return nil, &ConflictError{Message: "Card was updated concurrently, please retry"}
}

func (s *LearningService) loadOrInit(ctx context.Context, userID, cardID uuid.UUID, now time.Time) (*models.UserCardProgress, bool, error) {
	prev, err := s.progressRepo.Get(ctx, userID, cardID)
	if err == nil {
		return prev, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	fresh := engine.NewProgress(userID, cardID, now, s.params)
	return &fresh, true, nil
}

func feedbackFor(correct bool, p models.UserCardProgress) string {
	if !correct {
		return "Not quite. This card will come back tomorrow."
	}
	switch p.MasteryLevel {
	case models.MasteryMastered:
		return fmt.Sprintf("Mastered! Next review in %d days.", p.IntervalDays)
	case models.MasteryFamiliar:
		return fmt.Sprintf("Good. Next review in %d days.", p.IntervalDays)
	default:
		return "Correct! Keep going."
	}
}
