package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"lexica-backend/internal/engine"
	"lexica-backend/internal/models"
	"lexica-backend/internal/repository"
)

// ProgressionService owns the per-user XP/level/streak aggregate. One commit
// per completed session; everything else is read-only.
type ProgressionService struct {
	progressionRepo *repository.ProgressionRepo
	redis           *redis.Client
	params          engine.Params
	retries         int
}

func NewProgressionService(progressionRepo *repository.ProgressionRepo, redisClient *redis.Client, params engine.Params, retries int) *ProgressionService {
	return &ProgressionService{
		progressionRepo: progressionRepo,
		redis:           redisClient,
		params:          params,
		retries:         retries,
	}
}

// Get returns the user's progression, or the starting state for users who
// have not completed a session yet. The starting state is not persisted; the
// first CompleteSession creates the row.
func (s *ProgressionService) Get(ctx context.Context, userID uuid.UUID) (*models.UserProgression, error) {
	prog, err := s.progressionRepo.Get(ctx, userID)
	if err == nil {
		return prog, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	fresh := engine.NewProgression(userID, s.params)
	return &fresh, nil
}

func (s *ProgressionService) RecentSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.ProgressionSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.progressionRepo.ListRecentSessions(ctx, userID, limit)
}

// CompleteSession folds a finished session into the user's progression and
// writes the audit row atomically. Two devices completing sessions at the
// same moment race on the version check; the loser re-reads and reapplies,
// so both sessions count.
func (s *ProgressionService) CompleteSession(ctx context.Context, userID uuid.UUID, req models.CompleteSessionRequest) (*models.SessionOutcome, error) {
	fieldErrors := make(map[string]string)
	if req.QuestionsAnswered <= 0 {
		fieldErrors["questions_answered"] = "questions_answered must be at least 1"
	}
	if req.CorrectAnswers < 0 || req.CorrectAnswers > req.QuestionsAnswered {
		fieldErrors["correct_answers"] = "correct_answers must be between 0 and questions_answered"
	}
	if req.DurationSeconds < 0 {
		fieldErrors["duration_seconds"] = "duration_seconds must not be negative"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	summary := models.SessionSummary{
		QuestionsAnswered: req.QuestionsAnswered,
		CorrectAnswers:    req.CorrectAnswers,
		DurationSeconds:   req.DurationSeconds,
		SessionDate:       time.Now().UTC(),
	}

	for attempt := 0; attempt <= s.retries; attempt++ {
		prev, isNew, err := s.loadOrInit(ctx, userID)
		if err != nil {
			return nil, err
		}

		next, session, leveledUp, err := engine.ApplySession(*prev, summary, s.params)
		if err != nil {
			if errors.Is(err, engine.ErrInvalidSummary) {
				return nil, &ValidationError{Fields: map[string]string{"session": err.Error()}}
			}
			return nil, err
		}

		err = s.progressionRepo.Commit(ctx, &next, isNew, &session)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if leveledUp {
			s.publish(ctx, userID, "level_up", models.LevelUpEvent{Level: next.Level, TotalXP: next.XP})
		}
		if next.Streak > prev.Streak {
			s.publish(ctx, userID, "streak_extended", models.StreakEvent{Streak: next.Streak})
		}

		return &models.SessionOutcome{
			Progression: &next,
			Session:     &session,
			LeveledUp:   leveledUp,
		}, nil
	}

	return nil, &ConflictError{Message: "Progression was updated concurrently, please retry"}
}

func (s *ProgressionService) loadOrInit(ctx context.Context, userID uuid.UUID) (*models.UserProgression, bool, error) {
	prev, err := s.progressionRepo.Get(ctx, userID)
	if err == nil {
		return prev, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	fresh := engine.NewProgression(userID, s.params)
	return &fresh, true, nil
}

// publish pushes an event onto the user's update channel. Delivery is best
// effort; the session commit already happened.
func (s *ProgressionService) publish(ctx context.Context, userID uuid.UUID, eventType string, payload interface{}) {
	msg := models.WSMessage{Type: eventType, Payload: payload}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}
	if err := s.redis.Publish(ctx, fmt.Sprintf("user_updates:%s", userID.String()), string(data)).Err(); err != nil {
		log.Printf("Failed to publish %s event for user %s: %v", eventType, userID, err)
	}
}
