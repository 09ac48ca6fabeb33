package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"lexica-backend/internal/models"
	"lexica-backend/internal/repository"
)

const (
	reminderPollInterval = 1 * time.Hour
	reminderSentKeyTTL   = 24 * time.Hour
)

// ReminderScheduler nudges users whose streak is about to lapse: last
// session yesterday, nothing yet today. One reminder per user per day,
// deduplicated through Redis.
type ReminderScheduler struct {
	progressionRepo *repository.ProgressionRepo
	redis           *redis.Client
	stopChan        chan struct{}
}

func NewReminderScheduler(progressionRepo *repository.ProgressionRepo, redisClient *redis.Client) *ReminderScheduler {
	return &ReminderScheduler{
		progressionRepo: progressionRepo,
		redis:           redisClient,
		stopChan:        make(chan struct{}),
	}
}

func (s *ReminderScheduler) Start() {
	if s.progressionRepo == nil || s.redis == nil {
		return
	}

	go s.loop()

	log.Printf("Reminder scheduler started")
}

func (s *ReminderScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *ReminderScheduler) loop() {
	// Run on startup as well as by interval.
	s.sendStreakReminders(context.Background(), time.Now().UTC())

	ticker := time.NewTicker(reminderPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sendStreakReminders(context.Background(), time.Now().UTC())
		}
	}
}

func (s *ReminderScheduler) sendStreakReminders(ctx context.Context, now time.Time) {
	atRisk, err := s.progressionRepo.ListStreaksAtRisk(ctx, now)
	if err != nil {
		log.Printf("streak reminders: failed to list users: %v", err)
		return
	}

	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)

	for _, u := range atRisk {
		dedupeKey := fmt.Sprintf("streak_reminder:%s:%s", u.UserID, now.Format("2006-01-02"))
		set, err := s.redis.SetNX(ctx, dedupeKey, "1", reminderSentKeyTTL).Result()
		if err != nil {
			log.Printf("streak reminders: dedupe check failed for user %s: %v", u.UserID, err)
			continue
		}
		if !set {
			continue
		}

		msg := models.WSMessage{
			Type: "streak_reminder",
			Payload: models.StreakReminderEvent{
				Streak:     u.Streak,
				ExpiresEnd: endOfDay,
			},
		}
		data, err := json.Marshal(msg)
		if err != nil {
			log.Printf("streak reminders: failed to marshal event: %v", err)
			continue
		}
		if err := s.redis.Publish(ctx, fmt.Sprintf("user_updates:%s", u.UserID), string(data)).Err(); err != nil {
			log.Printf("streak reminders: failed to publish for user %s: %v", u.UserID, err)
		}
	}
}
