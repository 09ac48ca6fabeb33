package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"lexica-backend/internal/engine"
	"lexica-backend/internal/models"
	"lexica-backend/internal/repository"
)

const classificationQueue = "queue:card-classification"

// Pool runs the card classification workers. Jobs arrive on a Redis list
// from card import and card edit; each worker scores the card and persists
// the result, then announces it on the owner's update channel.
type Pool struct {
	redis       *redis.Client
	cardRepo    *repository.CardRepo
	deckRepo    *repository.DeckRepo
	params      engine.Params
	workerCount int
	stopChan    chan struct{}
}

func NewPool(redisClient *redis.Client, cardRepo *repository.CardRepo, deckRepo *repository.DeckRepo, params engine.Params, workerCount int) *Pool {
	return &Pool{
		redis:       redisClient,
		cardRepo:    cardRepo,
		deckRepo:    deckRepo,
		params:      params,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}

	log.Printf("Started %d classification workers", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, classificationQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.ClassificationJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// SetNX lock so a re-queued job is not classified twice concurrently
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 5*time.Minute).Result()
		if err != nil || !locked {
			continue
		}

		p.process(ctx, id, job)
	}
}

func (p *Pool) process(ctx context.Context, id int, job models.ClassificationJob) {
	card, err := p.cardRepo.GetByID(ctx, job.CardID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Deleted between enqueue and pickup; nothing to do.
			return
		}
		log.Printf("Worker %d: failed to load card %s: %v", id, job.CardID, err)
		return
	}

	diff, err := engine.Classify(card, p.params)
	if err != nil {
		log.Printf("Worker %d: cannot classify card %s: %v", id, card.ID, err)
		return
	}

	if err := p.cardRepo.UpsertDifficulty(ctx, diff); err != nil {
		log.Printf("Worker %d: failed to store difficulty for card %s: %v", id, card.ID, err)
		return
	}

	log.Printf("Worker %d: classified card %s (%s, total %d, reason %s)",
		id, card.ID, diff.DifficultyLevel, diff.TotalDifficulty, job.Reason)

	p.announce(ctx, card, diff)
}

// announce tells the deck owner's open clients that the card now has a score.
func (p *Pool) announce(ctx context.Context, card *models.Card, diff *models.CardDifficulty) {
	deck, err := p.deckRepo.GetByID(ctx, card.DeckID)
	if err != nil {
		return
	}

	msg := models.WSMessage{
		Type: "card_classified",
		Payload: models.CardClassifiedEvent{
			CardID:          card.ID,
			TotalDifficulty: diff.TotalDifficulty,
			DifficultyLevel: diff.DifficultyLevel,
		},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	p.redis.Publish(ctx, fmt.Sprintf("user_updates:%s", deck.UserID.String()), string(data))
}
