package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"lexica-backend/internal/engine"
	"lexica-backend/internal/models"
	"lexica-backend/internal/repository"
)

const maxQuestionsPerBatch = 100

// Store interfaces cover the slice of each repository the selector touches,
// so tests can swap in fakes without a database.
type selectorDeckStore interface {
	GetOwned(ctx context.Context, userID uuid.UUID, deckIDs []uuid.UUID) ([]*models.Deck, error)
}

type selectorCardStore interface {
	ListForSelection(ctx context.Context, deckIDs []uuid.UUID) ([]repository.CardWithDifficulty, error)
	UpsertDifficulty(ctx context.Context, d *models.CardDifficulty) error
}

type selectorProgressStore interface {
	ListDue(ctx context.Context, userID uuid.UUID, cardIDs []uuid.UUID, now time.Time) ([]models.UserCardProgress, error)
}

type selectorProgressionStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserProgression, error)
}

// SelectorService assembles question batches: due cards first, most overdue
// at the front, then difficulty-weighted random picks from the rest of the
// pool.
type SelectorService struct {
	deckRepo        selectorDeckStore
	cardRepo        selectorCardStore
	progressRepo    selectorProgressStore
	progressionRepo selectorProgressionStore
	params          engine.Params

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSelectorService(deckRepo selectorDeckStore, cardRepo selectorCardStore, progressRepo selectorProgressStore, progressionRepo selectorProgressionStore, params engine.Params) *SelectorService {
	return &SelectorService{
		deckRepo:        deckRepo,
		cardRepo:        cardRepo,
		progressRepo:    progressRepo,
		progressionRepo: progressionRepo,
		params:          params,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *SelectorService) SelectQuestions(ctx context.Context, userID uuid.UUID, req models.SelectQuestionsRequest) (*models.QuestionBatch, error) {
	fieldErrors := make(map[string]string)
	if len(req.DeckIDs) == 0 {
		fieldErrors["deck_ids"] = "At least one deck is required"
	}
	if req.Count <= 0 {
		fieldErrors["count"] = "count must be at least 1"
	}
	if req.Count > maxQuestionsPerBatch {
		fieldErrors["count"] = fmt.Sprintf("count must not exceed %d", maxQuestionsPerBatch)
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	tier, qTypes, err := parseFilters(req)
	if err != nil {
		return nil, err
	}

	// Ownership: every requested deck must belong to the caller. A deck the
	// user cannot see is indistinguishable from one that does not exist.
	if _, err := s.deckRepo.GetOwned(ctx, userID, req.DeckIDs); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Deck not found"}
		}
		return nil, err
	}

	pool, err := s.loadPool(ctx, req.DeckIDs, tier, qTypes)
	if err != nil {
		return nil, err
	}

	batch := &models.QuestionBatch{Requested: req.Count}
	if len(pool) == 0 {
		batch.InsufficientPool = true
		batch.Questions = []models.Question{}
		return batch, nil
	}

	// A brand-new user has no progression row yet: no review history exists,
	// so nothing can be due and the whole batch comes from difficulty
	// sampling at the starting band.
	band := s.params.InitialDifficulty
	hasProgression := false
	if prog, perr := s.progressionRepo.Get(ctx, userID); perr == nil {
		band = prog.CurrentDifficulty
		hasProgression = true
	} else if !errors.Is(perr, pgx.ErrNoRows) {
		return nil, perr
	}

	byID := make(map[uuid.UUID]engine.Candidate, len(pool))
	for _, c := range pool {
		byID[c.Card.ID] = c
	}

	now := time.Now().UTC()
	var picked []engine.Candidate
	dueSet := make(map[uuid.UUID]bool)

	if req.UseSpacedRepetition && hasProgression {
		cardIDs := make([]uuid.UUID, 0, len(pool))
		for _, c := range pool {
			cardIDs = append(cardIDs, c.Card.ID)
		}
		due, err := s.progressRepo.ListDue(ctx, userID, cardIDs, now)
		if err != nil {
			return nil, err
		}
		engine.SortDueFirst(due)
		for _, d := range due {
			if len(picked) >= req.Count {
				break
			}
			c, ok := byID[d.CardID]
			if !ok {
				continue
			}
			picked = append(picked, c)
			dueSet[d.CardID] = true
		}
		batch.DueCount = len(picked)
	}

	if remaining := req.Count - len(picked); remaining > 0 {
		rest := make([]engine.Candidate, 0, len(pool))
		for _, c := range pool {
			if !dueSet[c.Card.ID] {
				rest = append(rest, c)
			}
		}
		s.mu.Lock()
		sampled := engine.SampleByDifficulty(rest, remaining, band, s.params, s.rng)
		s.mu.Unlock()
		picked = append(picked, sampled...)
	}

	batch.Questions = make([]models.Question, 0, len(picked))
	for _, c := range picked {
		batch.Questions = append(batch.Questions, s.buildQuestion(c, qTypes, dueSet[c.Card.ID]))
	}
	batch.Returned = len(batch.Questions)
	batch.InsufficientPool = batch.Returned < batch.Requested
	return batch, nil
}

func parseFilters(req models.SelectQuestionsRequest) (models.DifficultyLevel, []models.QuestionType, error) {
	var tier models.DifficultyLevel
	if req.Difficulty != "" && req.Difficulty != "all" {
		parsed, ok := models.ParseDifficultyLevel(req.Difficulty)
		if !ok {
			return "", nil, &InvalidParameterError{Message: fmt.Sprintf("unknown difficulty %q", req.Difficulty)}
		}
		tier = parsed
	}

	qTypes := models.AllQuestionTypes()
	if len(req.QuestionTypes) > 0 {
		qTypes = qTypes[:0]
		for _, raw := range req.QuestionTypes {
			t, ok := models.ParseQuestionType(raw)
			if !ok {
				return "", nil, &InvalidParameterError{Message: fmt.Sprintf("unknown question type %q", raw)}
			}
			qTypes = append(qTypes, t)
		}
	}
	return tier, qTypes, nil
}

// loadPool lists the candidate cards, classifying any that have no
// difficulty row yet. Classification is persisted as we go so cards imported
// before the worker catches up are still selectable. The tier filter is
// applied after classification for the same reason.
func (s *SelectorService) loadPool(ctx context.Context, deckIDs []uuid.UUID, tier models.DifficultyLevel, qTypes []models.QuestionType) ([]engine.Candidate, error) {
	cards, err := s.cardRepo.ListForSelection(ctx, deckIDs)
	if err != nil {
		return nil, err
	}

	var pool []engine.Candidate
	for _, cw := range cards {
		total := cw.TotalDifficulty
		level := cw.Card.DifficultyLevel
		if !cw.HasDifficulty {
			diff, cerr := engine.Classify(&cw.Card, s.params)
			if cerr != nil {
				log.Printf("Skipping unclassifiable card %s: %v", cw.Card.ID, cerr)
				continue
			}
			if uerr := s.cardRepo.UpsertDifficulty(ctx, diff); uerr != nil {
				return nil, uerr
			}
			total = diff.TotalDifficulty
			level = diff.DifficultyLevel
		}

		if tier != "" && level != tier {
			continue
		}
		if !anyTypeAllows(qTypes, cw.Card.Category) {
			continue
		}
		pool = append(pool, engine.Candidate{Card: cw.Card, Difficulty: total})
	}
	return pool, nil
}

func anyTypeAllows(qTypes []models.QuestionType, category models.CardCategory) bool {
	for _, t := range qTypes {
		if engine.TypeAllowsCard(t, category) {
			return true
		}
	}
	return false
}

// buildQuestion picks a question type the card supports and orients the
// prompt. Fronts hold Polish, backs English, so PL→EN asks from the front
// and EN→PL from the back.
func (s *SelectorService) buildQuestion(c engine.Candidate, qTypes []models.QuestionType, due bool) models.Question {
	allowed := make([]models.QuestionType, 0, len(qTypes))
	for _, t := range qTypes {
		if engine.TypeAllowsCard(t, c.Card.Category) {
			allowed = append(allowed, t)
		}
	}

	s.mu.Lock()
	qType := allowed[s.rng.Intn(len(allowed))]
	s.mu.Unlock()

	prompt, answer := c.Card.Front, c.Card.Back
	if qType == models.QuestionTranslationENPL {
		prompt, answer = c.Card.Back, c.Card.Front
	}

	return models.Question{
		CardID:     c.Card.ID,
		DeckID:     c.Card.DeckID,
		Type:       qType,
		Prompt:     prompt,
		Answer:     answer,
		Difficulty: c.Difficulty,
		Due:        due,
	}
}
