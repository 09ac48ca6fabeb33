package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"lexica-backend/internal/engine"
	"lexica-backend/internal/models"
	"lexica-backend/internal/repository"
)

func TestParseFilters(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		tier, qTypes, err := parseFilters(models.SelectQuestionsRequest{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tier != "" {
			t.Errorf("expected no tier filter, got %q", tier)
		}
		if len(qTypes) != len(models.AllQuestionTypes()) {
			t.Errorf("expected all question types, got %d", len(qTypes))
		}
	})

	t.Run("difficulty all", func(t *testing.T) {
		tier, _, err := parseFilters(models.SelectQuestionsRequest{Difficulty: "all"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tier != "" {
			t.Errorf("'all' should disable the tier filter, got %q", tier)
		}
	})

	t.Run("explicit tier", func(t *testing.T) {
		tier, _, err := parseFilters(models.SelectQuestionsRequest{Difficulty: "advanced"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tier != models.DifficultyAdvanced {
			t.Errorf("expected advanced, got %q", tier)
		}
	})

	t.Run("unknown tier", func(t *testing.T) {
		_, _, err := parseFilters(models.SelectQuestionsRequest{Difficulty: "expert"})
		if _, ok := err.(*InvalidParameterError); !ok {
			t.Errorf("expected *InvalidParameterError, got %T", err)
		}
	})

	t.Run("explicit question types", func(t *testing.T) {
		_, qTypes, err := parseFilters(models.SelectQuestionsRequest{
			QuestionTypes: []string{"flashcard", "word_order"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(qTypes) != 2 {
			t.Fatalf("expected 2 types, got %d", len(qTypes))
		}
		if qTypes[0] != models.QuestionFlashcard || qTypes[1] != models.QuestionWordOrder {
			t.Errorf("unexpected types: %v", qTypes)
		}
	})

	t.Run("unknown question type", func(t *testing.T) {
		_, _, err := parseFilters(models.SelectQuestionsRequest{QuestionTypes: []string{"matching"}})
		if _, ok := err.(*InvalidParameterError); !ok {
			t.Errorf("expected *InvalidParameterError, got %T", err)
		}
	})
}

func TestAnyTypeAllows(t *testing.T) {
	wordOrderOnly := []models.QuestionType{models.QuestionWordOrder}

	if anyTypeAllows(wordOrderOnly, models.CategoryWord) {
		t.Error("word_order alone should reject a single-word card")
	}
	if !anyTypeAllows(wordOrderOnly, models.CategorySentence) {
		t.Error("word_order should accept a sentence card")
	}
	if !anyTypeAllows(models.AllQuestionTypes(), models.CategoryWord) {
		t.Error("the full type set should accept any card")
	}
}

func TestSelectQuestions_Validation(t *testing.T) {
	svc := NewSelectorService(nil, nil, nil, nil, engine.DefaultParams())

	tests := []struct {
		name      string
		req       models.SelectQuestionsRequest
		wantField string
	}{
		{
			name:      "no decks",
			req:       models.SelectQuestionsRequest{Count: 10},
			wantField: "deck_ids",
		},
		{
			name:      "zero count",
			req:       models.SelectQuestionsRequest{DeckIDs: []uuid.UUID{uuid.New()}},
			wantField: "count",
		},
		{
			name:      "count too large",
			req:       models.SelectQuestionsRequest{DeckIDs: []uuid.UUID{uuid.New()}, Count: 5000},
			wantField: "count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SelectQuestions(context.Background(), uuid.New(), tt.req)
			vErr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
			}
			if _, present := vErr.Fields[tt.wantField]; !present {
				t.Errorf("expected field %q in error, got %v", tt.wantField, vErr.Fields)
			}
		})
	}
}

func TestSelectQuestions_BadFilterBeforeOwnership(t *testing.T) {
	// Repos are nil: a bad filter must be rejected before any lookup.
	svc := NewSelectorService(nil, nil, nil, nil, engine.DefaultParams())

	req := models.SelectQuestionsRequest{
		DeckIDs:    []uuid.UUID{uuid.New()},
		Count:      5,
		Difficulty: "impossible",
	}

	_, err := svc.SelectQuestions(context.Background(), uuid.New(), req)
	if _, ok := err.(*InvalidParameterError); !ok {
		t.Fatalf("expected *InvalidParameterError, got %T (%v)", err, err)
	}
}

// In-memory stores backing the selection flow tests.

type fakeDeckStore struct{}

func (f *fakeDeckStore) GetOwned(ctx context.Context, userID uuid.UUID, deckIDs []uuid.UUID) ([]*models.Deck, error) {
	return nil, nil
}

type fakeCardStore struct {
	cards []repository.CardWithDifficulty
}

func (f *fakeCardStore) ListForSelection(ctx context.Context, deckIDs []uuid.UUID) ([]repository.CardWithDifficulty, error) {
	return f.cards, nil
}

func (f *fakeCardStore) UpsertDifficulty(ctx context.Context, d *models.CardDifficulty) error {
	return nil
}

type fakeProgressStore struct {
	due   []models.UserCardProgress
	calls int
}

func (f *fakeProgressStore) ListDue(ctx context.Context, userID uuid.UUID, cardIDs []uuid.UUID, now time.Time) ([]models.UserCardProgress, error) {
	f.calls++
	return f.due, nil
}

type fakeProgressionStore struct {
	prog *models.UserProgression
}

func (f *fakeProgressionStore) Get(ctx context.Context, userID uuid.UUID) (*models.UserProgression, error) {
	if f.prog == nil {
		return nil, pgx.ErrNoRows
	}
	return f.prog, nil
}

func classifiedCard(deckID uuid.UUID, difficulty int) repository.CardWithDifficulty {
	return repository.CardWithDifficulty{
		Card: models.Card{
			ID:       uuid.New(),
			DeckID:   deckID,
			Front:    "kot",
			Back:     "cat",
			Category: models.CategoryWord,
		},
		TotalDifficulty: difficulty,
		HasDifficulty:   true,
	}
}

func TestSelectQuestions_NoProgressionSkipsDueStep(t *testing.T) {
	deckID := uuid.New()
	cardStore := &fakeCardStore{}
	for i := 0; i < 6; i++ {
		cardStore.cards = append(cardStore.cards, classifiedCard(deckID, 30+i))
	}

	// The progress store reports every card as due; without a progression
	// row none of that may surface in the batch.
	progressStore := &fakeProgressStore{}
	for _, c := range cardStore.cards {
		progressStore.due = append(progressStore.due, models.UserCardProgress{
			CardID:     c.Card.ID,
			NextReview: time.Now().UTC().AddDate(0, 0, -1),
			EaseFactor: 2.5,
		})
	}

	svc := NewSelectorService(&fakeDeckStore{}, cardStore, progressStore, &fakeProgressionStore{}, engine.DefaultParams())

	batch, err := svc.SelectQuestions(context.Background(), uuid.New(), models.SelectQuestionsRequest{
		DeckIDs:             []uuid.UUID{deckID},
		Count:               4,
		UseSpacedRepetition: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if progressStore.calls != 0 {
		t.Errorf("due lookup ran %d times for a user with no progression", progressStore.calls)
	}
	if batch.DueCount != 0 {
		t.Errorf("due count = %d, want 0", batch.DueCount)
	}
	for _, q := range batch.Questions {
		if q.Due {
			t.Errorf("question for card %s marked due without a progression", q.CardID)
		}
	}
	if batch.Returned != 4 {
		t.Errorf("returned %d questions, want 4 from difficulty sampling", batch.Returned)
	}
}

func TestSelectQuestions_DueCardsLeadBatch(t *testing.T) {
	deckID := uuid.New()
	cardStore := &fakeCardStore{}
	for i := 0; i < 6; i++ {
		cardStore.cards = append(cardStore.cards, classifiedCard(deckID, 40+i))
	}

	now := time.Now().UTC()
	progressStore := &fakeProgressStore{
		due: []models.UserCardProgress{
			{CardID: cardStore.cards[2].Card.ID, NextReview: now.AddDate(0, 0, -1), EaseFactor: 2.5},
			{CardID: cardStore.cards[0].Card.ID, NextReview: now.AddDate(0, 0, -5), EaseFactor: 2.5},
		},
	}
	progressionStore := &fakeProgressionStore{
		prog: &models.UserProgression{UserID: uuid.New(), Level: 3, CurrentDifficulty: 45},
	}

	svc := NewSelectorService(&fakeDeckStore{}, cardStore, progressStore, progressionStore, engine.DefaultParams())

	batch, err := svc.SelectQuestions(context.Background(), uuid.New(), models.SelectQuestionsRequest{
		DeckIDs:             []uuid.UUID{deckID},
		Count:               4,
		UseSpacedRepetition: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if progressStore.calls != 1 {
		t.Fatalf("due lookup ran %d times, want 1", progressStore.calls)
	}
	if batch.DueCount != 2 {
		t.Fatalf("due count = %d, want 2", batch.DueCount)
	}
	if batch.Returned != 4 {
		t.Fatalf("returned %d questions, want 4", batch.Returned)
	}

	// Most overdue card first, then the other due card, then sampled fills.
	if batch.Questions[0].CardID != cardStore.cards[0].Card.ID {
		t.Errorf("most overdue card not first in batch")
	}
	if batch.Questions[1].CardID != cardStore.cards[2].Card.ID {
		t.Errorf("second due card not second in batch")
	}
	for i, q := range batch.Questions {
		if want := i < 2; q.Due != want {
			t.Errorf("question %d due flag = %v, want %v", i, q.Due, want)
		}
	}
}
