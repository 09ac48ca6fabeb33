package models

import (
	"time"

	"github.com/google/uuid"
)

type Deck struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Language  string    `json:"language"` // e.g. "pl-en"
	CardCount int       `json:"card_count"`
	CreatedAt time.Time `json:"created_at"`
}

// CardCategory is the coarse shape of a card's content.
type CardCategory string

const (
	CategoryWord     CardCategory = "word"
	CategoryPhrase   CardCategory = "phrase"
	CategorySentence CardCategory = "sentence"
)

// DifficultyLevel is the tier derived from a card's total difficulty score.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

func ParseDifficultyLevel(s string) (DifficultyLevel, bool) {
	switch DifficultyLevel(s) {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return DifficultyLevel(s), true
	}
	return "", false
}

type Card struct {
	ID              uuid.UUID       `json:"id"`
	DeckID          uuid.UUID       `json:"deck_id"`
	Front           string          `json:"front"`
	Back            string          `json:"back"`
	Tags            []string        `json:"tags"`
	Category        CardCategory    `json:"category"`
	DifficultyLevel DifficultyLevel `json:"difficulty_level"`
	WordLength      int             `json:"word_length"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CardDifficulty is the classifier's breakdown for one card (1:1, recomputable).
// TotalDifficulty is always the sum of the four component scores.
type CardDifficulty struct {
	CardID          uuid.UUID       `json:"card_id"`
	VocabularyScore int             `json:"vocabulary_score"` // [0,30]
	GrammarScore    int             `json:"grammar_score"`    // [0,40]
	LengthScore     int             `json:"length_score"`     // [0,20]
	TypeScore       int             `json:"type_score"`       // [0,10]
	TotalDifficulty int             `json:"total_difficulty"` // [0,100]
	DifficultyLevel DifficultyLevel `json:"difficulty_level"`
	ComputedAt      time.Time       `json:"computed_at"`
}

type CreateDeckRequest struct {
	Title    string `json:"title"`
	Language string `json:"language"`
}

type NewCard struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Tags  []string `json:"tags"`
}

type CreateCardsRequest struct {
	Cards []NewCard `json:"cards"`
}

type UpdateCardRequest struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Tags  []string `json:"tags"`
}
