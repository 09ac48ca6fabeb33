package models

import "github.com/google/uuid"

// QuestionType is a closed set; unknown strings are rejected at the API boundary.
type QuestionType string

const (
	QuestionMultipleChoice  QuestionType = "multiple_choice"
	QuestionFillBlank       QuestionType = "fill_blank"
	QuestionTranslationPLEN QuestionType = "translation_pl_en"
	QuestionTranslationENPL QuestionType = "translation_en_pl"
	QuestionFlashcard       QuestionType = "flashcard"
	QuestionWordOrder       QuestionType = "word_order"
	QuestionPronunciation   QuestionType = "pronunciation"
)

func AllQuestionTypes() []QuestionType {
	return []QuestionType{
		QuestionMultipleChoice,
		QuestionFillBlank,
		QuestionTranslationPLEN,
		QuestionTranslationENPL,
		QuestionFlashcard,
		QuestionWordOrder,
		QuestionPronunciation,
	}
}

func ParseQuestionType(s string) (QuestionType, bool) {
	switch QuestionType(s) {
	case QuestionMultipleChoice, QuestionFillBlank, QuestionTranslationPLEN,
		QuestionTranslationENPL, QuestionFlashcard, QuestionWordOrder, QuestionPronunciation:
		return QuestionType(s), true
	}
	return "", false
}

type Question struct {
	CardID     uuid.UUID    `json:"card_id"`
	DeckID     uuid.UUID    `json:"deck_id"`
	Type       QuestionType `json:"type"`
	Prompt     string       `json:"prompt"`
	Answer     string       `json:"answer"`
	Difficulty int          `json:"difficulty"`
	Due        bool         `json:"due"`
}

type SelectQuestionsRequest struct {
	DeckIDs             []uuid.UUID `json:"deck_ids"`
	Count               int         `json:"count"`
	QuestionTypes       []string    `json:"question_types"`
	Difficulty          string      `json:"difficulty"` // tier name or "all"
	UseSpacedRepetition bool        `json:"use_spaced_repetition"`
}

// QuestionBatch is the selector result. InsufficientPool is a partial-success
// signal, not an error: the pool could not satisfy the requested count.
type QuestionBatch struct {
	Questions        []Question `json:"questions"`
	Requested        int        `json:"requested"`
	Returned         int        `json:"returned"`
	DueCount         int        `json:"due_count"`
	InsufficientPool bool       `json:"insufficient_pool"`
}
