package engine

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"lexica-backend/internal/models"
)

// ErrEmptyCardText is returned when a card has no front or back text.
// The service layer translates it into a validation error for the caller.
var ErrEmptyCardText = errors.New("card front and back text must not be empty")

// Component score caps. They sum to 100, which bounds total_difficulty.
const (
	maxVocabularyScore = 30
	maxGrammarScore    = 40
	maxLengthScore     = 20
	maxTypeScore       = 10
)

// Polish diacritics signal rarer vocabulary and inflected forms.
const polishDiacritics = "ąćęłńóśźż"

// Suffixes that indicate inflection, case or conjugation. Checked against
// lower-cased tokens of both sides of the card.
var grammarMarkers = []string{
	// Polish verb conjugation and case endings
	"ować", "uje", "ujesz", "ujemy", "ujecie",
	"łem", "łam", "liśmy", "łyśmy", "łbym",
	"ach", "ami", "owi", "ego", "emu", "ych", "ymi",
	// English inflection
	"ing", "ed", "ies", "est",
}

// Classify scores a card's difficulty. It is deterministic and side-effect
// free: the same front/back/category always produces the same breakdown.
func Classify(card *models.Card, p Params) (*models.CardDifficulty, error) {
	front := strings.TrimSpace(card.Front)
	back := strings.TrimSpace(card.Back)
	if front == "" || back == "" {
		return nil, ErrEmptyCardText
	}

	text := front + " " + back
	tokens := strings.Fields(strings.ToLower(text))

	vocab := clip(vocabularyScore(tokens), maxVocabularyScore)
	grammar := clip(grammarScore(tokens, text), maxGrammarScore)
	length := clip(lengthScore(text, tokens), maxLengthScore)
	typ := clip(typeScore(categoryFor(card, tokens)), maxTypeScore)

	total := vocab + grammar + length + typ

	return &models.CardDifficulty{
		CardID:          card.ID,
		VocabularyScore: vocab,
		GrammarScore:    grammar,
		LengthScore:     length,
		TypeScore:       typ,
		TotalDifficulty: total,
		DifficultyLevel: p.TierFor(total),
		ComputedAt:      time.Now().UTC(),
	}, nil
}

// vocabularyScore rises with word length and with rare characters.
func vocabularyScore(tokens []string) int {
	score := 0
	for _, tok := range tokens {
		runes := []rune(tok)
		switch {
		case len(runes) >= 10:
			score += 4
		case len(runes) >= 7:
			score += 3
		case len(runes) >= 5:
			score += 2
		default:
			score++
		}
		if strings.ContainsAny(tok, polishDiacritics) {
			score += 2
		}
	}
	return score
}

// grammarScore counts inflection/conjugation markers and clause structure.
func grammarScore(tokens []string, text string) int {
	score := 0
	for _, tok := range tokens {
		tok = strings.TrimFunc(tok, func(r rune) bool { return !unicode.IsLetter(r) })
		for _, marker := range grammarMarkers {
			if len(tok) > len(marker) && strings.HasSuffix(tok, marker) {
				score += 3
				break
			}
		}
	}
	// Commas and question marks indicate multi-clause or interrogative forms.
	score += 2 * strings.Count(text, ",")
	score += 2 * strings.Count(text, "?")
	return score
}

// lengthScore is monotonic in both character and token count.
func lengthScore(text string, tokens []string) int {
	chars := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			chars++
		}
	}
	return chars/6 + len(tokens)
}

func typeScore(category models.CardCategory) int {
	switch category {
	case models.CategorySentence:
		return 10
	case models.CategoryPhrase:
		return 6
	default:
		return 3
	}
}

// categoryFor prefers the card's stored category; otherwise it is derived
// from the token count of the front side.
func categoryFor(card *models.Card, tokens []string) models.CardCategory {
	if card.Category != "" {
		return card.Category
	}
	frontTokens := len(strings.Fields(card.Front))
	switch {
	case frontTokens <= 1:
		return models.CategoryWord
	case frontTokens <= 4:
		return models.CategoryPhrase
	default:
		return models.CategorySentence
	}
}

func clip(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
