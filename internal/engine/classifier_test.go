package engine

import (
	"testing"

	"github.com/google/uuid"

	"lexica-backend/internal/models"
)

func TestClassifyDeterministic(t *testing.T) {
	card := &models.Card{
		ID:       uuid.New(),
		Front:    "dziękuję bardzo",
		Back:     "thank you very much",
		Category: models.CategoryPhrase,
	}

	first, err := Classify(card, DefaultParams())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := Classify(card, DefaultParams())
		if err != nil {
			t.Fatalf("Classify failed on repeat %d: %v", i, err)
		}
		if again.VocabularyScore != first.VocabularyScore ||
			again.GrammarScore != first.GrammarScore ||
			again.LengthScore != first.LengthScore ||
			again.TypeScore != first.TypeScore ||
			again.TotalDifficulty != first.TotalDifficulty {
			t.Fatalf("Classify not deterministic: %+v vs %+v", again, first)
		}
	}
}

func TestClassifyTotalIsComponentSum(t *testing.T) {
	cards := []*models.Card{
		{Front: "kot", Back: "cat", Category: models.CategoryWord},
		{Front: "dzień dobry", Back: "good morning", Category: models.CategoryPhrase},
		{Front: "Czy mógłbyś mi pomóc, kiedy skończysz pracować?", Back: "Could you help me when you finish working?", Category: models.CategorySentence},
		{Front: "przepraszam", Back: "excuse me"},
	}

	for _, card := range cards {
		d, err := Classify(card, DefaultParams())
		if err != nil {
			t.Fatalf("Classify(%q) failed: %v", card.Front, err)
		}
		sum := d.VocabularyScore + d.GrammarScore + d.LengthScore + d.TypeScore
		if d.TotalDifficulty != sum {
			t.Errorf("%q: total %d != component sum %d", card.Front, d.TotalDifficulty, sum)
		}
		if d.TotalDifficulty < 0 || d.TotalDifficulty > 100 {
			t.Errorf("%q: total %d outside [0,100]", card.Front, d.TotalDifficulty)
		}
	}
}

func TestClassifyComponentBounds(t *testing.T) {
	// A long, heavily inflected sentence should hit the caps, not exceed them.
	card := &models.Card{
		Front:    "Gdybyśmy wiedzieli, że będziecie pracowali, przygotowalibyśmy wszystko wcześniej, żebyście mogli odpocząć",
		Back:     "If we had known that you would be working, we would have prepared everything earlier, so that you could rest",
		Category: models.CategorySentence,
	}

	d, err := Classify(card, DefaultParams())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if d.VocabularyScore > 30 {
		t.Errorf("vocabulary_score %d exceeds 30", d.VocabularyScore)
	}
	if d.GrammarScore > 40 {
		t.Errorf("grammar_score %d exceeds 40", d.GrammarScore)
	}
	if d.LengthScore > 20 {
		t.Errorf("length_score %d exceeds 20", d.LengthScore)
	}
	if d.TypeScore > 10 {
		t.Errorf("type_score %d exceeds 10", d.TypeScore)
	}
}

func TestClassifyEmptyTextRejected(t *testing.T) {
	tests := []struct {
		name  string
		front string
		back  string
	}{
		{"empty front", "", "cat"},
		{"empty back", "kot", ""},
		{"whitespace front", "   ", "cat"},
		{"both empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Classify(&models.Card{Front: tc.front, Back: tc.back}, DefaultParams())
			if err != ErrEmptyCardText {
				t.Errorf("expected ErrEmptyCardText, got %v", err)
			}
		})
	}
}

func TestClassifyTiering(t *testing.T) {
	p := DefaultParams()

	simple, err := Classify(&models.Card{Front: "kot", Back: "cat", Category: models.CategoryWord}, p)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if simple.DifficultyLevel != models.DifficultyBeginner {
		t.Errorf("expected single short word to be beginner, got %s (total %d)", simple.DifficultyLevel, simple.TotalDifficulty)
	}

	hard, err := Classify(&models.Card{
		Front:    "Gdybyśmy wiedzieli, że będziecie pracowali, przygotowalibyśmy wszystko wcześniej",
		Back:     "If we had known that you would be working, we would have prepared everything earlier",
		Category: models.CategorySentence,
	}, p)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if hard.DifficultyLevel != models.DifficultyAdvanced {
		t.Errorf("expected inflected sentence to be advanced, got %s (total %d)", hard.DifficultyLevel, hard.TotalDifficulty)
	}
}

func TestTierForRespectsConfiguredCutPoints(t *testing.T) {
	p := DefaultParams()
	p.BeginnerMax = 20
	p.AdvancedMin = 80

	tests := []struct {
		total int
		want  models.DifficultyLevel
	}{
		{0, models.DifficultyBeginner},
		{19, models.DifficultyBeginner},
		{20, models.DifficultyIntermediate},
		{79, models.DifficultyIntermediate},
		{80, models.DifficultyAdvanced},
		{100, models.DifficultyAdvanced},
	}

	for _, tc := range tests {
		if got := p.TierFor(tc.total); got != tc.want {
			t.Errorf("TierFor(%d) = %s, want %s", tc.total, got, tc.want)
		}
	}
}
