package engine

import (
	"math/rand"
	"sort"

	"lexica-backend/internal/models"
)

// Candidate pairs a card with its total difficulty score for selection.
type Candidate struct {
	Card       models.Card
	Difficulty int
}

// SortDueFirst orders due progress rows by how overdue they are, most
// overdue first. Ties fall back to lower ease (harder cards first).
func SortDueFirst(due []models.UserCardProgress) {
	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextReview.Equal(due[j].NextReview) {
			return due[i].NextReview.Before(due[j].NextReview)
		}
		return due[i].EaseFactor < due[j].EaseFactor
	})
}

// SampleByDifficulty draws up to n candidates without replacement, weighted
// toward cards whose difficulty is close to the user's current band. A card
// at the band center has weight 1; at BandWidth points of distance the weight
// has dropped to half, so a narrower gap always means a higher chance of
// selection.
func SampleByDifficulty(pool []Candidate, n, currentDifficulty int, p Params, rng *rand.Rand) []Candidate {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	if n > len(pool) {
		n = len(pool)
	}

	remaining := make([]Candidate, len(pool))
	copy(remaining, pool)
	weights := make([]float64, len(remaining))

	picked := make([]Candidate, 0, n)
	for len(picked) < n {
		total := 0.0
		for i, c := range remaining {
			weights[i] = sampleWeight(c.Difficulty, currentDifficulty, p.BandWidth)
			total += weights[i]
		}

		r := rng.Float64() * total
		idx := len(remaining) - 1
		for i, w := range weights[:len(remaining)] {
			r -= w
			if r <= 0 {
				idx = i
				break
			}
		}

		picked = append(picked, remaining[idx])
		remaining[idx] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}

	return picked
}

func sampleWeight(difficulty, current, bandWidth int) float64 {
	gap := difficulty - current
	if gap < 0 {
		gap = -gap
	}
	// 1 / (1 + gap/band) style falloff; always positive so every card in the
	// pool keeps a nonzero chance.
	return 1.0 / (1.0 + float64(gap)/float64(bandWidth))
}

// TypeAllowsCard reports whether a question type can be built from a card.
// Word-order questions need a full sentence to shuffle; everything else
// works for any card shape.
func TypeAllowsCard(t models.QuestionType, category models.CardCategory) bool {
	if t == models.QuestionWordOrder {
		return category == models.CategorySentence
	}
	return true
}
