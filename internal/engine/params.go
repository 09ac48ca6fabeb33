package engine

import "lexica-backend/internal/models"

// Params holds every tunable the engine uses. Values come from config so
// tier cut points and step sizes can be adjusted without a deploy of new code.
type Params struct {
	// Classifier tiering
	BeginnerMax int // total_difficulty below this is beginner
	AdvancedMin int // total_difficulty at or above this is advanced

	// Scheduler
	InitialEase     float64
	MinEase         float64
	MaxEase         float64
	EaseFailStep    float64
	EaseFastBonus   float64
	FastAnswerMs    int
	MaxIntervalDays int

	// Progression
	XPPerCorrect        int
	XPDifficultyDivisor int // bonus XP = correct * difficulty / divisor
	XPSpeedBonus        int
	FastSessionSecPerQ  int
	XPPerLevel          int
	MaxLevel            int
	HighAccuracy        float64
	LowAccuracy         float64
	DifficultyStep      int
	InitialDifficulty   int

	// Selection
	BandWidth int // difficulty gap at which a card's sampling weight halves
}

// DefaultParams are the fallbacks used when no configuration overrides them.
func DefaultParams() Params {
	return Params{
		BeginnerMax: 35,
		AdvancedMin: 70,

		InitialEase:     2.5,
		MinEase:         1.3,
		MaxEase:         2.5,
		EaseFailStep:    0.2,
		EaseFastBonus:   0.05,
		FastAnswerMs:    5000,
		MaxIntervalDays: 365,

		XPPerCorrect:        10,
		XPDifficultyDivisor: 10,
		XPSpeedBonus:        15,
		FastSessionSecPerQ:  10,
		XPPerLevel:          100,
		MaxLevel:            50,
		HighAccuracy:        80,
		LowAccuracy:         50,
		DifficultyStep:      5,
		InitialDifficulty:   30,

		BandWidth: 15,
	}
}

// TierFor maps a total difficulty score onto its tier.
func (p Params) TierFor(total int) models.DifficultyLevel {
	switch {
	case total < p.BeginnerMax:
		return models.DifficultyBeginner
	case total >= p.AdvancedMin:
		return models.DifficultyAdvanced
	default:
		return models.DifficultyIntermediate
	}
}

// MasteryFor maps a repetition count onto its mastery bucket.
func MasteryFor(repetitions int) models.MasteryLevel {
	switch {
	case repetitions >= 5:
		return models.MasteryMastered
	case repetitions >= 2:
		return models.MasteryFamiliar
	default:
		return models.MasteryLearning
	}
}
