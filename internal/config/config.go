package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"lexica-backend/internal/engine"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Frontend
	FrontendURL string

	// Workers
	ClassificationWorkers int

	// Optimistic-write retry budget for scheduler/progression commits
	WriteRetries int

	// Engine tunables
	Engine engine.Params
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		Env:         getEnvOrDefault("ENV", "development"),
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		RedisURL:    mustGetEnv("REDIS_URL"),
		JWTSecret:   mustGetEnv("JWT_SECRET"),
		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),

		ClassificationWorkers: getEnvAsIntOrDefault("CLASSIFICATION_WORKERS", 3),
		WriteRetries:          getEnvAsIntOrDefault("WRITE_RETRIES", 3),

		Engine: loadEngineParams(),
	}

	return cfg
}

// loadEngineParams overlays env settings onto the engine defaults. Tier cut
// points and step sizes are tuning decisions, so none of them is hard-coded
// in the engine itself.
func loadEngineParams() engine.Params {
	p := engine.DefaultParams()

	p.BeginnerMax = getEnvAsIntOrDefault("DIFFICULTY_BEGINNER_MAX", p.BeginnerMax)
	p.AdvancedMin = getEnvAsIntOrDefault("DIFFICULTY_ADVANCED_MIN", p.AdvancedMin)

	p.InitialEase = getEnvAsFloatOrDefault("INITIAL_EASE", p.InitialEase)
	p.MinEase = getEnvAsFloatOrDefault("MIN_EASE", p.MinEase)
	p.MaxEase = getEnvAsFloatOrDefault("MAX_EASE", p.MaxEase)
	p.EaseFailStep = getEnvAsFloatOrDefault("EASE_FAIL_STEP", p.EaseFailStep)
	p.EaseFastBonus = getEnvAsFloatOrDefault("EASE_FAST_BONUS", p.EaseFastBonus)
	p.FastAnswerMs = getEnvAsIntOrDefault("FAST_ANSWER_MS", p.FastAnswerMs)
	p.MaxIntervalDays = getEnvAsIntOrDefault("MAX_INTERVAL_DAYS", p.MaxIntervalDays)

	p.XPPerCorrect = getEnvAsIntOrDefault("XP_PER_CORRECT", p.XPPerCorrect)
	p.XPDifficultyDivisor = getEnvAsIntOrDefault("XP_DIFFICULTY_DIVISOR", p.XPDifficultyDivisor)
	p.XPSpeedBonus = getEnvAsIntOrDefault("XP_SPEED_BONUS", p.XPSpeedBonus)
	p.FastSessionSecPerQ = getEnvAsIntOrDefault("FAST_SESSION_SEC_PER_Q", p.FastSessionSecPerQ)
	p.XPPerLevel = getEnvAsIntOrDefault("XP_PER_LEVEL", p.XPPerLevel)
	p.MaxLevel = getEnvAsIntOrDefault("MAX_LEVEL", p.MaxLevel)
	p.HighAccuracy = getEnvAsFloatOrDefault("DIFFICULTY_HIGH_ACCURACY", p.HighAccuracy)
	p.LowAccuracy = getEnvAsFloatOrDefault("DIFFICULTY_LOW_ACCURACY", p.LowAccuracy)
	p.DifficultyStep = getEnvAsIntOrDefault("DIFFICULTY_STEP", p.DifficultyStep)
	p.InitialDifficulty = getEnvAsIntOrDefault("INITIAL_DIFFICULTY", p.InitialDifficulty)

	p.BandWidth = getEnvAsIntOrDefault("SELECTION_BAND_WIDTH", p.BandWidth)

	return p
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
