package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// HTTP API
	APIPort int

	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration
	RedisHost     string
	RedisPassword string
	RedisPort     string

	// Scoring configuration
	Scoring ScoringConfig
}

// ScoringConfig holds scoring parameters and thresholds
type ScoringConfig struct {
	// Ranking list sizes
	TopKeywordLimit     int
	ImproveKeywordLimit int

	// Noise filter: a keyword must carry more than
	// max(1, NoiseFloorPct * trailing-7-day total impressions)
	// impressions to be eligible for ranking at all.
	NoiseFloorPct float64

	// Opportunity scoring: the CTR-gap term requires at least this
	// many impressions; keywords below it are dropped from the
	// candidate pool entirely.
	MinOpportunityImpressions int64

	// Momentum windows, counted in data-bearing dates (dates with at
	// least one sample), never calendar days.
	MomentumRecentDays int
	MomentumPriorDays  int

	// Group cooldown: groups optimized within this many days are
	// suppressed from prioritized output regardless of score.
	CooldownDays int

	// Refresh loop
	RefreshIntervalMinutes int

	// Snapshot cache TTL (minutes) in Redis
	SnapshotTTLMinutes int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		APIPort: getEnvInt("API_PORT", 8080),

		// Database configuration
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "serp_radar"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "serp"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "serp123"),

		// Redis configuration
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		// Scoring configuration
		Scoring: ScoringConfig{
			TopKeywordLimit:     getEnvInt("SCORING_TOP_LIMIT", 10),
			ImproveKeywordLimit: getEnvInt("SCORING_IMPROVE_LIMIT", 10),

			NoiseFloorPct: getEnvFloat("SCORING_NOISE_FLOOR_PCT", 0.001),

			MinOpportunityImpressions: int64(getEnvInt("SCORING_MIN_OPPORTUNITY_IMPRESSIONS", 30)),

			MomentumRecentDays: getEnvInt("SCORING_MOMENTUM_RECENT_DAYS", 3),
			MomentumPriorDays:  getEnvInt("SCORING_MOMENTUM_PRIOR_DAYS", 4),

			CooldownDays: getEnvInt("SCORING_COOLDOWN_DAYS", 30),

			RefreshIntervalMinutes: getEnvInt("SCORING_REFRESH_INTERVAL", 60),
			SnapshotTTLMinutes:     getEnvInt("SCORING_SNAPSHOT_TTL", 120),
		},
	}
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvFloat gets environment variable as float64 or returns default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var floatValue float64
	if _, err := fmt.Sscanf(value, "%f", &floatValue); err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
