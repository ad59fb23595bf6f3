package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	RawDir       string
	ProcessedDir string
	HistoryDir   string
	DBPath       string

	FeedBaseURL   string
	FeedDataset   string
	FeedTimeoutMs int

	Timezone  string
	RulesPath string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RawDir:       getEnv("RAW_DIR", filepath.Join(cwd, "data", "raw")),
		ProcessedDir: getEnv("PROCESSED_DIR", filepath.Join(cwd, "data", "processed")),
		HistoryDir:   getEnv("HISTORY_DIR", filepath.Join(cwd, "data", "processed", "history")),
		DBPath:       getEnv("DB_PATH", filepath.Join(cwd, "data", "processed", "history", "carburants.db")),

		FeedBaseURL:   getEnv("FEED_BASE_URL", "https://data.economie.gouv.fr/api/records/1.0/download/"),
		FeedDataset:   getEnv("FEED_DATASET", "prix-carburants-quotidien"),
		FeedTimeoutMs: getEnvInt("FEED_TIMEOUT_MS", 180000),

		Timezone:  getEnv("TIMEZONE", "Europe/Paris"),
		RulesPath: getEnv("RULES_PATH", ""),
	}

	return cfg, nil
}

// Location resolves the reference timezone used to derive the calendar day
// of each observation.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
