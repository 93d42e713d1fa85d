package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is read once at startup; backend selection is a pure function of
// it for the life of the process.
type Config struct {
	Addr         string
	DatabaseURL  string
	DataFile     string
	EditPassword string
	LogLevel     string

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads .env if present, then the environment.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:         getenv("ADDR", ":8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DataFile:     getenv("CLAWBAN_DATA_FILE", filepath.Join("data", "board.json")),
		EditPassword: os.Getenv("CLAWBAN_EDIT_PASSWORD"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
	}

	cfg.CORSOrigins = splitList(getenv("CORS_ORIGINS", "*"))
	if v, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64); err == nil && v > 0 {
		cfg.RateLimitRPS = v
	}
	cfg.RateLimitBurst = 10
	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST")); err == nil && v > 0 {
		cfg.RateLimitBurst = v
	}
	return cfg
}

// StorageMode selects the backend: a relational connection string means
// "db", otherwise the local JSON document.
func (c Config) StorageMode() string {
	if c.DatabaseURL != "" {
		return "db"
	}
	return "json"
}

// EditEnabled reports whether mutations can ever be unlocked.
func (c Config) EditEnabled() bool { return c.EditPassword != "" }

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
