package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	MongoURI           string
	MongoDatabase      string
	RedisAddr          string
	DevMode            bool
	LogLevel           string
	CacheTTL           time.Duration
	RefreshWorkerCount int
	RefreshQueueSize   int
	UploadMaxBytes     int64
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		MongoURI:           envOr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:      envOr("MONGO_DATABASE", "putr"),
		RedisAddr:          envOr("REDIS_ADDR", "localhost:6379"),
		DevMode:            envBoolOr("DEV_MODE", devModeFromHost()),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		CacheTTL:           time.Duration(envIntOr("CACHE_TTL_SECONDS", 30)) * time.Second,
		RefreshWorkerCount: envIntOr("REFRESH_WORKER_COUNT", 1),
		RefreshQueueSize:   envIntOr("REFRESH_QUEUE_SIZE", 16),
		UploadMaxBytes:     int64(envIntOr("UPLOAD_MAX_BYTES", 1<<20)),
	}
}

// PlayersCollection returns the logical collection name for player records.
// Development mode writes to a separate namespace so test uploads never touch
// production data.
func (c Config) PlayersCollection() string {
	if c.DevMode {
		return "players_dev"
	}
	return "players"
}

// Validate checks the configuration for invalid values and returns an error
// listing every problem found.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.MongoURI == "" {
		problems = append(problems, "MONGO_URI cannot be empty")
	}
	if c.MongoDatabase == "" {
		problems = append(problems, "MONGO_DATABASE cannot be empty")
	}
	if c.RedisAddr == "" {
		problems = append(problems, "REDIS_ADDR cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if c.CacheTTL <= 0 {
		problems = append(problems, "CACHE_TTL_SECONDS must be positive")
	}
	if c.RefreshWorkerCount < 1 {
		problems = append(problems, "REFRESH_WORKER_COUNT must be at least 1")
	}
	if c.RefreshQueueSize < 1 {
		problems = append(problems, "REFRESH_QUEUE_SIZE must be at least 1")
	}
	if c.UploadMaxBytes < 1 {
		problems = append(problems, "UPLOAD_MAX_BYTES must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

// devModeFromHost mirrors the original deployment's hostname check: anything
// that is not the production host runs against the development namespace.
func devModeFromHost() bool {
	host, err := os.Hostname()
	if err != nil {
		return false
	}
	return strings.Contains(host, "local") || strings.Contains(host, "dev")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
