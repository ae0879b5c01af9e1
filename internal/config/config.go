package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/diego28e/backend-wealth-builder/internal/rrule"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"

	DefaultYieldSchedule = "FREQ=DAILY;BYHOUR=9;BYMINUTE=0;BYSECOND=0"
)

type Config struct {
	// HTTP server
	Port     string
	LogLevel string

	// Storage
	DataBackend string
	DatabaseURI string

	// Chat model used by the financial advisor
	AIAPIKey  string
	AIBaseURL string
	AIModel   string

	// Receipt extraction
	GeminiAPIKey string
	GeminiModel  string

	// Receipt images
	ReceiptsBucket        string
	ReceiptsPublicBaseURL string
	GCSCredentialsFile    string

	// Yield run notifications
	TelegramToken  string
	TelegramChatID int64

	// Yield accrual
	YieldSchedule       string
	YieldAccountTimeout time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	return &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		DataBackend: getEnvOrDefault("DATA_BACKEND", BackendPostgres),
		DatabaseURI: os.Getenv("DATABASE_URI"),

		AIAPIKey:  os.Getenv("AI_API_KEY"),
		AIBaseURL: getEnvOrDefault("AI_BASE_URL", "https://openrouter.ai/api/v1"),
		AIModel:   getEnvOrDefault("AI_MODEL", "openai/gpt-4o-mini"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),

		ReceiptsBucket:        getEnvOrDefault("RECEIPTS_BUCKET", "receipts"),
		ReceiptsPublicBaseURL: getEnvOrDefault("RECEIPTS_PUBLIC_BASE_URL", "https://storage.googleapis.com"),
		GCSCredentialsFile:    os.Getenv("GCS_CREDENTIALS_FILE"),

		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: getEnvInt64("TELEGRAM_CHAT_ID", 0),

		YieldSchedule:       getEnvOrDefault("YIELD_SCHEDULE", DefaultYieldSchedule),
		YieldAccountTimeout: getEnvDuration("YIELD_ACCOUNT_TIMEOUT", 30*time.Second),
	}, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendPostgres:
		if c.DatabaseURI == "" {
			problems = append(problems, "DATABASE_URI is required when using the postgres backend")
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]",
			c.DataBackend, BackendPostgres, BackendMemory))
	}

	if _, err := rrule.NewSchedule(c.YieldSchedule, time.UTC); err != nil {
		problems = append(problems, fmt.Sprintf("invalid yield schedule '%s': %v", c.YieldSchedule, err))
	}
	if c.YieldAccountTimeout < time.Second {
		problems = append(problems, fmt.Sprintf("invalid yield account timeout %v: must be at least 1 second", c.YieldAccountTimeout))
	}

	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		problems = append(problems, "TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
