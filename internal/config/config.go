package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	StoreDriver           string
	StoreLatency          time.Duration
	InvoiceNumberTemplate string
	SeedDemoData          bool

	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	DBPath     string

	AI        AIConfig
	Reminder  ReminderConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig

	SchedulerEnabled  bool
	SchedulerInterval time.Duration
}

type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type ReminderConfig struct {
	DateLayout string
	CacheTTL   time.Duration
}

// RateLimitConfig bounds reminder dispatch. It only takes effect when redis
// is configured.
type RateLimitConfig struct {
	ReminderSendRate  float64
	ReminderSendBurst int
	SweepLockTTL      time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

const (
	StoreDriverMemory   = "memory"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverMySQL    = "mysql"
)

const (
	DefaultAIBaseURL          = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultAIModel            = "gemini-2.5-flash"
	DefaultReminderDateLayout = "02/01/2006"
	DefaultInvoiceNumber      = "INV-{SEQ3}"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	return Config{
		AppName:               getenv("APP_SERVICE", "invoicedesk"),
		AppVersion:            getenv("APP_VERSION", "0.1.0"),
		Environment:           environment,
		HTTPAddr:              getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint:          getenv("OTLP_ENDPOINT", "localhost:4317"),
		StoreDriver:           normalizeDriver(getenv("STORE_DRIVER", StoreDriverMemory)),
		StoreLatency:          getenvDuration("STORE_LATENCY", 0),
		InvoiceNumberTemplate: getenv("INVOICE_NUMBER_TEMPLATE", DefaultInvoiceNumber),
		SeedDemoData:          getenvBool("SEED_DEMO_DATA", environment == "development"),
		DBHost:                getenv("DATABASE_HOST", "localhost"),
		DBPort:                getenv("DATABASE_PORT", "5432"),
		DBName:                getenv("DATABASE_NAME", "invoicedesk"),
		DBUser:                getenv("DATABASE_USER", "postgres"),
		DBPassword:            getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:             getenv("DATABASE_SSLMODE", "disable"),
		DBPath:                getenv("DATABASE_PATH", "invoicedesk.db"),
		AI: AIConfig{
			// API_KEY is the name the dashboard has always used for the model credential.
			APIKey:  strings.TrimSpace(getenv("AI_API_KEY", os.Getenv("API_KEY"))),
			BaseURL: strings.TrimSpace(getenv("AI_BASE_URL", DefaultAIBaseURL)),
			Model:   strings.TrimSpace(getenv("AI_MODEL", DefaultAIModel)),
			Timeout: getenvDuration("AI_TIMEOUT", 15*time.Second),
		},
		Reminder: ReminderConfig{
			DateLayout: getenv("REMINDER_DATE_LAYOUT", DefaultReminderDateLayout),
			CacheTTL:   getenvDuration("REMINDER_CACHE_TTL", 0),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			ReminderSendRate:  getenvFloat("REMINDER_SEND_RATE", 1.0/60),
			ReminderSendBurst: getenvInt("REMINDER_SEND_BURST", 3),
			SweepLockTTL:      getenvDuration("SCHEDULER_LOCK_TTL", 5*time.Minute),
		},
		SchedulerEnabled:  getenvBool("SCHEDULER_ENABLED", true),
		SchedulerInterval: getenvDuration("SCHEDULER_INTERVAL", time.Hour),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) UsesDatabase() bool {
	return c.StoreDriver != StoreDriverMemory
}

func normalizeDriver(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case StoreDriverSQLite, StoreDriverPostgres, StoreDriverMySQL:
		return value
	default:
		return StoreDriverMemory
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
