package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	StoreBackend    string
	DatabaseURL     string
	MongoDBURI      string
	MongoDBDatabase string
	FallbackPath    string

	RedisAddr      string
	RedisPassword  string
	RabbitMQURL    string
	EventsExchange string

	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	GeminiAPIKey string
	GeminiModel  string

	SettlementDelay   time.Duration
	BookingWindowDays int
	WorkflowTTL       time.Duration
	SlotHoldTTL       time.Duration

	AllowedOrigins []string
}

const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnvWithDefault("PORT", "9090"),
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),

		StoreBackend:    getEnvWithDefault("STORE_BACKEND", BackendPostgres),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBDatabase: getEnvWithDefault("MONGODB_DATABASE", "turfhub"),
		FallbackPath:    getEnvWithDefault("FALLBACK_PATH", "turfhub-fallback.db"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		EventsExchange: getEnvWithDefault("EVENTS_EXCHANGE", "turf.events"),

		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvWithDefault("GEMINI_MODEL", "gemini-1.5-flash"),

		AllowedOrigins: splitList(getEnvWithDefault("ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	var err error
	if cfg.SettlementDelay, err = getEnvDuration("SETTLEMENT_DELAY", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.BookingWindowDays, err = getEnvInt("BOOKING_WINDOW_DAYS", 7); err != nil {
		return nil, err
	}
	if cfg.WorkflowTTL, err = getEnvDuration("WORKFLOW_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SlotHoldTTL, err = getEnvDuration("SLOT_HOLD_TTL", 30*time.Second); err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case BackendMongo:
		if cfg.MongoDBURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is required")
		}
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMongo, cfg.StoreBackend)
	}

	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.SupabaseAnonKey == "" {
		return nil, fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	if cfg.BookingWindowDays < 1 {
		return nil, fmt.Errorf("BOOKING_WINDOW_DAYS must be positive")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
