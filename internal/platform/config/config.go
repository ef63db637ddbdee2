package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	liststr "github.com/aadya-khanna/OpenScore/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string

	JWT       JWTConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Plaid     PlaidConfig
	Gemini    GeminiConfig
	Documents DocumentsConfig

	// DataEncryptionKey seals provider access tokens at rest.
	DataEncryptionKey string
	// SyncSchedule is a five-field cron expression; empty disables scheduled sync.
	SyncSchedule string
	// EvaluationTimeout bounds input gathering for one score.
	EvaluationTimeout time.Duration
}

// JWTConfig configures bearer token validation.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// DatabaseConfig configures PostgreSQL. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig configures the extracted-text cache. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures score event publishing. No brokers means events
// are only logged.
type KafkaConfig struct {
	Brokers    []string
	ScoreTopic string
}

// PlaidConfig configures the aggregation provider client.
type PlaidConfig struct {
	ClientID     string
	Secret       string
	Env          string
	Products     []string
	CountryCodes []string
}

// Sandbox reports whether the sandbox environment is selected.
func (p PlaidConfig) Sandbox() bool {
	return p.Env == "sandbox"
}

// GeminiConfig configures summary generation. An empty key disables it.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// DocumentsConfig configures statement upload storage.
type DocumentsConfig struct {
	Dir            string
	MaxUploadBytes int64
	TextCacheTTL   time.Duration
}

const devSigningKey = "dev-secret-key-change-in-production"

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:        getEnv("OPENSCORE_ADDR", ":8080"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		JWT: JWTConfig{
			// Use a default for development - should be overridden in production
			SigningKey: getEnv("JWT_SIGNING_KEY", devSigningKey),
			Issuer:     os.Getenv("JWT_ISSUER"),
			Audience:   os.Getenv("JWT_AUDIENCE"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: getInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    liststr.SplitList(os.Getenv("KAFKA_BROKERS")),
			ScoreTopic: getEnv("KAFKA_SCORE_TOPIC", "openscore.scores"),
		},
		Plaid: PlaidConfig{
			ClientID:     os.Getenv("PLAID_CLIENT_ID"),
			Secret:       os.Getenv("PLAID_SECRET"),
			Env:          getEnv("PLAID_ENV", "sandbox"),
			Products:     liststr.SplitListLower(getEnv("PLAID_PRODUCTS", "auth,transactions")),
			CountryCodes: liststr.SplitListUpper(getEnv("PLAID_COUNTRY_CODES", "US")),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Documents: DocumentsConfig{
			Dir:            getEnv("DOCUMENTS_DIR", "./data/documents"),
			MaxUploadBytes: int64(getInt("DOCUMENTS_MAX_UPLOAD_BYTES", 20<<20)),
			TextCacheTTL:   getDuration("DOCUMENTS_TEXT_CACHE_TTL", 24*time.Hour),
		},

		DataEncryptionKey: os.Getenv("DATA_ENCRYPTION_KEY"),
		SyncSchedule:      os.Getenv("SYNC_SCHEDULE"),
		EvaluationTimeout: getDuration("EVALUATION_TIMEOUT", 10*time.Second),
	}
}

// Validate reports missing or unusable settings. Development mode tolerates
// the default signing key.
func (s Server) Validate() error {
	var errs []error
	if s.JWT.SigningKey == "" {
		errs = append(errs, errors.New("JWT_SIGNING_KEY is required"))
	}
	if s.Environment == "production" && s.JWT.SigningKey == devSigningKey {
		errs = append(errs, errors.New("JWT_SIGNING_KEY must be set in production"))
	}
	if s.Plaid.ClientID != "" && s.Plaid.Secret == "" {
		errs = append(errs, errors.New("PLAID_SECRET is required when PLAID_CLIENT_ID is set"))
	}
	switch s.Plaid.Env {
	case "sandbox", "development", "production":
	default:
		errs = append(errs, errors.New("PLAID_ENV must be sandbox, development or production"))
	}
	if s.Plaid.ClientID != "" && s.DataEncryptionKey == "" {
		errs = append(errs, errors.New("DATA_ENCRYPTION_KEY is required when PLAID_CLIENT_ID is set"))
	}
	if s.Documents.Dir == "" {
		errs = append(errs, errors.New("DOCUMENTS_DIR is required"))
	}
	if s.EvaluationTimeout <= 0 {
		errs = append(errs, errors.New("EVALUATION_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
