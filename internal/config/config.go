package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	AI           AIConfig
	Intake       IntakeConfig
	Mail         MailConfig
	Telephony    TelephonyConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// AIConfig configures the external language-model capability.
type AIConfig struct {
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// IntakeConfig tunes the ticket intake pipeline.
type IntakeConfig struct {
	BotEmail      string
	BotName       string
	SLAHours      int
	AutoResolveAt float64
}

// MailConfig drives the inbound mailbox channel.
type MailConfig struct {
	PollIntervalSeconds int
	FetchTimeoutSeconds int
	DedupTTLHours       int
}

// TelephonyConfig holds PBX integration values.
type TelephonyConfig struct {
	APIURL string
	APIKey string
}

// NotificationConfig configures outbound email delivery.
type NotificationConfig struct {
	ResendAPIKey string
	EmailFrom    string
	WebURL       string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		AI: AIConfig{
			APIKey:         os.Getenv("OPENAI_API_KEY"),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			TimeoutSeconds: getEnvAsInt("OPENAI_TIMEOUT_SECONDS", 20),
		},
		Intake: IntakeConfig{
			BotEmail:      getEnv("INTAKE_BOT_EMAIL", "ai-bot@qoldai.kz"),
			BotName:       getEnv("INTAKE_BOT_NAME", "QoldAI Assistant"),
			SLAHours:      getEnvAsInt("INTAKE_SLA_HOURS", 24),
			AutoResolveAt: getEnvAsFloat("INTAKE_AUTO_RESOLVE_CONFIDENCE", 0.85),
		},
		Mail: MailConfig{
			PollIntervalSeconds: getEnvAsInt("EMAIL_POLL_INTERVAL_SECONDS", 120),
			FetchTimeoutSeconds: getEnvAsInt("EMAIL_FETCH_TIMEOUT_SECONDS", 30),
			DedupTTLHours:       getEnvAsInt("EMAIL_DEDUP_TTL_HOURS", 720),
		},
		Telephony: TelephonyConfig{
			APIURL: getEnv("PBX_API_URL", ""),
			APIKey: os.Getenv("PBX_API_KEY"),
		},
		Notification: NotificationConfig{
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
			EmailFrom:    getEnv("NOTIFY_EMAIL_FROM", "noreply@qoldai.kz"),
			WebURL:       getEnv("WEB_URL", "http://localhost:3000"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the AI call deadline.
func (a AIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// PollInterval returns the mailbox poll cadence.
func (m MailConfig) PollInterval() time.Duration {
	if m.PollIntervalSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(m.PollIntervalSeconds) * time.Second
}

// FetchTimeout returns the hard cap on one mailbox fetch.
func (m MailConfig) FetchTimeout() time.Duration {
	if m.FetchTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(m.FetchTimeoutSeconds) * time.Second
}

// DedupTTL returns how long processed message ids are remembered.
func (m MailConfig) DedupTTL() time.Duration {
	if m.DedupTTLHours <= 0 {
		return 30 * 24 * time.Hour
	}
	return time.Duration(m.DedupTTLHours) * time.Hour
}

// SLAOffset returns the deadline offset applied at ticket creation.
func (i IntakeConfig) SLAOffset() time.Duration {
	if i.SLAHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(i.SLAHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
