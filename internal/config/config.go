package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// defaultJWTSecret signs tokens in local development only. validate
// refuses it when APP_ENV is production.
const defaultJWTSecret = "dev-secret"

// Config aggregates the runtime settings for the helpdesk service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Storage      StorageConfig
	Events       EventsConfig
	Notification NotificationConfig
}

// AppConfig controls the HTTP listener and request handling.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig tunes the connection pool for the primary store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig points at the instance backing the event mirror.
type RedisConfig struct {
	Addr               string
	Password           string
	DB                 int
	DialTimeoutSeconds int
}

// LoggerConfig selects log verbosity and encoding.
type LoggerConfig struct {
	Level  string
	Format string
}

// AuthConfig covers token signing, password hashing and reset token life.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	PasswordResetTTLMinutes int
	BcryptCost              int
}

// StorageConfig locates the attachment file store.
type StorageConfig struct {
	Dir string
}

// EventsConfig controls the Redis event fan-out.
type EventsConfig struct {
	RedisEnabled bool
	RedisChannel string
}

// NotificationConfig configures the outbound email and webhook channels.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads settings from the environment, consulting a .env file when
// one is present. Defaults suit local development; combinations a server
// cannot safely boot with are rejected.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redis, err := loadRedis()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App:          loadApp(),
		Postgres:     loadPostgres(),
		Redis:        redis,
		Logger:       loadLogger(),
		Auth:         loadAuth(),
		Storage:      loadStorage(),
		Events:       loadEvents(),
		Notification: loadNotification(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadApp() AppConfig {
	return AppConfig{
		Name:                  envString("APP_NAME", "isp-helpdesk"),
		Env:                   envString("APP_ENV", "development"),
		Host:                  envString("APP_HOST", "0.0.0.0"),
		Port:                  envString("APP_PORT", "8080"),
		Version:               envString("APP_VERSION", "dev"),
		RequestTimeoutSeconds: envInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
	}
}

func loadPostgres() PostgresConfig {
	return PostgresConfig{
		DSN:            envString("POSTGRES_DSN", ""),
		MaxConns:       int32(envInt("POSTGRES_MAX_CONNS", 10)),
		MinConns:       int32(envInt("POSTGRES_MIN_CONNS", 2)),
		RunMigrations:  envBool("POSTGRES_RUN_MIGRATIONS", true),
		ConnMaxIdleSec: int32(envInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
		ConnMaxLifeSec: int32(envInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
	}
}

func loadRedis() (RedisConfig, error) {
	db, err := strconv.Atoi(envString("REDIS_DB", "0"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	return RedisConfig{
		Addr:               envString("REDIS_ADDR", "127.0.0.1:6379"),
		Password:           os.Getenv("REDIS_PASSWORD"),
		DB:                 db,
		DialTimeoutSeconds: envInt("REDIS_DIAL_TIMEOUT_SECONDS", 5),
	}, nil
}

func loadLogger() LoggerConfig {
	return LoggerConfig{
		Level:  envString("LOG_LEVEL", "info"),
		Format: envString("LOG_FORMAT", "json"),
	}
}

func loadAuth() AuthConfig {
	return AuthConfig{
		JWTSecret:               envString("AUTH_JWT_SECRET", defaultJWTSecret),
		AccessTokenTTLMinutes:   envInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		PasswordResetTTLMinutes: envInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30),
		BcryptCost:              envInt("AUTH_BCRYPT_COST", 12),
	}
}

func loadStorage() StorageConfig {
	return StorageConfig{Dir: envString("STORAGE_DIR", "data/attachments")}
}

func loadEvents() EventsConfig {
	return EventsConfig{
		RedisEnabled: envBool("EVENTS_REDIS_ENABLED", true),
		RedisChannel: envString("EVENTS_REDIS_CHANNEL", "helpdesk.events"),
	}
}

func loadNotification() NotificationConfig {
	return NotificationConfig{
		EmailFrom:  envString("NOTIFY_EMAIL_FROM", "support@example.net"),
		WebhookURL: envString("NOTIFY_WEBHOOK_URL", ""),
	}
}

// validate rejects settings a server cannot safely boot with.
func (c *Config) validate() error {
	if _, err := strconv.Atoi(c.App.Port); err != nil {
		return fmt.Errorf("invalid APP_PORT %q: %w", c.App.Port, err)
	}
	if c.App.Env == "production" && c.Auth.JWTSecret == defaultJWTSecret {
		return errors.New("AUTH_JWT_SECRET must be set when APP_ENV is production")
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (a AppConfig) Addr() string {
	return a.Host + ":" + a.Port
}

// RequestTimeout converts the configured timeout to a duration.
// Zero or negative disables the per-request deadline.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// envString returns the trimmed value of key, or fallback when the
// variable is unset or blank.
func envString(key, fallback string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	return val
}

// envInt parses key as an integer. Unset, blank or unparseable values
// yield the fallback.
func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

// envBool parses key with strconv.ParseBool semantics. Unset, blank or
// unparseable values yield the fallback.
func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
