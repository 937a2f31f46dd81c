// Package config provides application configuration management using environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Ledger   LedgerConfig
	Session  SessionConfig
	Jobs     JobsConfig
	Logging  LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPPort string
	GRPCPort string
	Host     string
	Env      string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MigrationsPath string
	// TxMaxWait bounds how long a transaction waits for a pooled connection
	TxMaxWait time.Duration
	// TxTimeout bounds how long a transaction may run once started
	TxTimeout time.Duration
}

// RedisConfig holds cache configuration. An empty URL disables caching.
type RedisConfig struct {
	URL           string
	TierTTL       time.Duration
	MembershipTTL time.Duration
}

// KafkaConfig holds event publishing configuration. No brokers disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// LedgerConfig holds the Buzz ledger client configuration
type LedgerConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Timeout      time.Duration
	// RequestsPerSecond is the client-side budget per ledger route until the API reports its own limits
	RequestsPerSecond int
}

// SessionConfig holds viewer session resolution configuration
type SessionConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

// JobsConfig holds background job configuration
type JobsConfig struct {
	ExpirySchedule string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
// It optionally loads from a .env file if it exists
func Load() (*Config, error) {
	// Try to load .env file (optional, ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Server = ServerConfig{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		GRPCPort: getEnv("GRPC_PORT", "50051"),
		Host:     getEnv("SERVER_HOST", "localhost"),
		Env:      getEnv("ENVIRONMENT", "development"),
	}

	maxOpenConns, _ := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	maxIdleConns, _ := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "5"))

	txMaxWait, err := getDuration("DB_TX_MAX_WAIT", "10s")
	if err != nil {
		return nil, err
	}
	txTimeout, err := getDuration("DB_TX_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	cfg.Database = DatabaseConfig{
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnv("DB_PORT", "5432"),
		User:           getEnv("DB_USER", "clubs"),
		Password:       getEnv("DB_PASSWORD", ""),
		Name:           getEnv("DB_NAME", "clubs_db"),
		SSLMode:        getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:   maxOpenConns,
		MaxIdleConns:   maxIdleConns,
		MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "internal/database/migrations"),
		TxMaxWait:      txMaxWait,
		TxTimeout:      txTimeout,
	}

	tierTTL, err := getDuration("REDIS_TIER_TTL", "5m")
	if err != nil {
		return nil, err
	}
	membershipTTL, err := getDuration("REDIS_MEMBERSHIP_TTL", "1m")
	if err != nil {
		return nil, err
	}

	cfg.Redis = RedisConfig{
		URL:           getEnv("REDIS_URL", ""),
		TierTTL:       tierTTL,
		MembershipTTL: membershipTTL,
	}

	cfg.Kafka = KafkaConfig{
		Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
		Topic:   getEnv("KAFKA_TOPIC", "club-events"),
	}

	ledgerTimeout, err := getDuration("LEDGER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	ledgerRate, _ := strconv.Atoi(getEnv("LEDGER_RATE_LIMIT", "20"))

	cfg.Ledger = LedgerConfig{
		BaseURL:           getEnv("LEDGER_BASE_URL", ""),
		ClientID:          getEnv("LEDGER_CLIENT_ID", ""),
		ClientSecret:      getEnv("LEDGER_CLIENT_SECRET", ""),
		TokenURL:          getEnv("LEDGER_TOKEN_URL", ""),
		Timeout:           ledgerTimeout,
		RequestsPerSecond: ledgerRate,
	}

	sessionCacheSize, _ := strconv.Atoi(getEnv("SESSION_CACHE_SIZE", "10000"))
	sessionCacheTTL, err := getDuration("SESSION_CACHE_TTL", "1m")
	if err != nil {
		return nil, err
	}

	cfg.Session = SessionConfig{
		CacheSize: sessionCacheSize,
		CacheTTL:  sessionCacheTTL,
	}

	cfg.Jobs = JobsConfig{
		ExpirySchedule: getEnv("MEMBERSHIP_EXPIRY_SCHEDULE", "@every 1h"),
	}

	cfg.Logging = LoggingConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate Database Config
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.TxMaxWait <= 0 {
		return fmt.Errorf("DB_TX_MAX_WAIT must be positive")
	}
	if c.Database.TxTimeout <= 0 {
		return fmt.Errorf("DB_TX_TIMEOUT must be positive")
	}

	// Validate Redis Config
	if c.Redis.URL != "" {
		if c.Redis.TierTTL <= 0 || c.Redis.MembershipTTL <= 0 {
			return fmt.Errorf("REDIS_TIER_TTL and REDIS_MEMBERSHIP_TTL must be positive")
		}
	}

	// Validate Kafka Config
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	// Validate Ledger Config
	if c.Ledger.BaseURL == "" {
		return fmt.Errorf("LEDGER_BASE_URL is required")
	}
	if _, err := url.ParseRequestURI(c.Ledger.BaseURL); err != nil {
		return fmt.Errorf("LEDGER_BASE_URL must be a valid URL: %w", err)
	}
	if c.Ledger.ClientID != "" && (c.Ledger.ClientSecret == "" || c.Ledger.TokenURL == "") {
		return fmt.Errorf("LEDGER_CLIENT_SECRET and LEDGER_TOKEN_URL are required with LEDGER_CLIENT_ID")
	}

	// Validate Session Config
	if c.Session.CacheSize <= 0 {
		return fmt.Errorf("SESSION_CACHE_SIZE must be positive")
	}

	// Validate Jobs Config
	if c.Jobs.ExpirySchedule != "" {
		if _, err := cron.ParseStandard(c.Jobs.ExpirySchedule); err != nil {
			return fmt.Errorf("MEMBERSHIP_EXPIRY_SCHEDULE is invalid: %w", err)
		}
	}

	// Validate Logging Config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "console": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}

	return nil
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// getEnv retrieves an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getDuration parses a duration environment variable
func getDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
