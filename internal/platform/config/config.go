package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server needs at startup. Values come from
// the environment so main stays lean.
type Config struct {
	Addr string

	Redis RedisConfig
	Kafka KafkaConfig

	// AccountServiceURL is the base URL of the remote account service used
	// for username availability checks and account creation.
	AccountServiceURL string
	// CaptchaServiceURL is the base URL of the anti-abuse token provider.
	// Empty disables captcha acquisition entirely.
	CaptchaServiceURL string

	// DraftTTL bounds how long an in-progress registration draft stays
	// recoverable.
	DraftTTL time.Duration
	// DebounceWindow is the quiet period for username availability checks.
	DebounceWindow time.Duration
	// LookupTimeout bounds a single username availability round trip.
	LookupTimeout time.Duration
	// SubmitTimeout bounds the account creation round trip.
	SubmitTimeout time.Duration

	// VerificationSigningKey signs the short-lived verification-state token
	// returned when account creation requires email verification.
	VerificationSigningKey string

	// AuditPostgresDSN enables the durable audit store when set. Without it
	// audit events stay in memory.
	AuditPostgresDSN string
}

// RedisConfig controls the optional Redis-backed draft store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig controls the optional Kafka audit publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables with development
// defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:              envOr("ONBOARD_ADDR", ":8080"),
		AccountServiceURL: envOr("ONBOARD_ACCOUNT_SERVICE_URL", "http://localhost:9090"),
		CaptchaServiceURL: os.Getenv("ONBOARD_CAPTCHA_SERVICE_URL"),
		DraftTTL:          envDuration("ONBOARD_DRAFT_TTL", 24*time.Hour),
		DebounceWindow:    envDuration("ONBOARD_DEBOUNCE_WINDOW", 500*time.Millisecond),
		LookupTimeout:     envDuration("ONBOARD_LOOKUP_TIMEOUT", 5*time.Second),
		SubmitTimeout:     envDuration("ONBOARD_SUBMIT_TIMEOUT", 10*time.Second),
		Redis: RedisConfig{
			URL:          os.Getenv("ONBOARD_REDIS_URL"),
			PoolSize:     envInt("ONBOARD_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("ONBOARD_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("ONBOARD_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("ONBOARD_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("ONBOARD_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Topic: envOr("ONBOARD_KAFKA_AUDIT_TOPIC", "onboard.audit"),
		},
	}

	if brokers := os.Getenv("ONBOARD_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}

	cfg.AuditPostgresDSN = os.Getenv("ONBOARD_AUDIT_POSTGRES_DSN")

	cfg.VerificationSigningKey = os.Getenv("ONBOARD_VERIFICATION_SIGNING_KEY")
	if cfg.VerificationSigningKey == "" {
		// Development default - must be overridden in production.
		cfg.VerificationSigningKey = "dev-secret-key-change-in-production"
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
