package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	strutil "surebet/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	Environment     string
	LogLevel        string
	ShutdownTimeout time.Duration

	// AdminTokenHash is the bcrypt hash of the admin API token. Admin routes
	// are disabled when empty.
	AdminTokenHash string

	Redis        RedisConfig
	Postgres     PostgresConfig
	Kafka        KafkaConfig
	SMTP         SMTPConfig
	Session      SessionConfig
	GenModel     GenModelConfig
	AccessGate   AccessGateConfig
	Verification VerificationConfig
	RateLimit    RateLimitConfig
}

// RedisConfig configures the session store backend. Sessions fall back to
// the in-process store when URL is empty.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures attempt and audit persistence. Attempts are kept
// in memory when URL is empty.
type PostgresConfig struct {
	URL            string
	MaxConns       int32
	MigrateOnStart bool
}

type KafkaConfig struct {
	Brokers        []string
	AuditTopic     string
	OutboxInterval time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// ReviewInbox receives a notification for each attempt routed to review.
	ReviewInbox string
}

type SessionConfig struct {
	SigningKey   string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type GenModelConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// OCREnabled controls whether the ID document is read back; when off the
	// engine skips the name and date of birth checks.
	OCREnabled bool
}

type AccessGateConfig struct {
	PolicyFile string
}

type VerificationConfig struct {
	EvidenceTimeout time.Duration
	DraftTTL        time.Duration
	MinimumAge      int
}

// RateLimitConfig caps KYC submissions per client IP. Counters live in Redis
// when it is configured.
type RateLimitConfig struct {
	Disabled     bool
	SubmitLimit  int
	SubmitWindow time.Duration
}

// IsDevelopment reports whether the service runs outside production.
func (s Server) IsDevelopment() bool {
	return s.Environment != "production"
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:            envString("SUREBET_ADDR", ":8080"),
		Environment:     envString("SUREBET_ENV", "development"),
		LogLevel:        envString("LOG_LEVEL", "info"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		AdminTokenHash:  os.Getenv("ADMIN_TOKEN_HASH"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL:            os.Getenv("DATABASE_URL"),
			MaxConns:       int32(envInt("DATABASE_MAX_CONNS", 10)),
			MigrateOnStart: envBool("DATABASE_MIGRATE", true),
		},
		Kafka: KafkaConfig{
			Brokers:        envList("KAFKA_BROKERS"),
			AuditTopic:     envString("KAFKA_AUDIT_TOPIC", "surebet.audit"),
			OutboxInterval: envDuration("KAFKA_OUTBOX_INTERVAL", 2*time.Second),
		},
		SMTP: SMTPConfig{
			Host:        os.Getenv("SMTP_HOST"),
			Port:        envInt("SMTP_PORT", 587),
			Username:    os.Getenv("SMTP_USERNAME"),
			Password:    os.Getenv("SMTP_PASSWORD"),
			From:        envString("SMTP_FROM", "SureBet Compliance <no-reply@surebet.local>"),
			ReviewInbox: os.Getenv("KYC_REVIEW_INBOX"),
		},
		Session: SessionConfig{
			SigningKey:   os.Getenv("SESSION_SIGNING_KEY"),
			TTL:          envDuration("SESSION_TTL", 7*24*time.Hour),
			CookieName:   envString("SESSION_COOKIE_NAME", "surebet-session"),
			CookieSecure: envBool("SESSION_COOKIE_SECURE", false),
		},
		GenModel: GenModelConfig{
			BaseURL:    os.Getenv("GENMODEL_BASE_URL"),
			APIKey:     os.Getenv("GENMODEL_API_KEY"),
			Timeout:    envDuration("GENMODEL_TIMEOUT", 30*time.Second),
			OCREnabled: envBool("KYC_OCR_ENABLED", true),
		},
		AccessGate: AccessGateConfig{
			PolicyFile: os.Getenv("ACCESS_GATE_POLICY_FILE"),
		},
		Verification: VerificationConfig{
			EvidenceTimeout: envDuration("KYC_EVIDENCE_TIMEOUT", 45*time.Second),
			DraftTTL:        envDuration("KYC_DRAFT_TTL", 30*time.Minute),
			MinimumAge:      envInt("KYC_MINIMUM_AGE", 18),
		},
		RateLimit: RateLimitConfig{
			Disabled:     envBool("RATE_LIMIT_DISABLED", false),
			SubmitLimit:  envInt("RATE_LIMIT_KYC_SUBMITS", 10),
			SubmitWindow: envDuration("RATE_LIMIT_KYC_WINDOW", time.Hour),
		},
	}

	if cfg.Session.SigningKey == "" {
		if !cfg.IsDevelopment() {
			return Server{}, fmt.Errorf("SESSION_SIGNING_KEY is required in production")
		}
		// Use a default for development - should be overridden in production
		cfg.Session.SigningKey = "dev-session-key-change-in-production"
	}
	if !cfg.IsDevelopment() && !cfg.Session.CookieSecure {
		cfg.Session.CookieSecure = true
	}
	if cfg.GenModel.BaseURL == "" {
		return Server{}, fmt.Errorf("GENMODEL_BASE_URL is required")
	}
	if cfg.Verification.MinimumAge < 18 {
		return Server{}, fmt.Errorf("KYC_MINIMUM_AGE must be at least 18, got %d", cfg.Verification.MinimumAge)
	}
	if !cfg.RateLimit.Disabled && (cfg.RateLimit.SubmitLimit <= 0 || cfg.RateLimit.SubmitWindow <= 0) {
		return Server{}, fmt.Errorf("RATE_LIMIT_KYC_SUBMITS and RATE_LIMIT_KYC_WINDOW must be positive")
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func envList(key string) []string {
	return strutil.SplitList(os.Getenv(key))
}
