// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full runtime configuration of the portal.
type Config struct {
	Server    Server
	Database  Database
	Redis     Redis
	Kafka     Kafka
	Auth      Auth
	Admission Admission
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Database points at PostgreSQL. An empty DSN switches the portal to the
// in-memory stores, which is only meant for local development.
type Database struct {
	DSN string
}

// Redis points at the lockout store. Empty URL disables Redis and falls back
// to in-process lockout state.
type Redis struct {
	URL string
}

// Kafka configures the audit outbox relay. No brokers means the relay is not
// started and audit events stay in the outbox table.
type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// Auth captures token and lockout policy, plus the optional bootstrap admin
// account created at startup when both fields are set.
type Auth struct {
	JWTSigningKey    string
	Issuer           string
	TokenExpiry      time.Duration
	MaxLoginAttempts int
	FailureWindow    time.Duration
	LockoutDuration  time.Duration
	AdminUsername    string
	AdminPassword    string
}

// Admission identifies the running admission period. Year and Wave feed the
// registration code format.
type Admission struct {
	Year string
	Wave string
}

// FromEnv builds the configuration from environment variables with
// development defaults.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            getenv("PPDB_ADDR", ":8080"),
			ShutdownTimeout: getduration("PPDB_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: Database{
			DSN: os.Getenv("PPDB_DB_DSN"),
		},
		Redis: Redis{
			URL: os.Getenv("PPDB_REDIS_URL"),
		},
		Kafka: Kafka{
			Brokers:    splitlist(os.Getenv("PPDB_KAFKA_BROKERS")),
			AuditTopic: getenv("PPDB_AUDIT_TOPIC", "ppdb.audit"),
		},
		Auth: Auth{
			// Override in production.
			JWTSigningKey:    getenv("PPDB_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:           getenv("PPDB_JWT_ISSUER", "ppdb"),
			TokenExpiry:      time.Duration(getint("PPDB_TOKEN_EXPIRY_HOURS", 12)) * time.Hour,
			MaxLoginAttempts: getint("PPDB_MAX_LOGIN_ATTEMPTS", 5),
			FailureWindow:    getduration("PPDB_LOGIN_FAILURE_WINDOW", 15*time.Minute),
			LockoutDuration:  getduration("PPDB_LOGIN_LOCKOUT_DURATION", 15*time.Minute),
			AdminUsername:    os.Getenv("PPDB_ADMIN_USERNAME"),
			AdminPassword:    os.Getenv("PPDB_ADMIN_PASSWORD"),
		},
		Admission: Admission{
			Year: getenv("PPDB_ADMISSION_YEAR", "2026"),
			Wave: getenv("PPDB_ADMISSION_WAVE", "G1"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
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

func getduration(key string, fallback time.Duration) time.Duration {
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

func splitlist(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
