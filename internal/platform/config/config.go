package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. Values come from the
// environment so main stays lean; defaults favor a local single-node setup.
type Config struct {
	Addr string

	// Scoring artifacts. Each file is independently optional; missing
	// artifacts degrade the model bundle rather than failing boot.
	ModelDir     string
	FallbackPath string

	// Audit log backend: "csv" (default, system of record) or "postgres".
	AuditBackend string
	AuditPath    string
	PostgresURL  string

	// Optional mirrors and caches.
	Redis        RedisConfig
	KafkaBrokers []string
	KafkaTopic   string

	// Admin endpoints require a bearer token signed with this key.
	AdminJWTKey string

	// Upper bound on concurrently scored batch rows.
	BatchWorkers int
}

// RedisConfig holds connection settings for the optional history cache.
// An empty URL disables Redis entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	HistoryTTL   time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:         envOr("KYCGATE_ADDR", ":8080"),
		ModelDir:     envOr("KYCGATE_MODEL_DIR", "model"),
		FallbackPath: envOr("KYCGATE_FALLBACK_CSV", "model/fallback.csv"),
		AuditBackend: envOr("KYCGATE_AUDIT_BACKEND", "csv"),
		AuditPath:    envOr("KYCGATE_AUDIT_LOG", "kyc_audit_log.csv"),
		PostgresURL:  os.Getenv("KYCGATE_POSTGRES_URL"),
		KafkaTopic:   envOr("KYCGATE_KAFKA_TOPIC", "kyc.verifications"),
		// Use a default for development - should be overridden in production
		AdminJWTKey:  envOr("KYCGATE_ADMIN_JWT_KEY", "dev-secret-key-change-in-production"),
		BatchWorkers: envInt("KYCGATE_BATCH_WORKERS", 4),
		Redis: RedisConfig{
			URL:          os.Getenv("KYCGATE_REDIS_URL"),
			PoolSize:     envInt("KYCGATE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("KYCGATE_REDIS_MIN_IDLE", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			HistoryTTL:   30 * time.Second,
		},
	}
	if brokers := os.Getenv("KYCGATE_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
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
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
