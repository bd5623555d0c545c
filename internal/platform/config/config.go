package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	strutil "felicity/pkg/platform/strings"
)

// Config captures everything the server needs from the environment. main
// loads a .env file first (godotenv) so local runs don't need exports.
type Config struct {
	Addr string

	MongoURI      string
	MongoDatabase string

	Redis RedisConfig

	// LegacySessionKey signs the legacy fest_session cookie (HS256).
	LegacySessionKey string
	// LegacySessionTTL bounds how long a legacy cookie stays valid.
	LegacySessionTTL time.Duration

	// ProviderIssuer is the external identity provider base URL; empty
	// disables the provider path (legacy cookie only).
	ProviderIssuer string

	// CartTTL is how long a basket survives without checkout.
	CartTTL time.Duration

	Audit AuditConfig
}

// RedisConfig mirrors the redis client knobs we actually tune.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuditConfig controls the async audit pipeline. Empty brokers means audit
// events stay on the in-memory sink (dev mode).
type AuditConfig struct {
	Brokers []string
	Topic   string
	Buffer  int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:             getEnv("FELICITY_ADDR", ":8080"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:    getEnv("MONGO_DATABASE", "felicity"),
		LegacySessionKey: getEnv("SESSION_SIGNING_KEY", "dev-secret-key-change-in-production"),
		LegacySessionTTL: getDuration("SESSION_TTL", 12*time.Hour),
		ProviderIssuer:   os.Getenv("IDENTITY_PROVIDER_URL"),
		CartTTL:          getDuration("CART_TTL", 24*time.Hour),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Audit: AuditConfig{
			Topic:  getEnv("AUDIT_TOPIC", "felicity.audit"),
			Buffer: getInt("AUDIT_BUFFER", 256),
		},
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Audit.Brokers = strutil.DedupeAndTrimLower(strings.Split(brokers, ","))
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
