package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration for the gateway.
type Server struct {
	Addr string

	// ProviderRPCURL points at the wallet provider's JSON-RPC endpoint.
	// Empty means no provider is present and the gateway runs in demo mode.
	ProviderRPCURL string

	// PostgresDSN selects the Postgres remote record tier when set.
	PostgresDSN string
	// RedisURL selects the Redis remote record tier when set and no
	// Postgres DSN is configured.
	RedisURL string

	// LocalStorePath is the file backing the local fallback store.
	LocalStorePath string

	JWTSigningKey string
	SessionTTL    time.Duration

	// GAMeasurementID/GAAPISecret configure the analytics recorder; both
	// empty disables it.
	GAMeasurementID string
	GAAPISecret     string

	// KafkaBrokers/KafkaTopic configure the Kafka event recorder; empty
	// brokers disable it.
	KafkaBrokers []string
	KafkaTopic   string

	// AccountPollInterval controls how often the watcher re-checks the
	// provider for account changes.
	AccountPollInterval time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("EVIDGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	localPath := os.Getenv("EVIDGATE_LOCAL_STORE_PATH")
	if localPath == "" {
		localPath = "evidgate-local.json"
	}

	jwtSigningKey := os.Getenv("EVIDGATE_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("EVIDGATE_KAFKA_TOPIC")
	if topic == "" {
		topic = "evidgate.events"
	}

	var brokers []string
	if raw := os.Getenv("EVIDGATE_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:                addr,
		ProviderRPCURL:      os.Getenv("EVIDGATE_PROVIDER_RPC_URL"),
		PostgresDSN:         os.Getenv("EVIDGATE_POSTGRES_DSN"),
		RedisURL:            os.Getenv("EVIDGATE_REDIS_URL"),
		LocalStorePath:      localPath,
		JWTSigningKey:       jwtSigningKey,
		SessionTTL:          24 * time.Hour,
		GAMeasurementID:     os.Getenv("EVIDGATE_GA_MEASUREMENT_ID"),
		GAAPISecret:         os.Getenv("EVIDGATE_GA_API_SECRET"),
		KafkaBrokers:        brokers,
		KafkaTopic:          topic,
		AccountPollInterval: 5 * time.Second,
	}
}
