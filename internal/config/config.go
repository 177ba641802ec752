package config

import (
	"log"
	"os"
	"strconv"
)

// Failure policies for the session state machine: what a section's total
// generation failure does to the rest of the session.
const (
	// FailurePolicyInvalidate fails the whole session on any section failure,
	// discarding sections that already completed.
	FailurePolicyInvalidate = "invalidate"
	// FailurePolicyKeepPartial keeps READY/PARTIAL_READY sessions usable; the
	// failed section simply never becomes ready.
	FailurePolicyKeepPartial = "keep-partial"
)

type Config struct {
	Port             string
	GinMode          string
	MongoURI         string
	MongoDatabase    string
	RabbitMQURI      string
	RabbitMQExchange string

	ProviderBaseURL        string
	ProviderAPIKey         string
	ProviderModel          string
	ProviderTimeoutSeconds int

	ItemsPerSection int
	BatchSize       int
	FailurePolicy   string
}

func Load() *Config {
	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "6667"),
		GinMode:          getEnvOrDefault("GIN_MODE", "debug"),
		MongoURI:         getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:    getEnvOrDefault("MONGO_DATABASE", "assessment_service"),
		RabbitMQURI:      getEnvOrDefault("RABBITMQ_URI", ""),
		RabbitMQExchange: getEnvOrDefault("RABBITMQ_EXCHANGE", ""),

		ProviderBaseURL:        getEnvOrDefault("PROVIDER_BASE_URL", "http://localhost:11434/v1"),
		ProviderAPIKey:         getEnvOrDefault("PROVIDER_API_KEY", ""),
		ProviderModel:          getEnvOrDefault("PROVIDER_MODEL", "qwen3:1.7b"),
		ProviderTimeoutSeconds: getEnvIntOrDefault("PROVIDER_TIMEOUT_SECONDS", 60),

		ItemsPerSection: getEnvIntOrDefault("ITEMS_PER_SECTION", 40),
		BatchSize:       getEnvIntOrDefault("GENERATION_BATCH_SIZE", 10),
		FailurePolicy:   getEnvOrDefault("FAILURE_POLICY", FailurePolicyInvalidate),
	}

	if cfg.FailurePolicy != FailurePolicyInvalidate && cfg.FailurePolicy != FailurePolicyKeepPartial {
		log.Printf("Unknown FAILURE_POLICY %q, using %q", cfg.FailurePolicy, FailurePolicyInvalidate)
		cfg.FailurePolicy = FailurePolicyInvalidate
	}
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
