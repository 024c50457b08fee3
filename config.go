package main

import (
	"os"
	"strings"
	"time"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port            string
	Env             string
	RedisURL        string
	KafkaBrokers    []string
	SettlementTopic string
	ConsumerGroupID string
	OrderCacheTTL   time.Duration
}

// LoadConfig reads configuration from environment variables with sane defaults.
func LoadConfig() Config {
	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		SettlementTopic: getEnv("KAFKA_SETTLEMENT_TOPIC", "payments.settled"),
		ConsumerGroupID: getEnv("KAFKA_CONSUMER_GROUP", "transaction-recorder"),
		OrderCacheTTL:   getDurationEnv("ORDER_CACHE_TTL", time.Hour),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
