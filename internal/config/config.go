package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port            int
	LogLevel        string
	RedisAddr       string
	SessionTTLHours int
	DatabaseURL     string
	NatsURL         string
	NatsToken       string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	OracleTimeout   int
	PlatformBaseURL string
	PlatformSecret  string
	BotOperatorID   string
	HumanOperatorID string
	WorkerCount     int
	QueueSize       int
}

func Load() Config {
	return Config{
		Port:            envInt("USHER_PORT", 8760),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		RedisAddr:       envStr("REDIS_ADDR", "localhost:6379"),
		SessionTTLHours: envInt("SESSION_TTL_HOURS", 720),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		NatsURL:         envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:       envStr("NATS_TOKEN", ""),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", ""),
		OpenAIModel:     envStr("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:   envStr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OracleTimeout:   envInt("ORACLE_TIMEOUT_SECS", 30),
		PlatformBaseURL: envStr("PLATFORM_BASE_URL", ""),
		PlatformSecret:  envStr("PLATFORM_SECRET", ""),
		BotOperatorID:   envStr("BOT_OPERATOR_ID", ""),
		HumanOperatorID: envStr("HUMAN_OPERATOR_ID", ""),
		WorkerCount:     envInt("USHER_WORKERS", 8),
		QueueSize:       envInt("USHER_QUEUE_SIZE", 256),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
