// Package config provides configuration for the portal services.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the portal configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Storage
	StoreDriver string // sqlite, redis, postgres
	DatabaseURL string
	RedisURL    string
	PostgresURL string

	// Question bank
	QuestionBankURL     string
	QuestionBankTimeout time.Duration

	// Messaging
	ReadReceiptDelay time.Duration
	MessagingPolicy  string // permissive, strict
	ReceiptQueue     string // memory, asynq

	// Interview
	QuestionTimeLimit time.Duration

	// WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; variables already set in the
// environment win.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:            getEnvInt("HTTP_PORT", 8080),
		StoreDriver:         getEnv("STORE_DRIVER", "sqlite"),
		DatabaseURL:         getEnv("DATABASE_URL", "file:portal.db?cache=shared&mode=rwc"),
		RedisURL:            getEnv("REDIS_URL", ""),
		PostgresURL:         getEnv("POSTGRES_URL", ""),
		QuestionBankURL:     getEnv("QUESTION_BANK_URL", ""),
		QuestionBankTimeout: time.Duration(getEnvInt("QUESTION_BANK_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadReceiptDelay:    time.Duration(getEnvInt("READ_RECEIPT_DELAY_MS", 2000)) * time.Millisecond,
		MessagingPolicy:     getEnv("MESSAGING_POLICY", "permissive"),
		ReceiptQueue:        getEnv("RECEIPT_QUEUE", "memory"),
		QuestionTimeLimit:   time.Duration(getEnvInt("QUESTION_TIME_LIMIT_S", 120)) * time.Second,
		PingInterval:        time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:        time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:         time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 60000)) * time.Millisecond,
		MaxMessageSize:      int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 65536)),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
