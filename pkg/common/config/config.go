package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerHost     string
	ServerPort     string
	BridgePort     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database (remote store; empty host means "not configured" and the
	// tracker runs against the local cache only)
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis (local store)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers   []string
	KafkaGroupID   string
	LeadEventTopic string

	// Board presentation config (YAML)
	BoardConfigPath string

	// Telegram notifier
	TelegramBotToken string
	TelegramChatID   string

	// OAuth connect
	ThumbtackClientID     string
	ThumbtackClientSecret string
	ThumbtackRedirectURL  string
	GmailClientID         string
	GmailClientSecret     string
	GmailRedirectURL      string
}

func Load() *Config {
	return &Config{
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		BridgePort:     getEnv("BRIDGE_PORT", "8081"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", ""),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "journeyboard"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "journeyboard"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:   getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:   getEnv("KAFKA_GROUP_ID", "journeyboard"),
		LeadEventTopic: getEnv("LEAD_EVENT_TOPIC", "leads.incoming"),

		BoardConfigPath: getEnv("BOARD_CONFIG_PATH", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),

		ThumbtackClientID:     getEnv("THUMBTACK_CLIENT_ID", ""),
		ThumbtackClientSecret: getEnv("THUMBTACK_CLIENT_SECRET", ""),
		ThumbtackRedirectURL:  getEnv("THUMBTACK_REDIRECT_URL", ""),
		GmailClientID:         getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret:     getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURL:      getEnv("GMAIL_REDIRECT_URL", ""),
	}
}

// PostgresConfigured reports whether a remote store was configured. The
// result gates which backend is authoritative and is read once at service
// construction, never ad hoc per call site.
func (c *Config) PostgresConfigured() bool {
	return c.PostgresHost != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
