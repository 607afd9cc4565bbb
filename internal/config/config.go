package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	WorkerCount    int
	UseMemoryQueue bool

	// WhatsApp webhook + outbound provider
	WhatsAppVerifyToken string
	WAProvider          string
	D360APIKey          string
	D360BaseURL         string
	WACloudToken        string
	WAPhoneNumberID     string
	SendTimeout         time.Duration

	// Session store
	SessionBackend string
	SessionFile    string
	SessionTTL     time.Duration
	RedisAddr      string
	RedisPassword  string
	RedisTLS       bool

	// Field extraction
	BedrockModelID string
	GeminiAPIKey   string
	GeminiModelID  string
	ExtractTimeout time.Duration

	// Orders persistence
	DatabaseURL string

	// Operator notifications
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	OperatorEmail     string

	// AWS (SQS queue, Bedrock)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	DialogueQueueURL    string
}

const (
	// SessionBackendMemory keeps sessions in process memory only.
	SessionBackendMemory = "memory"
	// SessionBackendRedis persists sessions to Redis with a TTL.
	SessionBackendRedis = "redis"
	// SessionBackendFile snapshots the in-memory sessions to a JSON file.
	SessionBackendFile = "file"
)

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),
		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", true),

		WhatsAppVerifyToken: getEnv("WHATSAPP_VERIFY_TOKEN", "tayribot"),
		WAProvider:          strings.ToLower(strings.TrimSpace(getEnv("WA_PROVIDER", "auto"))),
		D360APIKey:          getEnv("D360_API_KEY", ""),
		D360BaseURL:         getEnv("D360_BASE_URL", "https://waba-v2.360dialog.io"),
		WACloudToken:        getEnv("WA_CLOUD_TOKEN", ""),
		WAPhoneNumberID:     getEnv("WA_PHONE_NUMBER_ID", ""),
		SendTimeout:         getEnvAsDuration("SEND_TIMEOUT", 10*time.Second),

		SessionBackend: strings.ToLower(strings.TrimSpace(getEnv("SESSION_BACKEND", SessionBackendMemory))),
		SessionFile:    getEnv("SESSION_FILE", "sessions.json"),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		RedisAddr:      getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisTLS:       getEnvAsBool("REDIS_TLS", false),

		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		ExtractTimeout: getEnvAsDuration("EXTRACT_TIMEOUT", 8*time.Second),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Tayri Tours Assistant"),
		OperatorEmail:     getEnv("OPERATOR_EMAIL", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		DialogueQueueURL:    getEnv("DIALOGUE_QUEUE_URL", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
