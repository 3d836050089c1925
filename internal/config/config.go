package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Request authentication. Empty disables the check.
	APIKey string

	// Pipeline mode: "stateful" keeps per-session state in the session store,
	// "stateless" rebuilds context from caller-supplied history on every call.
	Mode string

	// LLM provider selection. "none" disables the backend entirely and runs
	// every component on its deterministic fallback path.
	LLMProvider    string // gemini | bedrock | none
	GeminiAPIKey   string
	GeminiModelID  string
	BedrockModelID string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Session store selection
	SessionStore  string // memory | redis
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration

	// Intelligence pipeline
	UseMemoryQueue bool
	IntelQueueURL  string
	WorkerCount    int

	// Reporting
	ReportURL     string
	ReportTimeout time.Duration

	// Audit trails
	ConversationLogFile string
	IntelLogFile        string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		APIKey:   getEnv("API_KEY", ""),
		Mode:     strings.ToLower(strings.TrimSpace(getEnv("HONEYPOT_MODE", "stateful"))),

		LLMProvider:    strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "gemini"))),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		SessionStore:  strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", "memory"))),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", true),
		IntelQueueURL:  getEnv("INTEL_QUEUE_URL", ""),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),

		ReportURL:     getEnv("REPORT_URL", "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"),
		ReportTimeout: getEnvAsDuration("REPORT_TIMEOUT", 10*time.Second),

		ConversationLogFile: getEnv("CONVERSATION_LOG_FILE", "conversation.log"),
		IntelLogFile:        getEnv("INTEL_LOG_FILE", "extracted_intelligence.log"),
	}
}

// Validate checks settings that must be resolved before the process can serve
// traffic. Missing LLM credentials are fatal at startup, not a per-request error.
func (c *Config) Validate() error {
	switch c.Mode {
	case "stateful", "stateless":
	default:
		return errors.New("config: HONEYPOT_MODE must be stateful or stateless")
	}

	switch c.LLMProvider {
	case "gemini":
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return errors.New("config: GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	case "bedrock":
		if strings.TrimSpace(c.BedrockModelID) == "" {
			return errors.New("config: BEDROCK_MODEL_ID is required when LLM_PROVIDER=bedrock")
		}
	case "none":
		// Fallback-only operation needs no credentials.
	default:
		return errors.New("config: LLM_PROVIDER must be gemini, bedrock, or none")
	}

	switch c.SessionStore {
	case "memory", "redis":
	default:
		return errors.New("config: SESSION_STORE must be memory or redis")
	}

	if !c.UseMemoryQueue && strings.TrimSpace(c.IntelQueueURL) == "" {
		return errors.New("config: INTEL_QUEUE_URL is required when USE_MEMORY_QUEUE=false")
	}
	return nil
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
