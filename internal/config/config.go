package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port            string
	Env             string
	ShutdownTimeout time.Duration

	// Database
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBConnectAttempts uint

	// Tokens are issued by the identity service and only verified here.
	JWTSecret   string
	JWTAudience string
	JWTIssuer   string

	// Pipeline endpoints compare X-API-Key against this bcrypt hash.
	PipelineAPIKeyHash string

	// Space separated list; CORS is disabled when empty.
	CORSAllowOrigins []string

	// Categorization
	CategoryRulesFile string
	SuggestionHintTTL time.Duration

	// Domain events; the publisher is a no-op when AMQPURL is empty.
	AMQPURL      string
	AMQPExchange string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "expenses"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:   getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		JWTAudience: getEnv("JWT_AUDIENCE", "authenticated"),
		JWTIssuer:   getEnv("JWT_ISSUER", ""),

		PipelineAPIKeyHash: getEnv("PIPELINE_API_KEY_HASH", ""),
		CORSAllowOrigins:   strings.Fields(getEnv("CORS_ALLOW_ORIGINS", "")),
		CategoryRulesFile:  getEnv("CATEGORY_RULES_FILE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expenses"),
	}

	config.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	config.SuggestionHintTTL = getDuration("SUGGESTION_HINT_TTL", 2*time.Second)
	config.DBConnectAttempts = getUint("DB_CONNECT_ATTEMPTS", 5)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Set replaces the process-wide configuration. Tests use it to point the
// auth middleware at a known secret.
func Set(c *Config) {
	appConfig = c
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getUint(key string, defaultValue uint) uint {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return uint(n)
}
