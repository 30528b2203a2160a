package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion         string
	DynamoDBTable     string
	ApprovalIndexName string // GSI1 - list by moderation status
	CategoryIndexName string // GSI2 - list by primary category
	EventBusName      string

	// Lambda configuration
	IsLambda bool

	// Authentication (Cognito user pool tokens; HS256 secret for local dev)
	JWTSigningMethod string
	JWTPublicKey     string
	JWTSecret        string
	JWTIssuer        string

	// Logging and features
	LogLevel           string
	EnableMetrics      bool
	MetricsNamespace   string
	EnableCORS         bool
	RateLimitPerMinute int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		DynamoDBTable: getEnv("TABLE_NAME", "bookcrawl"),

		ApprovalIndexName: getEnv("APPROVAL_INDEX_NAME", "ApprovalIndex"),
		CategoryIndexName: getEnv("CATEGORY_INDEX_NAME", "CategoryIndex"),
		EventBusName:      getEnv("EVENT_BUS_NAME", "bookcrawl-events"),

		IsLambda: os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "",

		JWTSigningMethod: getEnv("JWT_SIGNING_METHOD", "HS256"),
		JWTPublicKey:     getEnv("JWT_PUBLIC_KEY", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTIssuer:        getEnv("JWT_ISSUER", ""),

		LogLevel:           getEnv("LOG_LEVEL", "info"),
		EnableMetrics:      getEnvBool("ENABLE_METRICS", false),
		MetricsNamespace:   getEnv("METRICS_NAMESPACE", "BookCrawl/Backend"),
		EnableCORS:         getEnvBool("ENABLE_CORS", true),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
		if c.JWTSigningMethod == "RS256" && c.JWTPublicKey == "" {
			return fmt.Errorf("JWT_PUBLIC_KEY is required for RS256 in production")
		}
		if c.JWTSigningMethod == "HS256" && c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required for HS256 in production")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
