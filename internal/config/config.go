package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port            string
	OpenAIAPIKey    string
	PriceStoreID    string
	ActivityStoreID string
	PromptDir       string
	MaxResults      int
	LogLevel        string
	LogFormat       string
	Environment     string
}

func Load() *Config {
	return &Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		PriceStoreID:    os.Getenv("PRICE_VECTOR_STORE_ID"),
		ActivityStoreID: os.Getenv("ACTIVITY_VECTOR_STORE_ID"),
		PromptDir:       getEnvOrDefault("PROMPT_DIR", "prompts"),
		MaxResults:      getEnvIntOrDefault("MAX_RESULTS", 8),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "INFO"),
		LogFormat:       getEnvOrDefault("LOG_FORMAT", "text"),
		Environment:     getEnvOrDefault("ENVIRONMENT", "development"),
	}
}

func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}

	if c.PriceStoreID == "" {
		return errors.New("PRICE_VECTOR_STORE_ID is required")
	}

	if c.ActivityStoreID == "" {
		return errors.New("ACTIVITY_VECTOR_STORE_ID is required")
	}

	if c.MaxResults <= 0 {
		return fmt.Errorf("MAX_RESULTS must be positive, got %d", c.MaxResults)
	}

	validLogLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	if !contains(validLogLevels, strings.ToUpper(c.LogLevel)) {
		return errors.New("LOG_LEVEL must be one of: DEBUG, INFO, WARN, ERROR")
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, strings.ToLower(c.LogFormat)) {
		return errors.New("LOG_FORMAT must be one of: text, json")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
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
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
