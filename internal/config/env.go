package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeys holds provider credentials loaded from environment
type APIKeys struct {
	TwelveLabs string
	OpenAI     string
}

// LoadEnv loads environment variables from .env file if it exists
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}

	// Look for .env file, but don't fail if not found (environment variables might be set system-wide)
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	return nil
}

// GetAPIKeys retrieves and validates API keys from environment variables
func GetAPIKeys() (*APIKeys, error) {
	apiKeys := &APIKeys{
		TwelveLabs: strings.TrimSpace(os.Getenv("TWELVELABS_API_KEY")),
		OpenAI:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
	}

	if apiKeys.OpenAI != "" {
		if !strings.HasPrefix(apiKeys.OpenAI, "sk-") {
			return nil, fmt.Errorf("invalid OPENAI_API_KEY format: must start with 'sk-'")
		}
		if len(apiKeys.OpenAI) < 20 {
			return nil, fmt.Errorf("invalid OPENAI_API_KEY format: too short")
		}
	}

	return apiKeys, nil
}

// RequireProviderKey validates that the key the selected embedding provider
// needs is actually present.
func RequireProviderKey(apiKeys *APIKeys, provider string) error {
	switch provider {
	case "openai":
		if apiKeys.OpenAI == "" {
			return fmt.Errorf("embedding provider %q requires OPENAI_API_KEY in environment or .env file", provider)
		}
	default:
		if apiKeys.TwelveLabs == "" {
			return fmt.Errorf("embedding provider %q requires TWELVELABS_API_KEY in environment or .env file", provider)
		}
	}
	return nil
}

// GetEmbeddingProvider returns which text embedder to wire. Defaults to the
// video model's own text embedding endpoint so search vectors live in the
// same space as the stored segment vectors.
func GetEmbeddingProvider() string {
	return getEnvOrDefault("EMBEDDING_PROVIDER", "twelvelabs")
}

// GetJobStorePath returns where the durable job store keeps its database.
// Empty string means use the in-memory store.
func GetJobStorePath() string {
	return os.Getenv("JOB_STORE_PATH")
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
