package config

import (
	"fmt"
)

// NetworkConfig holds network-related configuration
type NetworkConfig struct {
	HTTPPort     string
	PostgresPort string

	TwelveLabsBaseURL string
	QdrantAddr        string
	RedisAddr         string
	DatabaseURL       string
}

// GetNetworkConfig returns network configuration from environment or defaults
func GetNetworkConfig() *NetworkConfig {
	return &NetworkConfig{
		HTTPPort:          getEnvOrDefault("HTTP_PORT", DefaultHTTPPort),
		PostgresPort:      getEnvOrDefault("POSTGRES_PORT", "5432"),
		TwelveLabsBaseURL: getEnvOrDefault("TWELVELABS_BASE_URL", DefaultTwelveLabsBaseURL),
		QdrantAddr:        getEnvOrDefault("QDRANT_ADDR", "localhost:6334"),
		RedisAddr:         getEnvOrDefault("REDIS_ADDR", ""),
		DatabaseURL:       getEnvOrDefault("DATABASE_URL", ""),
	}
}

// GetPostgresConnectionString constructs PostgreSQL connection string
func (nc *NetworkConfig) GetPostgresConnectionString() string {
	if nc.DatabaseURL != "" {
		return nc.DatabaseURL
	}

	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", nc.PostgresPort)
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "")
	dbname := getEnvOrDefault("DB_NAME", "postgres")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// GetListenAddr constructs the HTTP listen address
func (nc *NetworkConfig) GetListenAddr() string {
	return fmt.Sprintf(":%s", nc.HTTPPort)
}
