package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment names the runtime mode. It decides whether missing environment
// variables may fall back to Docker secrets.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment resolves the runtime mode: the standard CI variable wins,
// then ENV, defaulting to development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	switch os.Getenv("ENV") {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration (rate limiting)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
}

// LoadConfig creates a new Config instance with values from environment
// variables, falling back to Docker secrets for sensitive values outside CI.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	cfg := &Config{
		ServerPort: getValue(env, "SERVER_PORT", "server_port"),
		ServerHost: getValue(env, "SERVER_HOST", "server_host"),
		DBHost:     getValue(env, "DB_HOST", "db_host"),
		DBPort:     getValue(env, "DB_PORT", "db_port"),
		DBUser:     getValue(env, "DB_USER", "db_user"),
		DBPassword: getValue(env, "DB_PASSWORD", "db_password"),
		DBName:     getValue(env, "DB_NAME", "db_name"),
		DBSSLMode:  getValue(env, "DB_SSL_MODE", "db_ssl_mode"),

		RedisHost:     getValue(env, "REDIS_HOST", "redis_host"),
		RedisPort:     getValue(env, "REDIS_PORT", "redis_port"),
		RedisPassword: getValue(env, "REDIS_PASSWORD", "redis_password"),
		RedisDB:       0,
		RedisURL:      getValue(env, "REDIS_URL", "redis_url"),

		JWTSecret: getValue(env, "JWT_SECRET", "jwt_secret"),
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// getValue resolves one configuration value. CI reads environment variables
// only; other environments prefer the environment but fall back to Docker
// secrets, so compose setups can mount credentials as files.
func getValue(env Environment, envVar, secretName string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	if env == CI {
		return ""
	}
	return readSecret(secretName)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
