package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that every value the server cannot run without is
// present, regardless of whether it came from the environment or a secret.
func ValidateConfig(cfg *Config) error {
	required := map[string]string{
		"SERVER_PORT / server_port": cfg.ServerPort,
		"DB_HOST / db_host":         cfg.DBHost,
		"DB_PORT / db_port":         cfg.DBPort,
		"DB_USER / db_user":         cfg.DBUser,
		"DB_PASSWORD / db_password": cfg.DBPassword,
		"DB_NAME / db_name":         cfg.DBName,
		"JWT_SECRET / jwt_secret":   cfg.JWTSecret,
	}

	var errs []string
	for name, value := range required {
		if value == "" {
			errs = append(errs, fmt.Sprintf("required configuration %s is not set", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}
	return nil
}
