package config

import (
	"os"
)

// Config holds runtime settings sourced from the environment
type Config struct {
	Port                    string
	FirebaseCredentialsPath string
	SchemaPath              string
}

// Load reads configuration from environment variables, applying defaults
func Load() *Config {
	return &Config{
		Port:                    envOr("PORT", "8080"),
		FirebaseCredentialsPath: envOr("FIREBASE_CREDENTIALS_PATH", "./serviceAccountKey.json"),
		SchemaPath:              envOr("PROFILE_SCHEMA_PATH", "./profile_schema.yaml"),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
