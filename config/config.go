/*
config.go - Environment-backed application configuration

PURPOSE:
  Loads runtime configuration from the environment, with an optional
  .env file for local development. Every value has a development
  default so the kiosk runs out of the box; the admin credential and
  session secret defaults are for development only and must be set in
  any real deployment.

SEE ALSO:
  - cmd/server/main.go: Consumes this at startup
  - auth/auth.go: Uses the credential pair and session secret
*/
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings.
type Config struct {
	Port          string
	DBPath        string
	AdminUsername string
	AdminPassword string
	SessionSecret string
}

// Load reads configuration from the environment, loading .env first
// when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "attendance.db"),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		SessionSecret: getEnv("SESSION_SECRET", "dev-session-secret"),
	}
}

// getEnv returns the environment value or the fallback when unset.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
