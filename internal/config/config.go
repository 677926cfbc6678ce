// Package config loads application configuration from the environment and
// provisions the process-wide secrets.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable; sensible defaults make the server runnable with no
// environment at all, which matters for a self-hosted app that provisions its
// own secrets on first start.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DataDir        string // directory holding the SQLite database and legacy files
	EnvFile        string // path of the .env file used for key provisioning
	BcryptCost     int    // bcrypt cost for password hashing
	SessionTTLDays int    // lifetime of a login session in days
	AMQPURL        string // RabbitMQ URL for activity events (empty disables publishing)
}

// Load reads the .env file (if present) into the process environment and then
// builds a Config from environment variables.
func Load() Config {
	_ = godotenv.Load() // best effort; a missing .env is normal on first run

	return Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "3001"),
		DataDir:        envStr("DATA_DIR", "data"),
		EnvFile:        envStr("ENV_FILE", ".env"),
		BcryptCost:     envInt("BCRYPT_COST", 12),
		SessionTTLDays: envInt("SESSION_TTL_DAYS", 7),
		AMQPURL:        os.Getenv("RABBITMQ_URL"),
	}
}

// SessionTTL returns the configured session lifetime as a duration.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLDays) * 24 * time.Hour
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
