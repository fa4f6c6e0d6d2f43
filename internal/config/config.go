package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Durations are parsed with time.ParseDuration so
// values such as "24h" or "360h" are accepted.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	DatabaseURI   string        // MongoDB connection string
	DatabaseName  string        // MongoDB database name
	AccessSecret  string        // secret used to sign access tokens
	AccessExpiry  time.Duration // access token lifetime
	RefreshSecret string        // secret used to sign refresh tokens
	RefreshExpiry time.Duration // refresh token lifetime
	BcryptCost    int           // bcrypt cost for password hashing
	CookieSecure  bool          // mark session cookies Secure
	LogLevel      string        // slog level name
	RabbitURL     string        // AMQP URL; empty disables activity publishing
	ActivityQueue string        // queue that carries activity events
	ActivityLog   string        // file the activity consumer appends to
}

// Load reads configuration values from the environment, after merging a
// .env file when one exists.  Missing required variables are collected and
// reported together.
func Load() (Config, error) {
	_ = godotenv.Load() // .env is optional; real env vars take precedence

	var missing []error
	must := func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			missing = append(missing, fmt.Errorf("missing required env var: %s", key))
		}
		return v
	}

	cfg := Config{
		Env:           envStr("APP_ENV", "dev"),
		Port:          envStr("PORT", "8000"),
		DatabaseURI:   must("DATABASE_URI"),
		DatabaseName:  envStr("DATABASE_NAME", "eventplanner"),
		AccessSecret:  must("ACCESS_TOKEN_SECRET"),
		AccessExpiry:  envDur("ACCESS_TOKEN_EXPIRY", 24*time.Hour),
		RefreshSecret: must("REFRESH_TOKEN_SECRET"),
		RefreshExpiry: envDur("REFRESH_TOKEN_EXPIRY", 15*24*time.Hour),
		BcryptCost:    envInt("BCRYPT_COST", 10),
		CookieSecure:  envBool("COOKIE_SECURE", true),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		RabbitURL:     os.Getenv("RABBITMQ_URL"),
		ActivityQueue: envStr("ACTIVITY_QUEUE", "activity.events"),
		ActivityLog:   envStr("ACTIVITY_LOG", "logs/activity.log"),
	}
	if err := errors.Join(missing...); err != nil {
		return Config{}, err
	}
	if cfg.AccessExpiry <= 0 || cfg.RefreshExpiry <= 0 {
		return Config{}, errors.New("token expiries must be positive")
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("invalid PORT %q", cfg.Port)
	}
	return cfg, nil
}
