package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// DevFallbackJWTSecret keeps non-production environments operable when no
// signing key is configured. Resolving to it must be loudly logged.
const DevFallbackJWTSecret = "dummy-jwt-secret-for-development-only"

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	EmailWorkers int `env:"EMAIL_WORKERS, default=4"`

	// EmailTemplatesDir overrides the embedded template sets with
	// operator-managed <business>.json files.
	EmailTemplatesDir string `env:"EMAIL_TEMPLATES_DIR"`

	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=company_dashboard"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host string `env:"SMTP_HOST, default=smtp.gmail.com"`
	Port int    `env:"SMTP_PORT, default=587"`
	User string `env:"SMTP_USER"`
	Pass string `env:"SMTP_PASS"`
	From string `env:"SMTP_FROM"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// ResolveJWTSecret returns the configured signing key, or the development
// fallback when none is set. The second return value reports whether the
// fallback was used.
func (c *Config) ResolveJWTSecret() (string, bool) {
	if c.JWTSecret == "" {
		return DevFallbackJWTSecret, true
	}
	return c.JWTSecret, false
}
