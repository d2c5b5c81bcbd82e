package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds all configuration for the mirror service. Everything comes from
// environment variables; a .env file is loaded by the entrypoint before Parse.
type Config struct {
	// MongoDB
	MongoURI     string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"crm_mirror"`

	// HTTP server
	ServerHost string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	ServerPort string `env:"SERVER_PORT" envDefault:"3000"`

	// Remote CRM gateway
	RemoteBaseURL    string        `env:"CRM_BASE_URL" envDefault:"https://services.leadconnectorhq.com"`
	RemoteAPIVersion string        `env:"CRM_API_VERSION" envDefault:"2021-07-28"`
	RemoteTimeout    time.Duration `env:"CRM_TIMEOUT" envDefault:"30s"`

	// Optional Redis directory cache. Empty address disables caching.
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:""`
	RedisPassword string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	DirectoryTTL  time.Duration `env:"DIRECTORY_CACHE_TTL" envDefault:"60s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load configuration from environment: " + err.Error())
	}

	if !strings.HasPrefix(cfg.MongoURI, "mongodb://") && !strings.HasPrefix(cfg.MongoURI, "mongodb+srv://") {
		return nil, errors.New("MONGODB_URI must be a mongodb:// or mongodb+srv:// URI")
	}
	if cfg.RemoteBaseURL == "" {
		return nil, errors.New("CRM_BASE_URL must not be empty")
	}
	if cfg.RemoteTimeout <= 0 {
		return nil, errors.New("CRM_TIMEOUT must be positive")
	}
	return cfg, nil
}

// CacheEnabled reports whether the optional Redis directory cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}
