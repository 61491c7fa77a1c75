package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/agent-registry/pkg/middleware"
	"github.com/docker/go-units"
)

// EnvAPIMaxBodySize overrides the request body limit.
const EnvAPIMaxBodySize = "API_MAX_BODY_SIZE"

var corsEnv = &middleware.CORSEnv{
	Enabled:          "API_CORS_ENABLED",
	Origins:          "API_CORS_ORIGINS",
	AllowedMethods:   "API_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "API_CORS_ALLOWED_HEADERS",
	AllowCredentials: "API_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "API_CORS_MAX_AGE",
}

// APIConfig holds HTTP API settings.
type APIConfig struct {
	CORS        middleware.CORSConfig `toml:"cors"`
	MaxBodySize string                `toml:"max_body_size"`

	maxBodySizeVal int64
}

// MaxBodyBytes returns MaxBodySize in bytes after Finalize.
func (c *APIConfig) MaxBodyBytes() int64 {
	return c.maxBodySizeVal
}

// Finalize applies defaults, environment overrides, and validation.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	size, err := units.FromHumanSize(c.MaxBodySize)
	if err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_body_size must be positive")
	}
	c.maxBodySizeVal = size

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge copies non-zero overlay values onto c.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}
	c.CORS.Merge(&overlay.CORS)
}

func (c *APIConfig) loadDefaults() {
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIMaxBodySize); v != "" {
		c.MaxBodySize = v
	}
}
