package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvRegistryDocument         = "REGISTRY_DOCUMENT"
	EnvRegistryOperationTimeout = "REGISTRY_OPERATION_TIMEOUT"
	EnvRegistrySeedFile         = "REGISTRY_SEED_FILE"
)

// RegistryConfig holds agent registry settings.
type RegistryConfig struct {
	// Document is the storage key of the agents document.
	Document string `toml:"document"`

	// OperationTimeout bounds each registry operation, lock wait included.
	OperationTimeout string `toml:"operation_timeout"`

	// SeedFile replaces the built-in seed set when set.
	SeedFile string `toml:"seed_file"`
}

// OperationTimeoutDuration returns OperationTimeout parsed as a duration.
func (c *RegistryConfig) OperationTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.OperationTimeout)
	return d
}

// Finalize applies defaults, environment overrides, and validation.
func (c *RegistryConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge copies non-zero overlay values onto c.
func (c *RegistryConfig) Merge(overlay *RegistryConfig) {
	if overlay.Document != "" {
		c.Document = overlay.Document
	}
	if overlay.OperationTimeout != "" {
		c.OperationTimeout = overlay.OperationTimeout
	}
	if overlay.SeedFile != "" {
		c.SeedFile = overlay.SeedFile
	}
}

func (c *RegistryConfig) loadDefaults() {
	if c.Document == "" {
		c.Document = "agents.json"
	}
	if c.OperationTimeout == "" {
		c.OperationTimeout = "5s"
	}
}

func (c *RegistryConfig) loadEnv() {
	if v := os.Getenv(EnvRegistryDocument); v != "" {
		c.Document = v
	}
	if v := os.Getenv(EnvRegistryOperationTimeout); v != "" {
		c.OperationTimeout = v
	}
	if v := os.Getenv(EnvRegistrySeedFile); v != "" {
		c.SeedFile = v
	}
}

func (c *RegistryConfig) validate() error {
	d, err := time.ParseDuration(c.OperationTimeout)
	if err != nil {
		return fmt.Errorf("invalid operation_timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("operation_timeout must be positive")
	}
	return nil
}
