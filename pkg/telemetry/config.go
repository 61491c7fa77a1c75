package telemetry

import (
	"fmt"
	"os"
	"strconv"
)

// Exporter names where spans and metrics are sent.
type Exporter string

const (
	ExporterStdout Exporter = "stdout"
	ExporterOTLP   Exporter = "otlp"
)

// Env names the environment variables that override Config fields.
type Env struct {
	Enabled      string
	Exporter     string
	OTLPEndpoint string
	OTLPInsecure string
}

// Config holds OpenTelemetry settings.
type Config struct {
	Enabled      bool     `toml:"enabled"`
	ServiceName  string   `toml:"service_name"`
	Exporter     Exporter `toml:"exporter"`
	OTLPEndpoint string   `toml:"otlp_endpoint"`
	OTLPInsecure bool     `toml:"otlp_insecure"`
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge copies overlay values onto c. Booleans always take the overlay value.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
	c.OTLPInsecure = overlay.OTLPInsecure
	if overlay.ServiceName != "" {
		c.ServiceName = overlay.ServiceName
	}
	if overlay.Exporter != "" {
		c.Exporter = overlay.Exporter
	}
	if overlay.OTLPEndpoint != "" {
		c.OTLPEndpoint = overlay.OTLPEndpoint
	}
}

func (c *Config) loadDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "agent-registry"
	}
	if c.Exporter == "" {
		c.Exporter = ExporterStdout
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := getenv(env.Enabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enabled = b
		}
	}
	if v := getenv(env.Exporter); v != "" {
		c.Exporter = Exporter(v)
	}
	if v := getenv(env.OTLPEndpoint); v != "" {
		c.OTLPEndpoint = v
	}
	if v := getenv(env.OTLPInsecure); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.OTLPInsecure = b
		}
	}
}

func (c *Config) validate() error {
	switch c.Exporter {
	case ExporterStdout:
	case ExporterOTLP:
		if c.Enabled && c.OTLPEndpoint == "" {
			return fmt.Errorf("otlp_endpoint required for otlp exporter")
		}
	default:
		return fmt.Errorf("invalid exporter %q (must be stdout or otlp)", c.Exporter)
	}
	return nil
}

func getenv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
