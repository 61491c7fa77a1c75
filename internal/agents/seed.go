package agents

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// DefaultSeed returns the built-in agents written to an empty registry.
func DefaultSeed() ([]Agent, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeed reads a seed set from a YAML file. An empty path yields the
// built-in seed.
func LoadSeed(path string) ([]Agent, error) {
	if path == "" {
		return DefaultSeed()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML list of agents and validates each one.
func ParseSeed(data []byte) ([]Agent, error) {
	var seed []Agent
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	if err := checkIDs(seed); err != nil {
		return nil, fmt.Errorf("%w: seed: %v", ErrInvalidAgent, err)
	}

	for _, a := range seed {
		if err := Validate(a); err != nil {
			return nil, fmt.Errorf("seed agent %d: %w", a.ID, err)
		}
	}

	return seed, nil
}
