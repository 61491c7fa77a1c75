package main

import (
	"fmt"

	"github.com/JaimeStill/agent-registry/internal/agents"
	"github.com/JaimeStill/agent-registry/internal/config"
	"github.com/JaimeStill/agent-registry/internal/infrastructure"
)

// Domain holds the domain systems built over the infrastructure.
type Domain struct {
	Agents agents.System
}

// NewDomain builds the agent registry over the configured storage.
func NewDomain(infra *infrastructure.Infrastructure, cfg *config.Config) (*Domain, error) {
	seed, err := agents.LoadSeed(cfg.Registry.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}

	store := agents.NewStore(infra.Storage, cfg.Registry.Document)

	registry, err := agents.New(store, agents.Config{
		Timeout: cfg.Registry.OperationTimeoutDuration(),
		Seed:    seed,
	}, infra.Logger)
	if err != nil {
		return nil, fmt.Errorf("agents init failed: %w", err)
	}

	return &Domain{Agents: registry}, nil
}
