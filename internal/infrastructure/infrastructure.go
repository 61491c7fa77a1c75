// Package infrastructure assembles the systems every domain module depends
// on: lifecycle coordination, logging, document storage, and telemetry.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/agent-registry/internal/config"
	"github.com/JaimeStill/agent-registry/pkg/lifecycle"
	"github.com/JaimeStill/agent-registry/pkg/logging"
	"github.com/JaimeStill/agent-registry/pkg/storage"
	"github.com/JaimeStill/agent-registry/pkg/telemetry"
)

// Infrastructure holds the core systems. Create with New, then Start.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Storage   storage.System
	Telemetry telemetry.System
}

// New builds the infrastructure from a finalized configuration without
// starting anything.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithLogger(cfg, logging.New(&cfg.Logging))
}

// NewWithLogger is New with an explicit logger.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	lc := lifecycle.New()

	store, err := storage.New(lc.Context(), &cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Storage:   store,
		Telemetry: telemetry.New(&cfg.Telemetry, cfg.Version, logger),
	}, nil
}

// Start starts telemetry then storage, registering their shutdown hooks.
func (i *Infrastructure) Start() error {
	if err := i.Telemetry.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("telemetry start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}

// Context returns the lifecycle root context.
func (i *Infrastructure) Context() context.Context {
	return i.Lifecycle.Context()
}
