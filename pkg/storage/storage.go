// Package storage persists keyed documents. A System hides whether documents
// live as files under a base directory or as rows in a sqlite or PostgreSQL
// database; every backend replaces a document atomically on Store and
// supports a conditional replace through Swap.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/agent-registry/pkg/lifecycle"
)

// System stores and retrieves whole documents by key.
type System interface {
	// Store replaces the document at key in full.
	Store(ctx context.Context, key string, data []byte) error

	// Swap replaces the document at key only while it still holds expected.
	// A nil expected requires that no document exists. The compare and the
	// write are atomic across processes sharing the backend; a mismatch
	// returns ErrStale and writes nothing.
	Swap(ctx context.Context, key string, expected, data []byte) error

	// Retrieve returns the document at key, or ErrNotFound.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes the document at key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Validate reports whether a document exists at key.
	Validate(ctx context.Context, key string) (bool, error)

	// Start prepares the backend (directories, schema) and registers
	// shutdown hooks with the coordinator.
	Start(lc *lifecycle.Coordinator) error
}

// New builds the System selected by cfg.Backend. cfg must be finalized.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "backend", string(cfg.Backend))

	switch cfg.Backend {
	case BackendFilesystem:
		return newFilesystem(cfg, logger)
	case BackendSQLite:
		return newSQLite(cfg, logger)
	case BackendPostgres:
		return newPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

func cleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrInvalidKey
	}

	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
