package infrastructure_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/agent-registry/internal/config"
	"github.com/JaimeStill/agent-registry/internal/infrastructure"
	"github.com/JaimeStill/agent-registry/pkg/logging"
	"github.com/JaimeStill/agent-registry/pkg/storage"
)

func TestInfrastructure_Start(t *testing.T) {
	backends := []storage.Backend{storage.BackendFilesystem, storage.BackendSQLite}

	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			dir := t.TempDir()
			cfg := &config.Config{
				Storage: storage.Config{Backend: backend, BasePath: filepath.Join(dir, "data")},
			}
			if err := cfg.Finalize(); err != nil {
				t.Fatalf("Finalize() error = %v", err)
			}

			infra, err := infrastructure.NewWithLogger(cfg, logging.Discard())
			if err != nil {
				t.Fatalf("NewWithLogger() error = %v", err)
			}
			if err := infra.Start(); err != nil {
				t.Fatalf("Start() error = %v", err)
			}

			if _, err := os.Stat(cfg.Storage.BasePath); err != nil {
				t.Errorf("base path not created: %v", err)
			}

			if err := infra.Storage.Store(infra.Context(), "health.json", []byte("ok")); err != nil {
				t.Errorf("Store() error = %v", err)
			}

			if err := infra.Lifecycle.Shutdown(5 * time.Second); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestNew_InvalidBackend(t *testing.T) {
	cfg := &config.Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	cfg.Storage.Backend = "s3"

	if _, err := infrastructure.NewWithLogger(cfg, logging.Discard()); err == nil {
		t.Error("NewWithLogger() error = nil, want unsupported backend error")
	}
}
