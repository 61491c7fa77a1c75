package main

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/agent-registry/internal/agents"
	"github.com/JaimeStill/agent-registry/internal/config"
	"github.com/JaimeStill/agent-registry/internal/infrastructure"
	"github.com/JaimeStill/agent-registry/pkg/logging"
)

func TestRun(t *testing.T) {
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	cfg.Storage.BasePath = t.TempDir()

	infra, err := infrastructure.NewWithLogger(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("NewWithLogger() error = %v", err)
	}
	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { infra.Lifecycle.Shutdown(5 * time.Second) })

	store := agents.NewStore(infra.Storage, cfg.Registry.Document)
	seed, err := agents.DefaultSeed()
	if err != nil {
		t.Fatalf("DefaultSeed() error = %v", err)
	}

	msg, err := run(infra, store, seed, false)
	if err != nil || !strings.HasPrefix(msg, "seeded") {
		t.Fatalf("run() = %q, %v, want seeded", msg, err)
	}

	msg, err = run(infra, store, seed[:1], false)
	if err != nil || !strings.Contains(msg, "already exists") {
		t.Fatalf("second run() = %q, %v, want already exists", msg, err)
	}

	msg, err = run(infra, store, seed[:1], true)
	if err != nil || !strings.HasPrefix(msg, "reset") {
		t.Fatalf("run(reset) = %q, %v, want reset", msg, err)
	}

	c, err := store.LoadAll(infra.Context())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(c.Agents) != 1 {
		t.Errorf("LoadAll() = %d agents, want 1 after reset", len(c.Agents))
	}
}
