package agents_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/agent-registry/internal/agents"
	"github.com/JaimeStill/agent-registry/pkg/lifecycle"
	"github.com/JaimeStill/agent-registry/pkg/logging"
	"github.com/JaimeStill/agent-registry/pkg/storage"
)

func newStorage(t *testing.T) storage.System {
	t.Helper()
	return newBackend(t, storage.BackendFilesystem)
}

func newBackend(t *testing.T, backend storage.Backend) storage.System {
	t.Helper()

	cfg := &storage.Config{Backend: backend, BasePath: t.TempDir()}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	sys, err := storage.New(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { lc.Shutdown(5 * time.Second) })

	return sys
}

func newRegistry(t *testing.T, seed []agents.Agent) (agents.System, *agents.Store) {
	t.Helper()

	store := agents.NewStore(newStorage(t), "")
	sys, err := agents.New(store, agents.Config{Seed: seed}, logging.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := sys.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return sys, store
}

func validCommand(name string) agents.CreateCommand {
	return agents.CreateCommand{
		Name:         name,
		Description:  "test agent",
		Category:     "Testing",
		Capabilities: []string{"Testing"},
		IsEnabled:    true,
		APIEndpoint:  "https://api.example.com/" + name,
	}
}

func ptr[T any](v T) *T {
	return &v
}

// gatedStorage blocks Retrieve until release is closed.
type gatedStorage struct {
	storage.System
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStorage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.System.Retrieve(ctx, key)
}

// slowStorage delays every Swap, widening the window between a registry's
// load and its write.
type slowStorage struct {
	storage.System
	delay time.Duration
}

func (s *slowStorage) Swap(ctx context.Context, key string, expected, data []byte) error {
	time.Sleep(s.delay)
	return s.System.Swap(ctx, key, expected, data)
}
