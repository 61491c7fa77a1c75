package agents_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/agent-registry/internal/agents"
	"github.com/JaimeStill/agent-registry/pkg/storage"
)

func TestStore_LoadAll_Missing(t *testing.T) {
	store := agents.NewStore(newStorage(t), "")

	if _, err := store.LoadAll(context.Background()); !errors.Is(err, agents.ErrStorageUnavailable) {
		t.Errorf("LoadAll() error = %v, want ErrStorageUnavailable", err)
	}
}

func TestStore_Initialize(t *testing.T) {
	ctx := context.Background()
	store := agents.NewStore(newStorage(t), "")
	seed := []agents.Agent{{ID: 1, Name: "A", Capabilities: []string{"x"}}}

	seeded, err := store.Initialize(ctx, seed)
	if err != nil || !seeded {
		t.Fatalf("Initialize() = %v, %v, want true, nil", seeded, err)
	}

	seeded, err = store.Initialize(ctx, []agents.Agent{{ID: 9, Name: "B", Capabilities: []string{"y"}}})
	if err != nil || seeded {
		t.Fatalf("second Initialize() = %v, %v, want false, nil", seeded, err)
	}

	c, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(c.Agents) != 1 || c.Agents[0].ID != 1 {
		t.Errorf("LoadAll() = %+v, want the first seed", c.Agents)
	}
}

func TestStore_SaveAll_RoundTrip(t *testing.T) {
	ctx := context.Background()
	sys := newStorage(t)
	store := agents.NewStore(sys, "")

	if _, err := store.Initialize(ctx, nil); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	raw, err := sys.Retrieve(ctx, agents.DefaultDocument)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if string(raw) != "[]" {
		t.Errorf("empty document = %q, want []", raw)
	}

	c, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	before := c.Revision

	c.Agents = []agents.Agent{
		{ID: 3, Name: "C", Capabilities: []string{"z"}},
		{ID: 1, Name: "A", Capabilities: []string{"x"}, APIKey: "secret"},
	}
	if err := store.SaveAll(ctx, c); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}
	if c.Revision == before {
		t.Error("SaveAll() did not advance the revision")
	}

	got, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if got.Revision != c.Revision {
		t.Errorf("Revision = %s, want %s", got.Revision, c.Revision)
	}
	if len(got.Agents) != 2 || got.Agents[0].ID != 3 || got.Agents[1].APIKey != "secret" {
		t.Errorf("LoadAll() = %+v, want insertion order preserved", got.Agents)
	}

	raw, _ = sys.Retrieve(ctx, agents.DefaultDocument)
	if !strings.Contains(string(raw), "\n  {\n    \"id\": 3,") {
		t.Errorf("document not indented with two spaces:\n%s", raw)
	}
	if strings.Contains(string(raw), "imageUrl") {
		t.Errorf("empty optional fields should be omitted:\n%s", raw)
	}
}

func TestStore_SaveAll_Conflict(t *testing.T) {
	ctx := context.Background()
	sys := newStorage(t)
	store := agents.NewStore(sys, "")

	if _, err := store.Initialize(ctx, nil); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	c, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	if err := sys.Store(ctx, agents.DefaultDocument, []byte(`[{"id": 5, "name": "edit", "capabilities": ["x"]}]`)); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	c.Agents = append(c.Agents, agents.Agent{ID: 1, Name: "A", Capabilities: []string{"x"}})
	if err := store.SaveAll(ctx, c); !errors.Is(err, agents.ErrConflict) {
		t.Fatalf("SaveAll() error = %v, want ErrConflict", err)
	}

	got, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(got.Agents) != 1 || got.Agents[0].ID != 5 {
		t.Errorf("LoadAll() = %+v, want the out-of-band edit kept", got.Agents)
	}
}

func TestStore_SaveAll_StaleAcrossStores(t *testing.T) {
	for _, backend := range []storage.Backend{storage.BackendFilesystem, storage.BackendSQLite} {
		t.Run(string(backend), func(t *testing.T) {
			ctx := context.Background()
			sys := newBackend(t, backend)
			first := agents.NewStore(sys, "")
			second := agents.NewStore(sys, "")

			if _, err := first.Initialize(ctx, nil); err != nil {
				t.Fatalf("Initialize() error = %v", err)
			}

			a, err := first.LoadAll(ctx)
			if err != nil {
				t.Fatalf("LoadAll() error = %v", err)
			}
			b, err := second.LoadAll(ctx)
			if err != nil {
				t.Fatalf("LoadAll() error = %v", err)
			}

			a.Agents = append(a.Agents, agents.Agent{ID: 1, Name: "A", Capabilities: []string{"x"}})
			if err := first.SaveAll(ctx, a); err != nil {
				t.Fatalf("first SaveAll() error = %v", err)
			}

			b.Agents = append(b.Agents, agents.Agent{ID: 1, Name: "B", Capabilities: []string{"y"}})
			if err := second.SaveAll(ctx, b); !errors.Is(err, agents.ErrConflict) {
				t.Fatalf("second SaveAll() error = %v, want ErrConflict", err)
			}

			if err := second.SaveAll(ctx, &agents.Collection{}); !errors.Is(err, agents.ErrConflict) {
				t.Errorf("SaveAll() of a new collection over an existing document error = %v, want ErrConflict", err)
			}

			got, err := second.LoadAll(ctx)
			if err != nil {
				t.Fatalf("LoadAll() error = %v", err)
			}
			if len(got.Agents) != 1 || got.Agents[0].Name != "A" {
				t.Errorf("LoadAll() = %+v, want only the first write", got.Agents)
			}
		})
	}
}

func TestStore_LoadAll_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{{`},
		{"object", `{"id": 1}`},
		{"null", `null`},
		{"zero id", `[{"id": 0, "name": "a"}]`},
		{"negative id", `[{"id": -2, "name": "a"}]`},
		{"duplicate ids", `[{"id": 1, "name": "a"}, {"id": 1, "name": "b"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			sys := newStorage(t)
			store := agents.NewStore(sys, "")

			if err := sys.Store(ctx, agents.DefaultDocument, []byte(tt.doc)); err != nil {
				t.Fatalf("Store() error = %v", err)
			}

			if _, err := store.LoadAll(ctx); !errors.Is(err, agents.ErrCorruptData) {
				t.Errorf("LoadAll() error = %v, want ErrCorruptData", err)
			}
		})
	}
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := agents.NewStore(newStorage(t), "registry/agents.json")

	if _, err := store.Initialize(ctx, []agents.Agent{{ID: 1, Name: "A", Capabilities: []string{"x"}}}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if err := store.Reset(ctx, []agents.Agent{{ID: 7, Name: "B", Capabilities: []string{"y"}}}); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	c, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(c.Agents) != 1 || c.Agents[0].ID != 7 {
		t.Errorf("LoadAll() = %+v, want reset seed", c.Agents)
	}

	if err := store.Reset(ctx, []agents.Agent{{ID: 1}, {ID: 1}}); !errors.Is(err, agents.ErrInvalidAgent) {
		t.Errorf("Reset() with duplicate ids error = %v, want ErrInvalidAgent", err)
	}
}
