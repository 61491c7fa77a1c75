package agents

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JaimeStill/agent-registry/pkg/storage"
	"github.com/zeebo/blake3"
)

// DefaultDocument is the storage key of the agents document.
const DefaultDocument = "agents.json"

// Store owns the persisted agents document. It performs no locking; the
// registry serializes access.
type Store struct {
	storage storage.System
	key     string
}

// NewStore creates a Store over the document at key.
func NewStore(sys storage.System, key string) *Store {
	if key == "" {
		key = DefaultDocument
	}
	return &Store{storage: sys, key: key}
}

// Key returns the document key.
func (s *Store) Key() string {
	return s.key
}

// LoadAll reads and decodes the whole collection.
func (s *Store) LoadAll(ctx context.Context) (*Collection, error) {
	data, err := s.storage.Retrieve(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve %s: %v", ErrStorageUnavailable, s.key, err)
	}

	agents, err := decode(data)
	if err != nil {
		return nil, err
	}

	return &Collection{Agents: agents, Revision: revision(data), data: data}, nil
}

// SaveAll replaces the document with c. The document must still hold the
// content c was loaded from, or be absent for a zero Collection; otherwise
// ErrConflict is returned and nothing is written. The check and the write
// are one storage operation, so writers in other processes sharing the
// backend are caught too. On success c.Revision is advanced.
func (s *Store) SaveAll(ctx context.Context, c *Collection) error {
	data, err := encode(c.Agents)
	if err != nil {
		return err
	}

	if err := s.storage.Swap(ctx, s.key, c.data, data); err != nil {
		if errors.Is(err, storage.ErrStale) {
			return fmt.Errorf("%w: document changed since revision %s", ErrConflict, short(c.Revision))
		}
		return fmt.Errorf("%w: store %s: %v", ErrStorageUnavailable, s.key, err)
	}

	c.Revision = revision(data)
	c.data = data
	return nil
}

// Initialize writes seed when no document exists and reports whether it did.
// A document created by another writer in the meantime counts as existing.
func (s *Store) Initialize(ctx context.Context, seed []Agent) (bool, error) {
	exists, err := s.storage.Validate(ctx, s.key)
	if err != nil {
		return false, fmt.Errorf("%w: check %s: %v", ErrStorageUnavailable, s.key, err)
	}
	if exists {
		return false, nil
	}

	err = s.SaveAll(ctx, &Collection{Agents: seed})
	if errors.Is(err, ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Reset replaces the document with seed regardless of its current content.
func (s *Store) Reset(ctx context.Context, seed []Agent) error {
	data, err := encode(seed)
	if err != nil {
		return err
	}

	if err := s.storage.Store(ctx, s.key, data); err != nil {
		return fmt.Errorf("%w: store %s: %v", ErrStorageUnavailable, s.key, err)
	}
	return nil
}

func decode(data []byte) ([]Agent, error) {
	var agents []Agent
	if err := json.Unmarshal(data, &agents); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	if agents == nil {
		return nil, fmt.Errorf("%w: document is not an array", ErrCorruptData)
	}
	if err := checkIDs(agents); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	return agents, nil
}

func encode(agents []Agent) ([]byte, error) {
	if agents == nil {
		agents = []Agent{}
	}
	if err := checkIDs(agents); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAgent, err)
	}

	data, err := json.MarshalIndent(agents, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode agents: %w", err)
	}
	return data, nil
}

func checkIDs(agents []Agent) error {
	seen := make(map[int]struct{}, len(agents))
	for i, a := range agents {
		if a.ID <= 0 {
			return fmt.Errorf("agent at index %d has non-positive id %d", i, a.ID)
		}
		if _, ok := seen[a.ID]; ok {
			return fmt.Errorf("duplicate agent id %d", a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}

func revision(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func short(rev string) string {
	if rev == "" {
		return "<none>"
	}
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
