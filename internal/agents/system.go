package agents

import "context"

// System is the agent registry. Every operation runs in a single critical
// section that loads the collection, applies the change, and saves it.
type System interface {
	// Initialize writes the seed set when no document exists.
	Initialize(ctx context.Context) error

	List(ctx context.Context) (*Collection, error)
	Find(ctx context.Context, id int) (*Agent, error)
	Create(ctx context.Context, cmd CreateCommand) (*Agent, error)
	Update(ctx context.Context, id int, cmd UpdateCommand) (*Agent, error)
	Delete(ctx context.Context, id int) error
}
