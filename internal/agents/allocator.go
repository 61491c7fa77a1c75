package agents

import (
	"fmt"
	"math"
)

// NextID returns one more than the largest id in agents, or 1 when agents is
// empty. A collection already holding math.MaxInt has no id left to assign.
// Callers must hold the registry lock.
func NextID(agents []Agent) (int, error) {
	top := 0
	for _, a := range agents {
		top = max(top, a.ID)
	}
	if top == math.MaxInt {
		return 0, fmt.Errorf("%w: id space exhausted", ErrCorruptData)
	}
	return top + 1, nil
}
