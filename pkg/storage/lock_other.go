//go:build !unix

package storage

import (
	"context"
	"fmt"
)

// dirLock serializes filesystem writers within this process only.
var dirLock = make(chan struct{}, 1)

func lockDir(ctx context.Context, dir string) (func(), error) {
	select {
	case dirLock <- struct{}{}:
		return func() { <-dirLock }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("lock %s: %w", dir, ctx.Err())
	}
}
