//go:build !unix

package atomicfile

import (
	"context"
	"errors"
)

// CompareAndSwap is not supported on non-Unix platforms: it needs flock.
func CompareAndSwap(_ context.Context, _, _, _ string) error {
	return errors.New("atomicfile: CompareAndSwap is not supported on this platform (requires Unix flock)")
}
