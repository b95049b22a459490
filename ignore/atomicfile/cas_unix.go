//go:build unix

package atomicfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pithecene-io/ignore/ignore"
)

// CompareAndSwap replaces the content at path with replacement if and
// only if the current content equals expected. An empty expected means
// the file must not exist yet. Returns ErrConflict otherwise.
//
// Writers are serialised by an flock advisory lock on a companion
// path+".lock" file. The replacement itself goes through the same
// temp-file + rename path as Write.
func CompareAndSwap(_ context.Context, path, expected, replacement string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("atomicfile: create dir: %w", err)
	}

	lockFile, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("atomicfile: open lock file: %w", err)
	}
	defer ignore.Closer(lockFile)()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("atomicfile: flock: %w", err)
	}
	defer ignore.Func(func() error { return syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN) })

	current, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	fileExists := err == nil

	switch {
	case !fileExists && expected == "":
		// First write.
	case !fileExists:
		return ErrConflict
	case string(current) == expected:
	default:
		return ErrConflict
	}

	return replace(dir, path, strings.NewReader(replacement), 0o644)
}
