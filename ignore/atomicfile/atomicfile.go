// Package atomicfile writes files so that readers see either the old
// content or the new content, never a partial write.
//
// Every write goes to a temp file in the destination directory and is
// renamed into place. On failure the temp file is removed best-effort
// and the original error is returned unchanged.
package atomicfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pithecene-io/ignore/ignore"
)

// ErrConflict indicates that CompareAndSwap found content other than the
// expected value.
var ErrConflict = errors.New("atomicfile: content does not match expected value")

// tempPattern names in-flight temp files. The leading dot keeps them out
// of most directory listings.
const tempPattern = ".atomicfile-*"

// Write atomically replaces path with the content of r.
// Parent directories are created as needed.
func Write(path string, r io.Reader, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("atomicfile: create dir: %w", err)
	}
	return replace(dir, path, r, perm)
}

// replace writes r to a temp file in dir, then renames it over path.
// dir must exist and be on the same filesystem as path.
func replace(dir, path string, r io.Reader, perm os.FileMode) error {
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("atomicfile: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	removeTmp := func() error { return os.Remove(tmpName) }

	if _, err := io.Copy(tmp, r); err != nil {
		return ignore.Preserve(err, tmp.Close, removeTmp)
	}
	if err := tmp.Chmod(perm); err != nil {
		return ignore.Preserve(err, tmp.Close, removeTmp)
	}
	if err := tmp.Sync(); err != nil {
		return ignore.Preserve(err, tmp.Close, removeTmp)
	}
	if err := tmp.Close(); err != nil {
		return ignore.Preserve(err, removeTmp)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return ignore.Preserve(err, removeTmp)
	}
	return nil
}
