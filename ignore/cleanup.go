package ignore

import (
	"io"
	"os"
)

// Func calls fn and discards its error. It is meant for defer:
//
//	defer ignore.Func(f.Close)
func Func(fn func() error) {
	Error(fn())
}

// Close closes c, discarding the error. Use for read-only files,
// response bodies and other closers whose close error carries no
// information the caller acts on.
func Close(c io.Closer) {
	Error(c.Close())
}

// Closer returns a function that closes c, discarding the error.
//
//	defer ignore.Closer(rc)()
func Closer(c io.Closer) func() {
	return func() { Close(c) }
}

// Remove removes path. Errors, including a missing path, are ignored.
func Remove(path string) {
	Error(os.Remove(path))
}

// RemoveAll removes path and any children. Errors are ignored.
//
//	defer ignore.RemoveAll(tmpDir)
func RemoveAll(path string) {
	Error(os.RemoveAll(path))
}

// Preserve runs each cleanup in order, discards whatever they return, and
// hands back err untouched. It keeps the failure that matters from being
// replaced by a failure of the cleanup that follows it:
//
//	if _, err := tmp.Write(data); err != nil {
//		return ignore.Preserve(err, tmp.Close, removeTmp)
//	}
//
// Cleanups run even when err is nil. A panicking cleanup is not recovered.
func Preserve(err error, cleanups ...func() error) error {
	for _, cleanup := range cleanups {
		Func(cleanup)
	}
	return err
}
