// Package ignore marks the outcome of a fallible call as intentionally
// discarded.
//
// Writing `_ = f.Close()` says nothing about whether the author meant it,
// and some analyzers still flag it. Panicking on the error turns a
// recoverable failure into a fatal one. The functions here are a named,
// greppable "I meant to drop this" instead:
//
//	defer ignore.Func(f.Close)
//	ignore.Result(w.Write(p))
//	ignore.Of(os.Stat(path)).Ignore()
//
// Arguments are evaluated before the call, so the producing operation
// always runs exactly once and its side effects happen before the
// discard. Nothing is inspected, logged, or retried.
package ignore

// Result discards a two-value return. It accepts any pairing of payload
// and error types, so it can wrap a call directly:
//
//	ignore.Result(io.Copy(io.Discard, body))
func Result[T, E any](T, E) {}

// Error discards a single error return.
func Error(error) {}

// -----------------------------------------------------------------------------
// Outcome
// -----------------------------------------------------------------------------

// Outcome holds either a success payload or a failure.
//
// The zero value is a success carrying the zero T.
type Outcome[T, E any] struct {
	value  T
	err    E
	failed bool
}

// Ok returns a successful outcome carrying v.
func Ok[T, E any](v T) Outcome[T, E] {
	return Outcome[T, E]{value: v}
}

// Fail returns a failed outcome carrying e.
func Fail[T, E any](e E) Outcome[T, E] {
	return Outcome[T, E]{err: e, failed: true}
}

// Of adapts the usual (value, error) return pair. A non-nil err makes the
// outcome a failure; the value is kept either way, as some callers return
// partial results alongside an error.
func Of[T any](v T, err error) Outcome[T, error] {
	return Outcome[T, error]{value: v, err: err, failed: err != nil}
}

// Ignore discards the outcome. It never inspects which variant is held
// and never panics.
func (Outcome[T, E]) Ignore() {}

// Failed reports whether the outcome holds a failure.
func (o Outcome[T, E]) Failed() bool { return o.failed }

// Value returns the success payload, or the zero T for failures built
// with Fail.
func (o Outcome[T, E]) Value() T { return o.value }

// Err returns the failure, or the zero E for successes.
func (o Outcome[T, E]) Err() E { return o.err }

// Get returns the payload and failure as a pair.
func (o Outcome[T, E]) Get() (T, E) { return o.value, o.err }
