// Package outcome models calls to external collaborators that never fail
// hard: a Result always carries a usable Value, and Err is set when that
// value is a fallback rather than the real thing.
package outcome

type Result[T any] struct {
	Value T
	Err   error
}

// OK wraps a value produced by a healthy call.
func OK[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

// Degraded wraps the fallback served because of err.
func Degraded[T any](fallback T, err error) Result[T] {
	return Result[T]{Value: fallback, Err: err}
}

func (r Result[T]) Degraded() bool {
	return r.Err != nil
}
