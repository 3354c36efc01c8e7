package trace

import "fmt"

// Untrace wraps any value so that it reports owning no pointers to a
// collector.
//
// It exists for values whose internals cannot implement Tracer, such as
// types from other modules. If the wrapped value does hold pointers that take
// part in a reference cycle, a cycle-collecting heap will never see those
// edges and the cycle is leaked for the lifetime of the heap. Dropping the
// wrapper still walks the Drop or Trace method of the wrapped value, so its
// pointers are released.
type Untrace[T any] struct {
	Value T
}

// NewUntrace wraps v.
func NewUntrace[T any](v T) Untrace[T] {
	return Untrace[T]{Value: v}
}

// Trace visits nothing.
func (Untrace[T]) Trace(Visitor) error {
	return nil
}

// Drop walks the wrapped value.
func (u Untrace[T]) Drop(v Visitor) error {
	return DropField(v, &u.Value)
}

// Get returns the wrapped value.
func (u Untrace[T]) Get() T {
	return u.Value
}

func (u Untrace[T]) String() string {
	return fmt.Sprint(u.Value)
}
