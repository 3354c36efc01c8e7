package memory

import "sync"

// Lazy is a pointer that is allocated on first use, for package-level
// shared values:
//
//	var emptyList = memory.NewLazy(func() List { return List{} })
//
// Under the single-thread profiles the value lives on the default heap and
// can only be used from its goroutine.
type Lazy[T Pointee] struct {
	once sync.Once
	init func() T
	p    Ptr[T]
}

// NewLazy returns a Lazy that builds its value with f.
func NewLazy[T Pointee](f func() T) *Lazy[T] {
	return &Lazy[T]{init: f}
}

// Get returns a new handle to the value, allocating it on the first call.
func (l *Lazy[T]) Get() Ptr[T] {
	l.once.Do(func() {
		l.p = New(l.init())
		l.init = nil
	})
	return l.p.Clone()
}
