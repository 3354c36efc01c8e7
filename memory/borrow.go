package memory

import "fmt"

// guard is the release half of a borrow, shared by a guard and the
// guards FilterMap derives from it.
type guard struct {
	unlock   func()
	released bool
}

func (g *guard) release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	g.unlock()
}

func (g *guard) check() {
	if g == nil || g.released {
		panic(fmt.Errorf("memory: %w", ErrGuardReleased))
	}
}

// Borrow is a shared borrow of a Cell, or of a part of its value.
type Borrow[T any] struct {
	value *T
	g     *guard
}

func newBorrow[T any](v *T, unlock func()) *Borrow[T] {
	return &Borrow[T]{value: v, g: &guard{unlock: unlock}}
}

// Get returns the borrowed value. It must not be mutated.
func (b *Borrow[T]) Get() *T {
	b.g.check()
	return b.value
}

// Release ends the borrow. Releasing twice is a no-op.
func (b *Borrow[T]) Release() {
	b.g.release()
}

func (b *Borrow[T]) String() string {
	return stringOf(b.Get())
}

// FilterMap narrows a shared borrow to the part of the value selected by f.
// When f returns non-nil the new guard takes over the borrow and b is
// consumed. When f returns nil, b comes back unchanged and still held.
// Exactly one of the results is non-nil.
func FilterMap[T, U any](b *Borrow[T], f func(*T) *U) (*Borrow[U], *Borrow[T]) {
	u := f(b.Get())
	if u == nil {
		return nil, b
	}
	nb := &Borrow[U]{value: u, g: b.g}
	b.value, b.g = nil, nil
	return nb, nil
}

// BorrowMut is the exclusive borrow of a Cell, or of a part of its value.
type BorrowMut[T any] struct {
	value *T
	g     *guard
}

func newBorrowMut[T any](v *T, unlock func()) *BorrowMut[T] {
	return &BorrowMut[T]{value: v, g: &guard{unlock: unlock}}
}

// Get returns the borrowed value for reading and writing.
func (b *BorrowMut[T]) Get() *T {
	b.g.check()
	return b.value
}

// Release ends the borrow. Releasing twice is a no-op.
func (b *BorrowMut[T]) Release() {
	b.g.release()
}

func (b *BorrowMut[T]) String() string {
	return stringOf(b.Get())
}

// FilterMapMut is FilterMap for mutable borrows.
func FilterMapMut[T, U any](b *BorrowMut[T], f func(*T) *U) (*BorrowMut[U], *BorrowMut[T]) {
	u := f(b.Get())
	if u == nil {
		return nil, b
	}
	nb := &BorrowMut[U]{value: u, g: b.g}
	b.value, b.g = nil, nil
	return nb, nil
}

func stringOf[T any](v *T) string {
	if s, ok := any(v).(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(*v)
}
