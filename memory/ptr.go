package memory

import (
	"cmp"
	"fmt"
	"hash/maphash"

	"github.com/chazu/mortar/memory/trace"
)

// Ptr is a shared handle to a value on a Heap.
//
// A Ptr is a small value. Copying it with = does not add a reference, use
// Clone for that. Every handle obtained from New, Clone or a constructor
// must eventually be given up with Release, or be stored in another
// allocation that is itself released or collected.
//
// The zero Ptr refers to nothing. Dereferencing it panics.
type Ptr[T Pointee] struct {
	b *box[T]
}

// New places v on the default heap.
func New[T Pointee](v T) Ptr[T] {
	return NewIn(Default(), v)
}

// NewIn places v on h. Pointers held by v move into the new allocation.
func NewIn[T Pointee](h *Heap, v T) Ptr[T] {
	return Ptr[T]{b: allocate(h, func(dst *T) { *dst = v })}
}

// FromBox moves the value behind b onto the default heap and resets *b to
// its zero value. It panics if b is nil.
func FromBox[T Pointee](b *T) Ptr[T] {
	p, err := TryFromBox(Default(), b)
	if err != nil {
		panic(err)
	}
	return p
}

// TryFromBox is FromBox on h with an error instead of a panic.
func TryFromBox[T Pointee](h *Heap, b *T) (Ptr[T], error) {
	if b == nil {
		return Ptr[T]{}, fmt.Errorf("memory: %w", ErrNilBox)
	}
	v := *b
	var zero T
	*b = zero
	return NewIn(h, v), nil
}

func (p Ptr[T]) mustBox() *box[T] {
	if p.b == nil {
		panic(fmt.Errorf("memory: %w", ErrNilPointer))
	}
	return p.b
}

// IsNil reports whether p is the zero Ptr.
func (p Ptr[T]) IsNil() bool {
	return p.b == nil
}

// Get returns the shared value. It must not be mutated unless the caller
// knows the handle is unique; see MakeMut.
func (p Ptr[T]) Get() *T {
	return p.mustBox().live()
}

// Clone returns a new handle to the same allocation.
func (p Ptr[T]) Clone() Ptr[T] {
	if p.b == nil {
		return p
	}
	p.b.heap.retain(p.b)
	return p
}

// Release gives up the handle and resets p to the zero Ptr. The value is
// reclaimed when its last handle is released. Releasing the zero Ptr is a
// no-op.
func (p *Ptr[T]) Release() {
	b := p.b
	if b == nil {
		return
	}
	p.b = nil
	b.heap.release(b)
}

// PtrEq reports whether p and q refer to the same allocation.
func (p Ptr[T]) PtrEq(q Ptr[T]) bool {
	return p.b == q.b
}

// Address returns the identity of the allocation, or zero for the zero Ptr.
func (p Ptr[T]) Address() Address {
	if p.b == nil {
		return 0
	}
	return Address(p.b.id)
}

// RefCount returns the number of live handles to the allocation. Under the
// collecting profiles this includes handles kept alive only by cycles that
// have not been collected yet, so it is a diagnostic, not a liveness test.
func (p Ptr[T]) RefCount() int {
	if p.b == nil {
		return 0
	}
	return int(p.b.heap.backend.load(&p.b.header))
}

// Heap returns the heap p was allocated on, or nil for the zero Ptr.
func (p Ptr[T]) Heap() *Heap {
	if p.b == nil {
		return nil
	}
	return p.b.heap
}

// Trace visits the allocation.
func (p Ptr[T]) Trace(v trace.Visitor) error {
	if p.b == nil {
		return nil
	}
	return v.Visit(p.b)
}

// Drop visits the allocation, as Trace does.
func (p Ptr[T]) Drop(v trace.Visitor) error {
	return p.Trace(v)
}

func (p Ptr[T]) String() string {
	if p.b == nil {
		return "<nil>"
	}
	return stringOf(p.Get())
}

// MakeMut returns a mutable reference to the value of p. If other handles
// share the allocation, the value is first copied into a new allocation that
// p is moved to, so the other handles never observe the mutation.
//
// The copy uses Clone when T implements Cloner[T]. Otherwise it is a shallow
// copy whose owned pointers, if T is traceable, gain one reference each.
func MakeMut[T Pointee](p *Ptr[T]) *T {
	b := p.mustBox()
	h := b.heap
	h.backend.guard(h)
	if h.backend.load(&b.header) == 1 {
		return b.live()
	}

	v := cloneValue(b.live())
	nb := allocate(h, func(dst *T) { *dst = v })
	p.b = nb
	h.release(b)
	return &nb.value
}

// Equal compares the values behind a and b.
func Equal[T comparable](a, b Ptr[T]) bool {
	return *a.Get() == *b.Get()
}

// Compare orders the values behind a and b.
func Compare[T cmp.Ordered](a, b Ptr[T]) int {
	return cmp.Compare(*a.Get(), *b.Get())
}

// Hash hashes the value behind p, so that Equal handles hash alike.
func Hash[T comparable](seed maphash.Seed, p Ptr[T]) uint64 {
	return maphash.Comparable(seed, *p.Get())
}
