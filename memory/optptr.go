package memory

import "github.com/chazu/mortar/memory/trace"

// OptPtr is an optional Ptr. It has the same size as a Ptr; the zero value
// is none.
type OptPtr[T Pointee] struct {
	p Ptr[T]
}

// None returns an empty OptPtr.
func None[T Pointee]() OptPtr[T] {
	return OptPtr[T]{}
}

// Some wraps p, taking over its handle. Wrapping the zero Ptr gives none.
func Some[T Pointee](p Ptr[T]) OptPtr[T] {
	return OptPtr[T]{p: p}
}

// FromOption wraps p when ok is true and returns none otherwise.
func FromOption[T Pointee](p Ptr[T], ok bool) OptPtr[T] {
	if !ok {
		return OptPtr[T]{}
	}
	return Some(p)
}

func (o OptPtr[T]) IsSome() bool { return o.p.b != nil }
func (o OptPtr[T]) IsNone() bool { return o.p.b == nil }

// AsRef borrows the pointer without transferring its handle.
func (o OptPtr[T]) AsRef() (Ptr[T], bool) {
	return o.p, o.IsSome()
}

// AsMut returns the slot itself, or nil when o is none. Assigning through
// the result replaces the pointer without releasing the old one.
func (o *OptPtr[T]) AsMut() *Ptr[T] {
	if o.IsNone() {
		return nil
	}
	return &o.p
}

// IntoOption unwraps o, handing over its handle.
func (o OptPtr[T]) IntoOption() (Ptr[T], bool) {
	return o.p, o.IsSome()
}

// Take moves the pointer out, leaving o none.
func (o *OptPtr[T]) Take() (Ptr[T], bool) {
	p := o.p
	o.p = Ptr[T]{}
	return p, p.b != nil
}

// Set stores p, releasing any previous pointer.
func (o *OptPtr[T]) Set(p Ptr[T]) {
	old := o.p
	o.p = p
	old.Release()
}

// GetOrInsertWith returns the stored pointer, first storing the result of
// f if o is none.
func (o *OptPtr[T]) GetOrInsertWith(f func() Ptr[T]) *Ptr[T] {
	if o.IsNone() {
		o.p = f()
	}
	return &o.p
}

// GetOrInsertDefault is GetOrInsertWith with a freshly allocated zero value.
// The value always goes on the default heap, whatever heap the pointers
// stored in o came from; use GetOrInsertDefaultIn to pick the heap.
func (o *OptPtr[T]) GetOrInsertDefault() *Ptr[T] {
	return o.GetOrInsertDefaultIn(Default())
}

// GetOrInsertDefaultIn is GetOrInsertDefault allocating on h.
func (o *OptPtr[T]) GetOrInsertDefaultIn(h *Heap) *Ptr[T] {
	return o.GetOrInsertWith(func() Ptr[T] {
		var zero T
		return NewIn(h, zero)
	})
}

// Clone returns a new handle when o is some.
func (o OptPtr[T]) Clone() OptPtr[T] {
	return OptPtr[T]{p: o.p.Clone()}
}

// Release releases the pointer if any and leaves o none.
func (o *OptPtr[T]) Release() {
	o.p.Release()
}

// Trace visits the pointer when o is some.
func (o OptPtr[T]) Trace(v trace.Visitor) error {
	return o.p.Trace(v)
}

// Drop visits the pointer when o is some.
func (o OptPtr[T]) Drop(v trace.Visitor) error {
	return o.p.Drop(v)
}

func (o OptPtr[T]) String() string {
	if o.IsNone() {
		return "none"
	}
	return "some(" + o.p.String() + ")"
}
