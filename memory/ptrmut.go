package memory

// PtrMut is a shared pointer to a mutable value.
type PtrMut[T Pointee] = Ptr[Cell[T]]

// OptPtrMut is an optional PtrMut.
type OptPtrMut[T Pointee] = OptPtr[Cell[T]]

// NewMut places v in a cell on the default heap.
func NewMut[T Pointee](v T) PtrMut[T] {
	return NewMutIn(Default(), v)
}

// NewMutIn places v in a cell on h. The cell uses the borrow discipline of
// h's profile.
func NewMutIn[T Pointee](h *Heap, v T) PtrMut[T] {
	return Ptr[Cell[T]]{b: allocate(h, func(c *Cell[T]) { c.init(h.Profile(), v) })}
}
