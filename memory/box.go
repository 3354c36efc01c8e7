package memory

import (
	"fmt"
	"sync/atomic"

	"github.com/chazu/mortar/memory/internal/collector"
	"github.com/chazu/mortar/memory/trace"
)

// header is the profile-independent bookkeeping of an allocation.
type header struct {
	id     uint64
	strong int64
	dead   atomic.Bool
	heap   *Heap
}

// RefID implements trace.Ref.
func (h *header) RefID() uint64 {
	return h.id
}

// allocation is the type-erased view of a box.
type allocation interface {
	collector.Node
	hdr() *header
	traceValue(v trace.Visitor) error
	dropValue(v trace.Visitor) error
	clear()
}

type box[T Pointee] struct {
	header
	value T
}

func (b *box[T]) hdr() *header { return &b.header }

func (b *box[T]) StrongCount() int64 {
	return b.heap.backend.load(&b.header)
}

func (b *box[T]) TraceOwned(v trace.Visitor) error {
	return b.traceValue(v)
}

func (b *box[T]) traceValue(v trace.Visitor) error {
	return trace.Field(v, &b.value)
}

func (b *box[T]) dropValue(v trace.Visitor) error {
	return trace.DropField(v, &b.value)
}

func (b *box[T]) clear() {
	var zero T
	b.value = zero
}

// allocate places a new value on h. init fills in the value before the
// allocation becomes visible to the collector.
func allocate[T Pointee](h *Heap, init func(*T)) *box[T] {
	h.backend.enter(h)
	defer h.backend.exit(h)

	b := &box[T]{}
	b.id = newAddress()
	b.strong = 1
	b.heap = h
	init(&b.value)

	h.allocated.Add(1)
	if h.backend.collects() {
		checkPointee[T]()
		h.register(b)
	}
	return b
}

// live returns the value of b, panicking if b has been reclaimed.
func (b *box[T]) live() *T {
	if b.dead.Load() {
		panic(fmt.Errorf("memory: %w at %s", ErrReclaimed, Address(b.id)))
	}
	return &b.value
}
