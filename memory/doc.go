// Package memory implements the pointer types the runtime builds its values
// from.
//
// The package offers one API over four ownership strategies (profiles):
//   - rc: single-thread reference counting
//   - arc: multi-thread atomic reference counting
//   - gc: single-thread reference counting with a cycle collector
//   - agc: multi-thread reference counting with a cycle collector
//
// Exactly one profile is compiled in, chosen with one of the build tags
// mortar_rc, mortar_arc, mortar_gc or mortar_agc. Two tags do not compile;
// no tag compiles but the default heap refuses to start.
//
// The main types are:
//   - Ptr: a shared handle to a heap allocation
//   - OptPtr: an optional Ptr
//   - Cell: interior mutability, with PtrMut = Ptr[Cell[T]]
//   - Borrow and BorrowMut: guards over a Cell
//
// Handles are released explicitly:
//
//	p := memory.New(Node{})
//	defer p.Release()
//
// Values that own further pointers implement trace.Dropper, so that
// releasing them releases what they own, and under the gc and agc profiles
// also trace.Tracer, so that Collect can reclaim cycles. mortar-gen writes
// both.
package memory
