package memory

import (
	"fmt"

	"github.com/chazu/mortar/memory/trace"
)

// Cell gives interior mutability to a shared value. Access goes through
// Borrow and BorrowMut guards: any number of shared borrows, or exactly one
// mutable borrow.
//
// Under rc and gc a conflicting borrow panics; under arc and agc it waits
// for the conflicting guard to be released. The Try variants never panic
// or wait.
//
// A Cell must not be copied after first use.
//
// Tracing or dropping a cell borrows it. If a cell is still mutably
// borrowed when its last handle is released under rc or arc, the drop walk
// fails with ErrCellBorrowed: a warning is logged and the references held
// by the value leak. Release guards before the handles they came through.
type Cell[T Pointee] struct {
	lock  borrowLock
	value T
}

// NewCell returns a cell holding v, using the borrow discipline of the
// compiled profile.
func NewCell[T Pointee](v T) *Cell[T] {
	return newCell(mustBuildProfile(), v)
}

func newCell[T Pointee](p Profile, v T) *Cell[T] {
	c := &Cell[T]{}
	c.init(p, v)
	return c
}

func (c *Cell[T]) init(p Profile, v T) {
	c.lock = newBorrowLock(p)
	c.value = v
}

// Borrow takes a shared borrow.
func (c *Cell[T]) Borrow() *Borrow[T] {
	c.lock.rlock()
	return newBorrow(&c.value, c.lock.runlock)
}

// TryBorrow takes a shared borrow if no mutable borrow is held.
func (c *Cell[T]) TryBorrow() (*Borrow[T], bool) {
	if !c.lock.tryRLock() {
		return nil, false
	}
	return newBorrow(&c.value, c.lock.runlock), true
}

// BorrowMut takes the exclusive borrow.
func (c *Cell[T]) BorrowMut() *BorrowMut[T] {
	c.lock.lock()
	return newBorrowMut(&c.value, c.lock.unlock)
}

// TryBorrowMut takes the exclusive borrow if no other borrow is held.
func (c *Cell[T]) TryBorrowMut() (*BorrowMut[T], bool) {
	if !c.lock.tryLock() {
		return nil, false
	}
	return newBorrowMut(&c.value, c.lock.unlock), true
}

// Replace swaps in v and returns the previous value.
func (c *Cell[T]) Replace(v T) T {
	g := c.BorrowMut()
	defer g.Release()
	old := *g.Get()
	*g.Get() = v
	return old
}

// Clone returns an unborrowed cell holding a copy of the value, with the
// same borrow discipline as c.
func (c *Cell[T]) Clone() Cell[T] {
	g := c.Borrow()
	defer g.Release()
	out := Cell[T]{value: cloneValue(g.Get())}
	if _, ok := c.lock.(*rwLock); ok {
		out.lock = &rwLock{}
	} else {
		out.lock = &borrowFlag{}
	}
	return out
}

// Trace visits the pointers in the cell. It fails with ErrCellBorrowed
// rather than waiting when the cell is mutably borrowed.
func (c *Cell[T]) Trace(v trace.Visitor) error {
	g, ok := c.TryBorrow()
	if !ok {
		return fmt.Errorf("memory: %w", ErrCellBorrowed)
	}
	defer g.Release()
	return trace.Field(v, g.Get())
}

// Drop walks the value for release. Like Trace it fails with
// ErrCellBorrowed when the cell is mutably borrowed.
func (c *Cell[T]) Drop(v trace.Visitor) error {
	g, ok := c.TryBorrow()
	if !ok {
		return fmt.Errorf("memory: %w", ErrCellBorrowed)
	}
	defer g.Release()
	return trace.DropField(v, g.Get())
}

func (c *Cell[T]) String() string {
	g, ok := c.TryBorrow()
	if !ok {
		return "<borrowed>"
	}
	defer g.Release()
	return g.String()
}
