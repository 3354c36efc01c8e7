package memory

import (
	"errors"
	"testing"

	"github.com/chazu/mortar/memory/trace"
)

// forEachProfile runs f once per profile, each with a heap created on the
// subtest's goroutine.
func forEachProfile(t *testing.T, f func(t *testing.T, h *Heap)) {
	t.Helper()
	for _, p := range Profiles {
		t.Run(p.String(), func(t *testing.T) {
			f(t, newHeap(p))
		})
	}
}

func forProfiles(t *testing.T, ps []Profile, f func(t *testing.T, h *Heap)) {
	t.Helper()
	for _, p := range ps {
		t.Run(p.String(), func(t *testing.T) {
			f(t, newHeap(p))
		})
	}
}

func mustPanicWith(t *testing.T, target error, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %v", target)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("expected panic wrapping %v, got %v", target, r)
		}
	}()
	f()
}

// holder owns one pointer.
type holder struct {
	child Ptr[int]
}

func (h holder) Trace(v trace.Visitor) error {
	return h.child.Trace(v)
}

// link is a mutable node that can close a cycle.
type link struct {
	name string
	next OptPtrMut[link]
}

func (l *link) Trace(v trace.Visitor) error {
	return l.next.Trace(v)
}

// newCycle builds a <-> b. Once the returned handles are released the pair
// is reachable only from each other.
func newCycle(h *Heap) (a, b PtrMut[link]) {
	a = NewMutIn(h, link{name: "a"})
	b = NewMutIn(h, link{name: "b"})

	g := a.Get().BorrowMut()
	g.Get().next = Some(b.Clone())
	g.Release()

	g = b.Get().BorrowMut()
	g.Get().next = Some(a.Clone())
	g.Release()
	return a, b
}
