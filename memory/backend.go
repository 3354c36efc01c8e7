package memory

import (
	"sync"
	"sync/atomic"
)

// backend is the per-profile strategy behind a Heap. Only this package can
// implement it.
type backend interface {
	profile() Profile

	// load and add read and adjust the strong count of an allocation.
	load(h *header) int64
	add(h *header, delta int64) int64

	// guard panics if the calling goroutine may not use the heap.
	guard(hp *Heap)

	// enter and exit bracket every pointer operation.
	enter(hp *Heap)
	exit(hp *Heap)

	// stopWorld and startWorld bracket the scan phase of a collection.
	stopWorld()
	startWorld()

	// collects reports whether allocations are registered for collection.
	collects() bool
}

func backendFor(p Profile) backend {
	switch p {
	case RC:
		return rcBackend{}
	case ARC:
		return arcBackend{}
	case GC:
		return gcBackend{}
	case AGC:
		return agcBackend{}
	}
	panic("memory: no backend for profile " + p.String())
}

type rcBackend struct{}

func (rcBackend) profile() Profile { return RC }

func (rcBackend) load(h *header) int64 { return h.strong }

func (rcBackend) add(h *header, delta int64) int64 {
	h.strong += delta
	return h.strong
}

func (rcBackend) guard(hp *Heap)   { hp.checkOwner() }
func (b rcBackend) enter(hp *Heap) { b.guard(hp) }
func (rcBackend) exit(*Heap)       {}
func (rcBackend) stopWorld()       {}
func (rcBackend) startWorld()      {}
func (rcBackend) collects() bool   { return false }

type arcBackend struct{}

func (arcBackend) profile() Profile { return ARC }

func (arcBackend) load(h *header) int64 { return atomic.LoadInt64(&h.strong) }

func (arcBackend) add(h *header, delta int64) int64 {
	return atomic.AddInt64(&h.strong, delta)
}

func (arcBackend) guard(*Heap)    {}
func (arcBackend) enter(*Heap)    {}
func (arcBackend) exit(*Heap)     {}
func (arcBackend) stopWorld()     {}
func (arcBackend) startWorld()    {}
func (arcBackend) collects() bool { return false }

type gcBackend struct{ rcBackend }

func (gcBackend) profile() Profile { return GC }
func (gcBackend) collects() bool   { return true }

// agcWorld is held shared by every pointer operation on an agc heap and
// exclusively while a collector scans. It is process-wide so that release
// cascades crossing heaps never need a second lock.
var agcWorld sync.RWMutex

type agcBackend struct{ arcBackend }

func (agcBackend) profile() Profile { return AGC }
func (agcBackend) enter(*Heap)      { agcWorld.RLock() }
func (agcBackend) exit(*Heap)       { agcWorld.RUnlock() }
func (agcBackend) stopWorld()       { agcWorld.Lock() }
func (agcBackend) startWorld()      { agcWorld.Unlock() }
func (agcBackend) collects() bool   { return true }
