package memory

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
	"github.com/tliron/commonlog"

	"github.com/chazu/mortar/memory/internal/collector"
	"github.com/chazu/mortar/memory/trace"
)

var log = commonlog.GetLogger("mortar.memory")

// Heap owns a set of allocations managed under one profile.
//
// Under the single-thread profiles (rc, gc) a heap belongs to the goroutine
// that created it and every other goroutine is refused with ErrCrossThread.
type Heap struct {
	backend backend
	owner   int64

	regMu   sync.Mutex
	objects map[uint64]allocation

	allocated   atomic.Uint64
	dropped     atomic.Uint64
	collections atomic.Uint64
	last        atomic.Pointer[CollectStats]
}

// CollectStats describes one collection.
type CollectStats struct {
	Scanned     int
	Roots       int
	Untraceable int
	Reclaimed   int
	Duration    time.Duration
	Timestamp   time.Time
}

// HeapStats is a point-in-time summary of a heap.
type HeapStats struct {
	Profile     Profile
	Allocated   uint64
	Dropped     uint64
	Live        uint64
	Tracked     int
	Collections uint64
	LastCollect *CollectStats
}

// NewHeap returns a heap using the profile compiled into the binary.
func NewHeap() (*Heap, error) {
	p, err := BuildProfile()
	if err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}
	return newHeap(p), nil
}

func newHeap(p Profile) *Heap {
	h := &Heap{
		backend: backendFor(p),
		owner:   goid.Get(),
	}
	if h.backend.collects() {
		h.objects = make(map[uint64]allocation)
	}
	return h
}

var defaultHeap = sync.OnceValues(NewHeap)

// Default returns the process heap used by New, NewMut and Collect. It
// panics if the binary was built without exactly one profile tag. Under the
// single-thread profiles the default heap belongs to the first goroutine
// that asks for it.
func Default() *Heap {
	h, err := defaultHeap()
	if err != nil {
		log.Criticalf("%s", err)
		panic(err)
	}
	return h
}

// Profile returns the heap's profile.
func (h *Heap) Profile() Profile {
	return h.backend.profile()
}

func (h *Heap) checkOwner() {
	if id := goid.Get(); id != h.owner {
		panic(fmt.Errorf("memory: %w: heap of goroutine %d used from goroutine %d",
			ErrCrossThread, h.owner, id))
	}
}

func (h *Heap) register(a allocation) {
	h.regMu.Lock()
	h.objects[a.hdr().id] = a
	h.regMu.Unlock()
}

func (h *Heap) unregister(id uint64) {
	if h.objects == nil {
		return
	}
	h.regMu.Lock()
	delete(h.objects, id)
	h.regMu.Unlock()
}

func (h *Heap) snapshot() []collector.Node {
	h.regMu.Lock()
	defer h.regMu.Unlock()
	nodes := make([]collector.Node, 0, len(h.objects))
	for _, a := range h.objects {
		nodes = append(nodes, a)
	}
	return nodes
}

// retain adds one strong reference to a.
func (h *Heap) retain(a allocation) {
	h.backend.enter(h)
	defer h.backend.exit(h)
	hd := a.hdr()
	if hd.dead.Load() {
		panic(fmt.Errorf("memory: %w at %s", ErrReclaimed, Address(hd.id)))
	}
	h.backend.add(hd, 1)
}

// release drops one strong reference to a, reclaiming it when it was the last.
func (h *Heap) release(a allocation) {
	h.backend.enter(h)
	defer h.backend.exit(h)
	h.releaseLocked(a)
}

func (h *Heap) releaseLocked(a allocation) {
	h.backend.guard(h)
	hd := a.hdr()
	n := h.backend.add(hd, -1)
	switch {
	case n > 0:
		return
	case n < 0:
		panic(fmt.Errorf("memory: %w at %s", ErrOverRelease, Address(hd.id)))
	}
	if !hd.dead.CompareAndSwap(false, true) {
		// Already claimed by a collection.
		return
	}
	h.unregister(hd.id)
	h.reclaim(a)
}

// reclaim hands back the references held by a dead allocation and clears it.
// It walks Drop rather than Trace, which also reaches pointers the collector
// is not shown.
func (h *Heap) reclaim(a allocation) {
	if err := a.dropValue(releaser{}); err != nil {
		log.Warningf("allocation %s dropped while untraceable, its pointers leak: %v",
			Address(a.hdr().id), err)
	}
	a.clear()
	h.dropped.Add(1)
}

type releaser struct{}

func (releaser) Visit(ref trace.Ref) error {
	if a, ok := ref.(allocation); ok {
		a.hdr().heap.releaseLocked(a)
	}
	return nil
}

// retainer adds a reference to every pointer it visits.
type retainer struct{}

func (retainer) Visit(ref trace.Ref) error {
	if a, ok := ref.(allocation); ok {
		a.hdr().heap.retain(a)
	}
	return nil
}

// Collect reclaims allocations of the heap that are only kept alive by
// reference cycles. Under rc and arc it returns ErrNoCollector.
//
// Under agc collection is best effort: allocations that cannot be traced
// at the time of the scan, such as exclusively borrowed cells, are kept
// along with everything they might reach.
func (h *Heap) Collect() (CollectStats, error) {
	if !h.backend.collects() {
		return CollectStats{}, fmt.Errorf("memory: %s profile: %w", h.Profile(), ErrNoCollector)
	}
	h.backend.guard(h)
	start := time.Now()

	h.backend.stopWorld()
	res := collector.Scan(h.snapshot())
	garbage := make([]allocation, 0, len(res.Garbage))
	for _, n := range res.Garbage {
		a := n.(allocation)
		a.hdr().dead.Store(true)
		h.unregister(a.hdr().id)
		garbage = append(garbage, a)
	}
	h.backend.startWorld()

	// Garbage is unreachable from outside, so nothing else can touch it
	// between the two critical sections.
	h.backend.enter(h)
	for _, a := range garbage {
		h.reclaim(a)
	}
	h.backend.exit(h)

	stats := CollectStats{
		Scanned:     res.Scanned,
		Roots:       res.Roots,
		Untraceable: res.Untraceable,
		Reclaimed:   len(garbage),
		Duration:    time.Since(start),
		Timestamp:   start,
	}
	h.collections.Add(1)
	h.last.Store(&stats)

	if stats.Reclaimed > 0 {
		log.Infof("collected %d of %d allocations in %s", stats.Reclaimed, stats.Scanned, stats.Duration)
	} else {
		log.Debugf("collection found no garbage among %d allocations", stats.Scanned)
	}
	return stats, nil
}

// Stats returns a summary of the heap.
func (h *Heap) Stats() HeapStats {
	s := HeapStats{
		Profile:     h.Profile(),
		Allocated:   h.allocated.Load(),
		Dropped:     h.dropped.Load(),
		Collections: h.collections.Load(),
		LastCollect: h.last.Load(),
	}
	s.Live = s.Allocated - s.Dropped
	if h.objects != nil {
		h.regMu.Lock()
		s.Tracked = len(h.objects)
		h.regMu.Unlock()
	}
	return s
}

// Collect runs Collect on the default heap.
func Collect() (CollectStats, error) {
	return Default().Collect()
}
