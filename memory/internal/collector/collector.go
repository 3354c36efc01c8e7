// Package collector finds allocations that are kept alive only by reference
// cycles.
//
// The algorithm is synchronous trial deletion over a snapshot of a heap:
//
//  1. Every node is traced once and each edge to another node of the
//     snapshot is counted as an internal reference of its target.
//  2. A node whose strong count exceeds its internal references is held by
//     something outside the snapshot (a local handle, another heap) and is a
//     root. So is any node whose traversal failed: its edges are unknown, so
//     it and everything it might reach must be kept.
//  3. Everything reachable from a root survives; the rest is garbage.
//
// Scan does not mutate anything. Reclaiming the garbage, and handing back the
// references it held, is the caller's job.
package collector

import (
	"github.com/tliron/commonlog"

	"github.com/chazu/mortar/memory/trace"
)

var log = commonlog.GetLogger("mortar.collector")

// Node is the type-erased view of one allocation.
type Node interface {
	trace.Ref

	// StrongCount is the number of live handles to the allocation, including
	// the handles stored inside other allocations.
	StrongCount() int64

	// TraceOwned visits the pointers owned by the allocation's value.
	TraceOwned(v trace.Visitor) error
}

// Result describes one scan.
type Result struct {
	Scanned     int
	Roots       int
	Untraceable int
	Garbage     []Node
}

// Scan classifies nodes into survivors and garbage. The caller must make
// sure strong counts cannot change while Scan runs.
func Scan(nodes []Node) Result {
	res := Result{Scanned: len(nodes)}
	if len(nodes) == 0 {
		return res
	}

	index := make(map[uint64]int, len(nodes))
	for i, n := range nodes {
		index[n.RefID()] = i
	}

	internal := make([]int64, len(nodes))
	edges := make([][]int, len(nodes))
	traced := make([]bool, len(nodes))

	for i, n := range nodes {
		var out []int
		err := n.TraceOwned(trace.VisitorFunc(func(ref trace.Ref) error {
			if j, ok := index[ref.RefID()]; ok {
				out = append(out, j)
			}
			return nil
		}))
		if err != nil {
			// Partial edges are discarded so the targets keep looking
			// externally referenced.
			log.Debugf("allocation %d is untraceable this pass: %v", n.RefID(), err)
			res.Untraceable++
			continue
		}
		traced[i] = true
		edges[i] = out
		for _, j := range out {
			internal[j]++
		}
	}

	marked := make([]bool, len(nodes))
	stack := make([]int, 0, len(nodes))
	for i, n := range nodes {
		if !traced[i] || n.StrongCount() > internal[i] {
			marked[i] = true
			stack = append(stack, i)
			res.Roots++
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, j := range edges[i] {
			if !marked[j] {
				marked[j] = true
				stack = append(stack, j)
			}
		}
	}

	for i, n := range nodes {
		if !marked[i] {
			res.Garbage = append(res.Garbage, n)
		}
	}

	log.Debugf("scanned %d allocations: %d roots, %d untraceable, %d garbage",
		res.Scanned, res.Roots, res.Untraceable, len(res.Garbage))

	return res
}
