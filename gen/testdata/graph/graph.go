package graph

import (
	"github.com/chazu/mortar/memory"
	"github.com/chazu/mortar/memory/trace"
)

// Node is a tree node that points back at its parent.
//
//mortar:derive Trace TypeName
type Node struct {
	Parent   memory.OptPtrMut[Node]
	Children []memory.PtrMut[Node]
	Color    string `mortar:"trace(ignore)"`
	Tags     map[string]memory.Ptr[Label]
	Extra    any
	Lookup   *[]memory.Ptr[Label]
	Meta     struct {
		Owner memory.OptPtr[Label]
		Count int
	}
	Hidden trace.Untrace[memory.Ptr[Label]]
	Err    error
}

//mortar:derive Trace TypeName Copy
//mortar:attr type_name="Bouncy", use_copy, trace(ignore)
type Ball struct {
	Bounce memory.Ptr[Label]
}

//mortar:derive TypeName Copy
type Label struct {
	Text string
}

func (l *Label) Clone() *Label {
	c := *l
	return &c
}

//mortar:derive Trace
type Pair[T any] struct {
	First, Second T
	Weight        memory.Ptr[int]
}

//mortar:derive Trace
type Children []memory.PtrMut[Node]

// Legacy traces itself by hand and has no Drop.
type Legacy struct {
	P memory.Ptr[int]
}

func (l *Legacy) Trace(v trace.Visitor) error {
	return l.P.Trace(v)
}

type opaque struct {
	p memory.Ptr[int]
}

//mortar:derive Trace
type Wrapper struct {
	Inner  Legacy
	Opaque opaque `mortar:"trace(ignore)"`
	Shared memory.Ptr[Label] `mortar:"trace(ignore)"`
}
