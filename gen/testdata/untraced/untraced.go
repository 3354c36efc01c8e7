package untraced

import "github.com/chazu/mortar/memory"

type Inner struct {
	P memory.Ptr[int]
}

//mortar:derive Trace
type Outer struct {
	In Inner
}
