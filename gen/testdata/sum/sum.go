package sum

import "github.com/chazu/mortar/memory"

type Point struct {
	X, Y float64
}

// Shape is closed over the implementations in this package.
//
//mortar:derive Trace
type Shape interface {
	Area() float64
}

type Circle struct {
	Center memory.Ptr[Point]
	Radius float64
}

func (Circle) Area() float64 { return 0 }

type Poly struct {
	Points []memory.Ptr[Point]
}

func (*Poly) Area() float64 { return 0 }

//mortar:derive Trace
type Scene struct {
	Shapes []Shape
	Index  map[memory.Ptr[Point]]int
}
