package object

import "testing"

type point struct{ x, y int }

func (point) TypeName() string { return "Point" }

func (p *point) Copy() Object {
	c := *p
	return &c
}

type tag string

func (tag) TypeName() string { return "Tag" }

func TestTypeNameOf(t *testing.T) {
	if got := TypeNameOf(nil); got != "Null" {
		t.Errorf("nil object: got %q", got)
	}
	if got := TypeNameOf(&point{}); got != "Point" {
		t.Errorf("got %q", got)
	}
}

func TestCopyOf(t *testing.T) {
	p := &point{x: 1, y: 2}
	c, ok := CopyOf(p).(*point)
	if !ok {
		t.Fatalf("unexpected copy type %T", CopyOf(p))
	}
	if c == p || *c != *p {
		t.Errorf("expected an equal but distinct copy, got %p %p", c, p)
	}

	var o Object = tag("a")
	if CopyOf(o) != o {
		t.Error("values without Copy should be returned as is")
	}
}
