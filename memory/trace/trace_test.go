package trace

import (
	"errors"
	"testing"
)

type ref uint64

func (r ref) RefID() uint64 { return uint64(r) }

// leaf owns a single ref.
type leaf struct {
	r ref
}

func (l leaf) Trace(v Visitor) error {
	return v.Visit(l.r)
}

// ptrLeaf uses a pointer receiver.
type ptrLeaf struct {
	r ref
}

func (l *ptrLeaf) Trace(v Visitor) error {
	return v.Visit(l.r)
}

type plain struct {
	n int
}

func TestValueDispatch(t *testing.T) {
	n, err := Count(VisitorTracer(func(v Visitor) error {
		if err := Value(v, leaf{r: 1}); err != nil {
			return err
		}
		if err := Value(v, plain{n: 3}); err != nil {
			return err
		}
		return Value(v, nil)
	}))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 visit, got %d", n)
	}
}

func TestFieldPointerReceiver(t *testing.T) {
	f := ptrLeaf{r: 7}
	refs, err := Refs(VisitorTracer(func(v Visitor) error {
		return Field(v, &f)
	}))
	if err != nil {
		t.Fatalf("Refs: %v", err)
	}
	if len(refs) != 1 || refs[0].RefID() != 7 {
		t.Errorf("expected ref 7, got %v", refs)
	}
}

func TestFieldInterfaceType(t *testing.T) {
	var x Tracer = leaf{r: 9}
	n, err := Count(VisitorTracer(func(v Visitor) error {
		return Field(v, &x)
	}))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected dynamic value to be traced once, got %d", n)
	}

	var empty Tracer
	n, err = Count(VisitorTracer(func(v Visitor) error {
		return Field(v, &empty)
	}))
	if err != nil || n != 0 {
		t.Errorf("nil interface: got n=%d err=%v", n, err)
	}
}

func TestSliceStopsAtFirstError(t *testing.T) {
	stop := errors.New("stop")
	s := []leaf{{r: 1}, {r: 2}, {r: 3}}

	var seen []uint64
	err := Slice(VisitorFunc(func(r Ref) error {
		seen = append(seen, r.RefID())
		if r.RefID() == 2 {
			return stop
		}
		return nil
	}), s)

	if !errors.Is(err, stop) {
		t.Fatalf("expected stop error, got %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("expected traversal to stop after 2 visits, got %v", seen)
	}
}

func TestMapValues(t *testing.T) {
	m := map[string]leaf{"a": {r: 1}, "b": {r: 2}}
	n, err := Count(VisitorTracer(func(v Visitor) error {
		return MapValues(v, m)
	}))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 visits, got %d", n)
	}
}

func TestUntraceVisitsNothing(t *testing.T) {
	u := NewUntrace([]leaf{{r: 1}, {r: 2}})
	n, err := Count(u)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("Untrace should report no owned pointers, got %d", n)
	}
	if len(u.Get()) != 2 {
		t.Error("Untrace should keep the wrapped value")
	}
}

// hiding owns one ref that Trace skips and Drop reports.
type hiding struct {
	shown  leaf
	hidden Untrace[leaf]
}

func (h *hiding) Trace(v Visitor) error {
	if err := h.shown.Trace(v); err != nil {
		return err
	}
	return h.hidden.Trace(v)
}

func (h *hiding) Drop(v Visitor) error {
	if err := h.shown.Trace(v); err != nil {
		return err
	}
	return h.hidden.Drop(v)
}

func TestDropFieldPrefersDrop(t *testing.T) {
	h := hiding{shown: leaf{r: 1}, hidden: NewUntrace(leaf{r: 2})}

	traced, err := Count(VisitorTracer(func(v Visitor) error {
		return Field(v, &h)
	}))
	if err != nil || traced != 1 {
		t.Errorf("Field: got n=%d err=%v, want 1 visit", traced, err)
	}

	dropped, err := Refs(VisitorTracer(func(v Visitor) error {
		return DropField(v, &h)
	}))
	if err != nil {
		t.Fatalf("DropField: %v", err)
	}
	if len(dropped) != 2 || dropped[1].RefID() != 2 {
		t.Errorf("DropField should reach the untraced ref, got %v", dropped)
	}
}

func TestDropFieldFallsBackToTrace(t *testing.T) {
	f := ptrLeaf{r: 4}
	var x any = leaf{r: 5}
	refs, err := Refs(VisitorTracer(func(v Visitor) error {
		if err := DropField(v, &f); err != nil {
			return err
		}
		if err := DropField(v, &x); err != nil {
			return err
		}
		return DropValue(v, plain{n: 1})
	}))
	if err != nil {
		t.Fatalf("Refs: %v", err)
	}
	if len(refs) != 2 || refs[0].RefID() != 4 || refs[1].RefID() != 5 {
		t.Errorf("expected refs [4 5], got %v", refs)
	}
}

// VisitorTracer adapts a traversal function into a Tracer for tests.
type VisitorTracer func(v Visitor) error

func (f VisitorTracer) Trace(v Visitor) error { return f(v) }
