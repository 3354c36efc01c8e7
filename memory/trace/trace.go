// Package trace defines the traversal protocol a cycle-collecting heap uses
// to find the pointers owned by a value.
//
// A type takes part by implementing Tracer: its Trace method calls the
// visitor once for every pointer it owns, directly or through nested
// aggregates, and returns the first error the visitor reports without
// visiting anything further. Trace implementations are normally produced by
// mortar-gen rather than written by hand.
//
// Dropping a value walks a second, wider method: Drop visits every pointer
// the value owns, including those hidden from Trace by Untrace or an
// ignored field, so each can give up its reference. Drop is compiled under
// every profile; Trace only under the cycle-collecting ones. A value with
// neither method is treated as owning no pointers.
package trace

// Ref identifies an allocation reached during a traversal. Refs are minted
// by the memory package; visitors compare them by RefID.
type Ref interface {
	RefID() uint64
}

// Visitor is invoked for every owned pointer found by a traversal.
// Returning a non-nil error stops the traversal immediately.
type Visitor interface {
	Visit(ref Ref) error
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(ref Ref) error

// Visit calls f(ref).
func (f VisitorFunc) Visit(ref Ref) error {
	return f(ref)
}

// Tracer is implemented by types that own pointers.
type Tracer interface {
	Trace(v Visitor) error
}

// Value traces x through dynamic dispatch. It is used for interface-typed
// fields, where the concrete type is only known at run time. A nil x, or one
// that does not implement Tracer, owns nothing.
func Value(v Visitor, x any) error {
	if t, ok := x.(Tracer); ok {
		return t.Trace(v)
	}
	return nil
}

// Field traces the value stored at f. It covers both pointer- and
// value-receiver Trace methods, and falls back to the dynamic value when T
// is itself an interface type.
func Field[T any](v Visitor, f *T) error {
	if f == nil {
		return nil
	}
	if t, ok := any(f).(Tracer); ok {
		return t.Trace(v)
	}
	return Value(v, *f)
}

// Dropper is implemented by types that hand back owned pointers when they
// are dropped.
type Dropper interface {
	Drop(v Visitor) error
}

// DropValue walks the owned pointers of x through dynamic dispatch,
// preferring Drop and falling back to Trace.
func DropValue(v Visitor, x any) error {
	if d, ok := x.(Dropper); ok {
		return d.Drop(v)
	}
	return Value(v, x)
}

// DropField is Field for the drop walk.
func DropField[T any](v Visitor, f *T) error {
	if f == nil {
		return nil
	}
	if d, ok := any(f).(Dropper); ok {
		return d.Drop(v)
	}
	if t, ok := any(f).(Tracer); ok {
		return t.Trace(v)
	}
	return DropValue(v, *f)
}

// Slice traces every element of s in order.
func Slice[E Tracer](v Visitor, s []E) error {
	for i := range s {
		if err := s[i].Trace(v); err != nil {
			return err
		}
	}
	return nil
}

// MapValues traces every value of m. Map iteration order is unspecified,
// so the order of visits is too.
func MapValues[K comparable, E Tracer](v Visitor, m map[K]E) error {
	for _, e := range m {
		if err := e.Trace(v); err != nil {
			return err
		}
	}
	return nil
}

// Refs returns the refs visited by t.Trace, in visit order.
func Refs(t Tracer) ([]Ref, error) {
	var refs []Ref
	err := t.Trace(VisitorFunc(func(ref Ref) error {
		refs = append(refs, ref)
		return nil
	}))
	return refs, err
}

// Count returns the number of pointers t owns.
func Count(t Tracer) (int, error) {
	refs, err := Refs(t)
	return len(refs), err
}
