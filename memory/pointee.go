package memory

import (
	"reflect"
	"sync"

	"github.com/chazu/mortar/memory/trace"
)

// Pointee is the bound on values placed behind a Ptr. Any Go type qualifies,
// including interface types, which gives pointers to values of unknown
// concrete type.
type Pointee interface{ any }

// PointeeTraits is the bound on pointee types for code generic over the
// profile. The thread-safety requirements of arc and agc are a contract on
// the value (no unsynchronized mutation after sharing), not a type bound.
type PointeeTraits = Pointee

// Cloner is implemented by values that know how to copy themselves for
// MakeMut.
type Cloner[T any] interface {
	Clone() T
}

func cloneValue[T Pointee](src *T) T {
	if c, ok := any(*src).(Cloner[T]); ok {
		return c.Clone()
	}
	if c, ok := any(src).(Cloner[T]); ok {
		return c.Clone()
	}
	v := *src
	// The copy shares the pointers of the original, so each needs its own
	// reference.
	_ = trace.DropField(trace.Visitor(retainer{}), &v)
	return v
}

var tracerType = reflect.TypeFor[trace.Tracer]()

var checkedPointees sync.Map

// checkPointee warns once per type when a value that owns traceable fields
// is allocated under a collecting profile without a Trace method of its
// own: the collector cannot see those pointers.
func checkPointee[T any]() {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Interface {
		return
	}
	if _, seen := checkedPointees.LoadOrStore(t, struct{}{}); seen {
		return
	}
	if isTracer(t) {
		return
	}
	if ownsTraceable(t, map[reflect.Type]bool{}) {
		log.Warningf("%s holds pointers but does not implement Trace; cycles through it will not be collected", t)
	}
}

func isTracer(t reflect.Type) bool {
	return t.Implements(tracerType) || reflect.PointerTo(t).Implements(tracerType)
}

func ownsTraceable(t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] {
		return false
	}
	seen[t] = true
	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			ft := t.Field(i).Type
			if isTracer(ft) || ownsTraceable(ft, seen) {
				return true
			}
		}
	case reflect.Array, reflect.Slice, reflect.Pointer:
		return isTracer(t.Elem()) || ownsTraceable(t.Elem(), seen)
	case reflect.Map:
		return isTracer(t.Elem()) || ownsTraceable(t.Elem(), seen)
	}
	return false
}
