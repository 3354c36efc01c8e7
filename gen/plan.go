package gen

import (
	"fmt"
	"go/types"
)

type planKind uint8

const (
	planNone     planKind = iota
	planMethod            // call the walk's method on the value
	planPointer           // nil check, then elem
	planSequence          // slice or array: elem per index
	planMap               // key and elem per entry
	planDynamic           // interface: trace.Value
	planParam             // type parameter, or Trace only on drop: trace.Field
	planStruct            // anonymous struct: fields inline
)

// walk names the method a generated traversal implements and the trace
// helpers it dispatches through.
type walk struct {
	method string
	value  string
	field  string
	tag    string // build constraint of the output file, if any
}

var (
	traceWalk = walk{method: "Trace", value: "Value", field: "Field", tag: "//go:build mortar_gc || mortar_agc"}
	dropWalk  = walk{method: "Drop", value: "DropValue", field: "DropField"}
)

// plan says how to visit the pointers reachable from one value.
type plan struct {
	kind   planKind
	elem   *plan
	key    *plan
	fields []fieldPlan
}

type fieldPlan struct {
	name string
	plan *plan
}

var nothing = &plan{kind: planNone}

func (p *plan) empty() bool {
	return p == nil || p.kind == planNone
}

// UntracedTypeError reports a named type that owns pointers but has no
// Trace method.
type UntracedTypeError struct {
	Type  types.Type
	Field string
}

func (e *UntracedTypeError) Error() string {
	return fmt.Sprintf("field %s: %s holds pointers but has no Trace method; derive Trace for it or tag the field `mortar:\"trace(ignore)\"`",
		e.Field, e.Type)
}

// planner decides the plan for field types of one package.
type planner struct {
	pkg        *types.Package
	walk       walk
	generating map[*types.TypeName]bool

	// visiting guards against recursive named types while checking whether
	// a type without Trace owns pointers.
	visiting map[*types.Named]bool
}

func newPlanner(model *PackageModel, w walk) *planner {
	pl := &planner{
		pkg:        model.types,
		walk:       w,
		generating: map[*types.TypeName]bool{},
		visiting:   map[*types.Named]bool{},
	}
	for _, t := range model.Types {
		if t.Derives.Has(DeriveTrace) && !t.IsInterface {
			pl.generating[t.Named.Obj()] = true
		}
	}
	return pl
}

// hasWalk reports whether values of t can be walked by a method call, and
// whether that call is the walk's own method.
func (pl *planner) hasWalk(t types.Type) (ok, direct bool) {
	if named, isNamed := t.(*types.Named); isNamed && pl.generating[named.Origin().Obj()] {
		return true, true
	}
	if pl.hasMethod(t, pl.walk.method) {
		return true, true
	}
	if pl.walk.method != traceWalk.method && pl.hasMethod(t, traceWalk.method) {
		return true, false
	}
	return false, false
}

func (pl *planner) hasMethod(t types.Type, name string) bool {
	obj, _, _ := types.LookupFieldOrMethod(t, true, pl.pkg, name)
	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}
	sig := fn.Type().(*types.Signature)
	return sig.Params().Len() == 1 && sig.Results().Len() == 1 && isError(sig.Results().At(0).Type())
}

func isError(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

// planField plans one field of a type being generated.
func (pl *planner) planField(f FieldModel) (*plan, error) {
	p, err := pl.plan(f.Type, false)
	if err != nil {
		if ue, ok := err.(*UntracedTypeError); ok && ue.Field == "" {
			ue.Field = f.Name
		}
		return nil, fmt.Errorf("%s: %w", f.Pos, err)
	}
	return p, nil
}

// plan returns how to trace a value of type t. Inside a named type without
// Trace (nested), interface values are not traced: only static ownership
// makes such a type an error.
func (pl *planner) plan(t types.Type, nested bool) (*plan, error) {
	t = types.Unalias(t)
	if _, ok := t.(*types.TypeParam); ok {
		return &plan{kind: planParam}, nil
	}
	if types.IsInterface(t) {
		if nested || isError(t) {
			return nothing, nil
		}
		return &plan{kind: planDynamic}, nil
	}
	if _, ok := t.(*types.Pointer); ok {
		return pl.structural(t, nested)
	}
	if ok, direct := pl.hasWalk(t); ok {
		if !direct {
			// Trace only: trace.DropField falls back to it at run time.
			return &plan{kind: planParam}, nil
		}
		return &plan{kind: planMethod}, nil
	}
	if named, ok := t.(*types.Named); ok {
		if pl.visiting[named] {
			return nothing, nil
		}
		pl.visiting[named] = true
		p, err := pl.structural(named.Underlying(), true)
		delete(pl.visiting, named)
		if err != nil {
			return nil, err
		}
		if !p.empty() {
			return nil, &UntracedTypeError{Type: named}
		}
		return nothing, nil
	}
	return pl.structural(t, nested)
}

func (pl *planner) structural(t types.Type, nested bool) (*plan, error) {
	switch u := t.(type) {
	case *types.Pointer:
		elem, err := pl.plan(u.Elem(), nested)
		if err != nil || elem.empty() {
			return nothing, err
		}
		return &plan{kind: planPointer, elem: elem}, nil
	case *types.Slice:
		return pl.sequence(u.Elem(), nested)
	case *types.Array:
		if u.Len() == 0 {
			return nothing, nil
		}
		return pl.sequence(u.Elem(), nested)
	case *types.Map:
		key, err := pl.plan(u.Key(), nested)
		if err != nil {
			return nil, err
		}
		elem, err := pl.plan(u.Elem(), nested)
		if err != nil {
			return nil, err
		}
		if key.empty() && elem.empty() {
			return nothing, nil
		}
		return &plan{kind: planMap, key: key, elem: elem}, nil
	case *types.Struct:
		p := &plan{kind: planStruct}
		for i := range u.NumFields() {
			f := u.Field(i)
			fp, err := pl.plan(f.Type(), nested)
			if err != nil {
				return nil, err
			}
			if !fp.empty() {
				p.fields = append(p.fields, fieldPlan{name: f.Name(), plan: fp})
			}
		}
		if len(p.fields) == 0 {
			return nothing, nil
		}
		return p, nil
	}
	return nothing, nil
}

func (pl *planner) sequence(elem types.Type, nested bool) (*plan, error) {
	p, err := pl.plan(elem, nested)
	if err != nil || p.empty() {
		return nothing, err
	}
	return &plan{kind: planSequence, elem: p}, nil
}
