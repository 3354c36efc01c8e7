package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/types"

	"github.com/dave/jennifer/jen"
)

const generatedHeader = "Code generated by mortar-gen. DO NOT EDIT."

// expr builds a fresh expression for the value being traced. jen statements
// are mutable, so every use needs its own.
type expr func() *jen.Statement

func (e expr) dot(name string) expr {
	return func() *jen.Statement { return e().Dot(name) }
}

func (e expr) index(i string) expr {
	return func() *jen.Statement { return e().Index(jen.Id(i)) }
}

func (e expr) deref() expr {
	return func() *jen.Statement { return jen.Parens(jen.Op("*").Add(e())) }
}

func ident(name string) expr {
	return func() *jen.Statement { return jen.Id(name) }
}

// traceEmitter renders the Trace or Drop methods of one package. report is
// only filled in for Trace.
type traceEmitter struct {
	model   *PackageModel
	planner *planner
	walk    walk
	report  *Report
}

// checked wraps a call returning error in the early-return idiom.
func checked(call *jen.Statement) jen.Code {
	return jen.If(
		jen.Err().Op(":=").Add(call),
		jen.Err().Op("!=").Nil(),
	).Block(jen.Return(jen.Err()))
}

func loopVar(base string, depth int) string {
	if depth == 0 {
		return base
	}
	return fmt.Sprintf("%s%d", base, depth)
}

func (em *traceEmitter) stmts(tracePath string, x expr, p *plan, depth int) []jen.Code {
	switch p.kind {
	case planMethod:
		return []jen.Code{checked(x().Dot(em.walk.method).Call(jen.Id("v")))}
	case planDynamic:
		return []jen.Code{checked(jen.Qual(tracePath, em.walk.value).Call(jen.Id("v"), x()))}
	case planParam:
		return []jen.Code{checked(jen.Qual(tracePath, em.walk.field).Call(jen.Id("v"), jen.Op("&").Add(x())))}
	case planPointer:
		inner := x
		if p.elem.kind != planMethod {
			inner = x.deref()
		}
		return []jen.Code{
			jen.If(x().Op("!=").Nil()).Block(em.stmts(tracePath, inner, p.elem, depth)...),
		}
	case planSequence:
		i := loopVar("i", depth)
		return []jen.Code{
			jen.For(jen.Id(i).Op(":=").Range().Add(x())).Block(
				em.stmts(tracePath, x.index(i), p.elem, depth+1)...,
			),
		}
	case planMap:
		k, e := loopVar("k", depth), loopVar("e", depth)
		var body []jen.Code
		keyVar, elemVar := jen.Id("_"), jen.Id("_")
		if !p.key.empty() {
			keyVar = jen.Id(k)
			body = append(body, em.stmts(tracePath, ident(k), p.key, depth+1)...)
		}
		if !p.elem.empty() {
			elemVar = jen.Id(e)
			body = append(body, em.stmts(tracePath, ident(e), p.elem, depth+1)...)
		}
		head := jen.List(keyVar, elemVar)
		if p.elem.empty() {
			head = keyVar
		}
		return []jen.Code{jen.For(head.Op(":=").Range().Add(x())).Block(body...)}
	case planStruct:
		var out []jen.Code
		for _, f := range p.fields {
			out = append(out, em.stmts(tracePath, x.dot(f.name), f.plan, depth)...)
		}
		return out
	}
	return nil
}

func receiver(t *TypeModel, name string, pointer bool) *jen.Statement {
	typ := jen.Id(t.Name)
	if params := t.TypeParams(); len(params) > 0 {
		ids := make([]jen.Code, len(params))
		for i, p := range params {
			ids[i] = jen.Id(p)
		}
		typ = typ.Types(ids...)
	}
	if pointer {
		typ = jen.Op("*").Add(typ)
	}
	if name == "" {
		return typ
	}
	return jen.Id(name).Add(typ)
}

// method renders one walk method. trace(ignore) hides a field, or the
// whole type, from Trace only: Drop still releases whatever it can reach,
// skipping what it cannot plan.
func (em *traceEmitter) method(f *jen.File, t *TypeModel) error {
	tracePath := t.Options.Memory + "/trace"
	tracing := em.report != nil
	rep := TypeReport{Name: t.Name, SumType: t.SumType, Ignored: t.Options.TraceIgnore}
	if tracing {
		defer func() { em.report.Types = append(em.report.Types, rep) }()
	}

	if tracing && t.Options.TraceIgnore {
		f.Func().Params(receiver(t, "", !t.ValueReceiver)).Id(em.walk.method).
			Params(jen.Qual(tracePath, "Visitor")).Error().
			Block(jen.Return(jen.Nil()))
		return nil
	}

	recv := receiverName(t.Name)
	self := ident(recv)
	var body []jen.Code

	if _, isStruct := t.Named.Underlying().(*types.Struct); !isStruct {
		// A non-struct type traces the value itself.
		p, err := em.planner.structural(t.Named.Underlying(), false)
		switch {
		case err != nil && t.Options.TraceIgnore:
			log.Debugf("%s: %s is not walked by %s: %v", t.Pos, t.Name, em.walk.method, err)
			p = nothing
		case err != nil:
			return fmt.Errorf("%s: %s: %w", t.Pos, t.Name, err)
		}
		inner := self
		if !t.ValueReceiver {
			inner = self.deref()
		}
		body = append(body, em.stmts(tracePath, inner, p, 0)...)
		if !p.empty() {
			rep.Traced = append(rep.Traced, "*")
		}
	}

	for _, field := range t.Fields {
		ignored := field.Ignore || t.Options.TraceIgnore
		if ignored && tracing {
			log.Debugf("%s: trusting trace(ignore) on %s.%s", field.Pos, t.Name, field.Name)
			rep.IgnoredFields = append(rep.IgnoredFields, field.Name)
			continue
		}
		p, err := em.planner.planField(field)
		if err != nil {
			if !ignored {
				return err
			}
			log.Debugf("%s: %s.%s is not walked by %s: %v", field.Pos, t.Name, field.Name, em.walk.method, err)
			continue
		}
		if p.empty() {
			continue
		}
		rep.Traced = append(rep.Traced, field.Name)
		body = append(body, em.stmts(tracePath, self.dot(field.Name), p, 0)...)
	}
	body = append(body, jen.Return(jen.Nil()))

	f.Func().Params(receiver(t, recv, !t.ValueReceiver)).Id(em.walk.method).
		Params(jen.Id("v").Qual(tracePath, "Visitor")).Error().
		Block(body...)
	return nil
}

// GenerateTrace renders the Trace methods for every type deriving Trace,
// behind the build constraint of the collecting profiles. It returns nil
// source when there is nothing to generate.
func GenerateTrace(model *PackageModel, report *Report) ([]byte, error) {
	if report == nil {
		report = &Report{}
	}
	return generateWalk(model, traceWalk, report)
}

// GenerateDrop renders the Drop methods for every type deriving Trace. They
// are compiled under every profile: releasing a value walks them to release
// the pointers it owns.
func GenerateDrop(model *PackageModel) ([]byte, error) {
	return generateWalk(model, dropWalk, nil)
}

func generateWalk(model *PackageModel, w walk, report *Report) ([]byte, error) {
	em := &traceEmitter{model: model, planner: newPlanner(model, w), walk: w, report: report}

	f := jen.NewFilePathName(model.ImportPath, model.Name)
	f.HeaderComment(generatedHeader)
	if w.tag != "" {
		f.HeaderComment(w.tag)
	}

	n := 0
	var errs []error
	for _, t := range model.Types {
		if !t.Derives.Has(DeriveTrace) || t.IsInterface {
			continue
		}
		if n > 0 {
			f.Line()
		}
		if err := em.method(f, t); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if n == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering %s methods: %w", w.method, err)
	}
	log.Infof("generated %s for %d types in %s", w.method, n, model.ImportPath)
	return buf.Bytes(), nil
}
