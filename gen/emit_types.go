package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/types"

	"github.com/dave/jennifer/jen"
)

// GenerateTypes renders TypeName and Copy for the types that derive them.
// which limits the output to DeriveTypeName, DeriveCopy or both. It returns
// nil source when there is nothing to generate.
func GenerateTypes(model *PackageModel, which Derive) ([]byte, error) {
	f := jen.NewFilePathName(model.ImportPath, model.Name)
	f.HeaderComment(generatedHeader)

	n := 0
	var errs []error
	for _, t := range model.Types {
		if t.IsInterface {
			continue
		}
		if which.Has(DeriveTypeName) && t.Derives.Has(DeriveTypeName) {
			if n > 0 {
				f.Line()
			}
			f.Func().Params(receiver(t, "", false)).Id("TypeName").Params().String().
				Block(jen.Return(jen.Lit(t.TypeNameValue())))
			n++
		}
		if which.Has(DeriveCopy) && t.Derives.Has(DeriveCopy) {
			body, err := copyBody(model, t)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if n > 0 {
				f.Line()
			}
			recv := receiverName(t.Name)
			f.Func().Params(receiver(t, recv, true)).Id("Copy").Params().
				Qual(t.Options.Runtime, "Object").
				Block(body...)
			n++
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if n == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering type methods: %w", err)
	}
	log.Infof("generated %d type methods in %s", n, model.ImportPath)
	return buf.Bytes(), nil
}

// copyBody returns a copy of the value with use_copy, and the result of the
// type's Clone method otherwise.
func copyBody(model *PackageModel, t *TypeModel) ([]jen.Code, error) {
	if !t.Derives.Has(DeriveTypeName) && lookupMethod(model, t, "TypeName") == nil {
		return nil, fmt.Errorf("%s: %s derives Copy, so it needs TypeName too", t.Pos, t.Name)
	}
	recv := receiverName(t.Name)
	if t.Options.UseCopy {
		return []jen.Code{
			jen.Id("cp").Op(":=").Op("*").Id(recv),
			jen.Return(jen.Op("&").Id("cp")),
		}, nil
	}
	if !hasClone(model, t) {
		return nil, fmt.Errorf("%s: %s derives Copy without use_copy, so it needs a method Clone() *%s", t.Pos, t.Name, t.Name)
	}
	return []jen.Code{jen.Return(jen.Id(recv).Dot("Clone").Call())}, nil
}

func lookupMethod(model *PackageModel, t *TypeModel, name string) *types.Signature {
	obj, _, _ := types.LookupFieldOrMethod(types.NewPointer(t.Named), true, model.types, name)
	fn, ok := obj.(*types.Func)
	if !ok {
		return nil
	}
	return fn.Type().(*types.Signature)
}

func hasClone(model *PackageModel, t *TypeModel) bool {
	sig := lookupMethod(model, t, "Clone")
	if sig == nil {
		return false
	}
	if sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return false
	}
	ptr, ok := sig.Results().At(0).Type().(*types.Pointer)
	if !ok {
		return false
	}
	named, ok := ptr.Elem().(*types.Named)
	return ok && named.Origin() == t.Named.Origin()
}
