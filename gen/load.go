package gen

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"
)

// LoadConfig says which package to load and how.
type LoadConfig struct {
	// Dir is the directory of the package to load.
	Dir string
	// Tags are build tags in addition to mortar_gc, which is always set so
	// that traces generated in dependencies are visible.
	Tags []string
	// Mask lists file names in Dir, normally earlier generator output,
	// that are reduced to their package clause before type checking.
	Mask []string
	// Defaults apply to every type before its own //mortar:attr options.
	Defaults Options
}

// LoadPackage loads the package in cfg.Dir and returns the model of its
// annotated types.
func LoadPackage(cfg LoadConfig) (*PackageModel, error) {
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", cfg.Dir, err)
	}

	tags := append([]string{"mortar_gc"}, cfg.Tags...)
	pcfg := &packages.Config{
		Mode:       packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
		Dir:        dir,
		BuildFlags: []string{"-tags=" + strings.Join(tags, ",")},
		ParseFile: func(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
			if filepath.Dir(filename) == dir && slices.Contains(cfg.Mask, filepath.Base(filename)) {
				src = maskSource(filename, src)
			}
			return parser.ParseFile(fset, filename, src, parser.AllErrors|parser.ParseComments)
		},
	}

	pkgs, err := packages.Load(pcfg, ".")
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no package found in %s", dir)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		errs := make([]error, len(pkg.Errors))
		for i, e := range pkg.Errors {
			errs[i] = e
		}
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}
	if pkg.Types == nil {
		return nil, fmt.Errorf("type information not available for %s", dir)
	}

	model := &PackageModel{
		ImportPath: pkg.PkgPath,
		Name:       pkg.Name,
		Dir:        dir,
		fset:       pkg.Fset,
		types:      pkg.Types,
	}
	if err := collectTypes(model, pkg.Syntax, cfg.Defaults); err != nil {
		return nil, err
	}
	return model, nil
}

// maskSource keeps only the package clause of a file.
func maskSource(filename string, src []byte) []byte {
	f, err := parser.ParseFile(token.NewFileSet(), filename, src, parser.PackageClauseOnly)
	if err != nil {
		return src
	}
	log.Debugf("masking previous output %s", filename)
	return []byte("package " + f.Name.Name + "\n")
}

type declared struct {
	spec *ast.TypeSpec
	dirs directives
	obj  *types.TypeName
}

func collectTypes(model *PackageModel, files []*ast.File, defaults Options) error {
	var decls []declared
	for _, file := range files {
		for _, d := range file.Decls {
			gd, ok := d.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				groups := []*ast.CommentGroup{ts.Doc}
				if len(gd.Specs) == 1 {
					groups = append(groups, gd.Doc)
				}
				obj, _ := model.types.Scope().Lookup(ts.Name.Name).(*types.TypeName)
				if obj == nil {
					continue
				}
				decls = append(decls, declared{
					spec: ts,
					dirs: collectDirectives(model.fset, groups...),
					obj:  obj,
				})
			}
		}
	}

	var errs []error
	annotated := map[*types.TypeName]bool{}
	for _, d := range decls {
		if d.dirs.empty() {
			continue
		}
		tm, err := newTypeModel(model, d, defaults)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		annotated[d.obj] = true
		model.Types = append(model.Types, tm)
	}

	// Sum types hand their annotation down to implementers that have none.
	for _, sum := range slices.Clone(model.Types) {
		if !sum.IsInterface || !sum.Derives.Has(DeriveTrace) {
			continue
		}
		impls, err := sumImplementers(model, sum, decls, annotated)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		model.Types = append(model.Types, impls...)
	}

	slices.SortStableFunc(model.Types, func(a, b *TypeModel) int {
		if c := strings.Compare(a.Pos.Filename, b.Pos.Filename); c != 0 {
			return c
		}
		return a.Pos.Offset - b.Pos.Offset
	})
	return errors.Join(errs...)
}

func newTypeModel(model *PackageModel, d declared, defaults Options) (*TypeModel, error) {
	pos := model.fset.Position(d.spec.Pos())
	if len(d.dirs.derive) == 0 {
		return nil, fmt.Errorf("%s: mortar:attr on %s without mortar:derive", pos, d.obj.Name())
	}
	named, ok := d.obj.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("%s: %s is an alias; derive on the aliased type instead", pos, d.obj.Name())
	}

	tm := &TypeModel{
		Name:    d.obj.Name(),
		Pos:     pos,
		Named:   named,
		Options: defaults,
	}
	for _, dir := range d.dirs.derive {
		der, err := parseDerive(dir.text, dir.pos)
		if err != nil {
			return nil, err
		}
		tm.Derives |= der
	}
	for _, dir := range d.dirs.attrs {
		if err := parseOptions(dir.text, dir.pos, false, &tm.Options); err != nil {
			return nil, err
		}
	}

	if tm.Derives.Has(DeriveTrace) {
		for _, m := range []string{traceWalk.method, dropWalk.method} {
			if hasOwnMethod(named, m) {
				return nil, fmt.Errorf("%s: %s derives Trace but already has a %s method", pos, tm.Name, m)
			}
		}
	}

	if types.IsInterface(named) {
		tm.IsInterface = true
		if tm.Derives.Has(DeriveTypeName) || tm.Derives.Has(DeriveCopy) {
			return nil, fmt.Errorf("%s: TypeName and Copy cannot be derived for interface %s", pos, tm.Name)
		}
		return tm, nil
	}

	fields, err := structFields(model, named)
	if err != nil {
		return nil, err
	}
	tm.Fields = fields
	return tm, nil
}

func structFields(model *PackageModel, named *types.Named) ([]FieldModel, error) {
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil, nil
	}
	fields := make([]FieldModel, 0, st.NumFields())
	for i := range st.NumFields() {
		f := st.Field(i)
		pos := model.fset.Position(f.Pos())
		ignore, err := fieldIgnored(st.Tag(i), pos)
		if err != nil {
			return nil, err
		}
		fields = append(fields, FieldModel{
			Name:     f.Name(),
			Type:     f.Type(),
			Pos:      pos,
			Embedded: f.Embedded(),
			Ignore:   ignore,
		})
	}
	return fields, nil
}

// sumImplementers returns the inherited models for the in-package
// implementers of an annotated interface.
func sumImplementers(model *PackageModel, sum *TypeModel, decls []declared, annotated map[*types.TypeName]bool) ([]*TypeModel, error) {
	iface := sum.Named.Underlying().(*types.Interface)
	if iface.NumMethods() == 0 {
		return nil, fmt.Errorf("%s: sum type %s needs at least one method", sum.Pos, sum.Name)
	}

	var out []*TypeModel
	found := 0
	for _, d := range decls {
		named, ok := d.obj.Type().(*types.Named)
		if !ok || types.IsInterface(named) || named.TypeParams().Len() > 0 {
			continue
		}
		byValue := types.Implements(named, iface)
		if !byValue && !types.Implements(types.NewPointer(named), iface) {
			continue
		}
		found++
		if annotated[d.obj] || hasOwnMethod(named, traceWalk.method) || hasOwnMethod(named, dropWalk.method) {
			continue
		}
		fields, err := structFields(model, named)
		if err != nil {
			return nil, err
		}
		annotated[d.obj] = true
		out = append(out, &TypeModel{
			Name:          d.obj.Name(),
			Pos:           model.fset.Position(d.spec.Pos()),
			Named:         named,
			Derives:       DeriveTrace,
			Options:       sum.Options,
			SumType:       sum.Name,
			ValueReceiver: byValue,
			Fields:        fields,
		})
	}
	if found == 0 {
		return nil, fmt.Errorf("%s: sum type %s has no implementers in package %s", sum.Pos, sum.Name, model.Name)
	}
	return out, nil
}

func hasOwnMethod(named *types.Named, name string) bool {
	for i := range named.NumMethods() {
		if named.Method(i).Name() == name {
			return true
		}
	}
	return false
}
