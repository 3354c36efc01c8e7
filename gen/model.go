// Package gen loads an annotated Go package and generates the methods the
// memory and object packages expect: Trace, TypeName and Copy. Deriving
// Trace also yields Drop, which releasing a value walks under every profile.
//
// Types opt in with directives in their doc comment:
//
//	//mortar:derive Trace TypeName Copy
//	//mortar:attr type_name="Vec2", use_copy
//	type Vec2 struct { ... }
//
// and fields opt out of tracing with a struct tag:
//
//	color string `mortar:"trace(ignore)"`
package gen

import (
	"go/token"
	"go/types"
)

// Default import paths used when a type does not override them.
const (
	DefaultMemoryPath  = "github.com/chazu/mortar/memory"
	DefaultRuntimePath = "github.com/chazu/mortar/object"
)

// Derive selects the generators that run for a type.
type Derive uint8

const (
	DeriveTrace Derive = 1 << iota
	DeriveTypeName
	DeriveCopy
)

// Has reports whether every generator in o is selected in d.
func (d Derive) Has(o Derive) bool {
	return d&o == o
}

func (d Derive) String() string {
	var s string
	for _, n := range deriveNames {
		if d.Has(n.d) {
			if s != "" {
				s += " "
			}
			s += n.name
		}
	}
	return s
}

var deriveNames = []struct {
	name string
	d    Derive
}{
	{"Trace", DeriveTrace},
	{"TypeName", DeriveTypeName},
	{"Copy", DeriveCopy},
}

// Options are the per-type settings from //mortar:attr.
type Options struct {
	Memory      string // import path of the memory package
	Runtime     string // import path of the object package
	TypeName    string // overrides the name returned by TypeName
	UseCopy     bool   // Copy copies the value instead of calling Clone
	TraceIgnore bool   // Trace visits nothing
}

// PackageModel is the generator's view of one package.
type PackageModel struct {
	ImportPath string
	Name       string
	Dir        string
	Types      []*TypeModel

	fset  *token.FileSet
	types *types.Package
}

// TypeModel is one annotated type, or a sum-type implementer that
// inherited its interface's annotation.
type TypeModel struct {
	Name    string
	Pos     token.Position
	Named   *types.Named
	Derives Derive
	Options Options

	// IsInterface marks a sum type: Trace is generated for its
	// implementers rather than for the interface.
	IsInterface bool
	// SumType names the interface this type inherited its annotation from.
	SumType string
	// ValueReceiver is set for sum-type implementers that satisfy the
	// interface by value.
	ValueReceiver bool

	Fields []FieldModel
}

// FieldModel is one field of an annotated struct.
type FieldModel struct {
	Name     string
	Type     types.Type
	Pos      token.Position
	Embedded bool
	Ignore   bool
}

// TypeParams returns the names of the type's type parameters.
func (t *TypeModel) TypeParams() []string {
	tps := t.Named.TypeParams()
	names := make([]string, tps.Len())
	for i := range names {
		names[i] = tps.At(i).Obj().Name()
	}
	return names
}

// TypeNameValue is the name the generated TypeName method returns.
func (t *TypeModel) TypeNameValue() string {
	if t.Options.TypeName != "" {
		return t.Options.TypeName
	}
	return t.Name
}
