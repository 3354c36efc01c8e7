package gen

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, dir string) *Result {
	t.Helper()
	res, err := Generate(Config{Dir: filepath.Join("testdata", dir)})
	require.NoError(t, err)
	return res
}

func TestGenerateTraceGraph(t *testing.T) {
	res := generate(t, "graph")
	src := string(res.Trace)

	assert.Contains(t, src, "// Code generated by mortar-gen. DO NOT EDIT.")
	assert.Contains(t, src, "//go:build mortar_gc || mortar_agc")
	assert.Contains(t, src, `"github.com/chazu/mortar/memory/trace"`)

	assert.Contains(t, src, "func (n *Node) Trace(v trace.Visitor) error {")
	assert.Contains(t, src, "n.Parent.Trace(v)")
	assert.Contains(t, src, "for i := range n.Children {")
	assert.Contains(t, src, "n.Children[i].Trace(v)")
	assert.Contains(t, src, "for _, e := range n.Tags {")
	assert.Contains(t, src, "trace.Value(v, n.Extra)")
	assert.Contains(t, src, "if n.Lookup != nil {")
	assert.Contains(t, src, "n.Meta.Owner.Trace(v)")
	assert.Contains(t, src, "n.Hidden.Trace(v)")
	assert.NotContains(t, src, "n.Color")
	assert.NotContains(t, src, "n.Err")

	assert.Contains(t, src, "func (*Ball) Trace(trace.Visitor) error {")
	assert.NotContains(t, src, "Bounce")

	assert.Contains(t, src, "func (p *Pair[T]) Trace(v trace.Visitor) error {")
	assert.Contains(t, src, "trace.Field(v, &p.First)")
	assert.Contains(t, src, "trace.Field(v, &p.Second)")
	assert.Contains(t, src, "p.Weight.Trace(v)")

	assert.Contains(t, src, "func (c *Children) Trace(v trace.Visitor) error {")
	assert.Contains(t, src, "(*c)[i].Trace(v)")

	assert.NotContains(t, src, "Label) Trace", "Label does not derive Trace")

	assert.Contains(t, src, "w.Inner.Trace(v)")
	assert.NotContains(t, src, "w.Shared")
}

func TestGenerateDropGraph(t *testing.T) {
	res := generate(t, "graph")
	src := string(res.Drop)

	assert.Contains(t, src, "// Code generated by mortar-gen. DO NOT EDIT.")
	assert.NotContains(t, src, "go:build", "Drop is compiled under every profile")

	assert.Contains(t, src, "func (n *Node) Drop(v trace.Visitor) error {")
	assert.Contains(t, src, "n.Parent.Drop(v)")
	assert.Contains(t, src, "n.Children[i].Drop(v)")
	assert.Contains(t, src, "trace.DropValue(v, n.Extra)")
	assert.Contains(t, src, "n.Hidden.Drop(v)")
	assert.NotContains(t, src, ".Trace(v)")

	// Ignored types and fields are still released.
	assert.Contains(t, src, "func (b *Ball) Drop(v trace.Visitor) error {")
	assert.Contains(t, src, "b.Bounce.Drop(v)")
	assert.Contains(t, src, "w.Shared.Drop(v)")

	// Trace only: dispatched at run time.
	assert.Contains(t, src, "trace.DropField(v, &w.Inner)")
	assert.Contains(t, src, "trace.DropField(v, &p.First)")

	// An ignored field nothing can walk is skipped.
	assert.NotContains(t, src, "w.Opaque")
}

func TestGenerateTraceFieldOrder(t *testing.T) {
	res := generate(t, "graph")
	node := res.Report.Type("Node")
	require.NotNil(t, node)
	assert.Equal(t, []string{"Parent", "Children", "Tags", "Extra", "Lookup", "Meta", "Hidden"}, node.Traced)
	assert.Equal(t, []string{"Color"}, node.IgnoredFields)

	ball := res.Report.Type("Ball")
	require.NotNil(t, ball)
	assert.True(t, ball.Ignored)
	assert.Empty(t, ball.Traced)
}

func TestGenerateTypesGraph(t *testing.T) {
	res := generate(t, "graph")
	src := string(res.Types)

	assert.Contains(t, src, "// Code generated by mortar-gen. DO NOT EDIT.")
	assert.NotContains(t, src, "go:build")

	assert.Contains(t, src, "func (Node) TypeName() string {\n\treturn \"Node\"\n}")
	assert.Contains(t, src, "func (Ball) TypeName() string {\n\treturn \"Bouncy\"\n}")
	assert.Contains(t, src, "func (b *Ball) Copy() object.Object {\n\tcp := *b\n\treturn &cp\n}")
	assert.Contains(t, src, "func (l *Label) Copy() object.Object {\n\treturn l.Clone()\n}")
	assert.NotContains(t, src, "Node) Copy")
}

func TestGenerateSumType(t *testing.T) {
	res := generate(t, "sum")
	src := string(res.Trace)

	assert.Contains(t, src, "func (c Circle) Trace(v trace.Visitor) error {")
	assert.Contains(t, src, "c.Center.Trace(v)")
	assert.Contains(t, src, "func (p *Poly) Trace(v trace.Visitor) error {")
	assert.Contains(t, src, "p.Points[i].Trace(v)")
	assert.NotContains(t, src, "Point) Trace")
	assert.NotContains(t, src, "Shape) Trace")

	assert.Contains(t, src, "trace.Value(v, s.Shapes[i])")
	assert.Contains(t, src, "for k := range s.Index {")
	assert.Contains(t, src, "k.Trace(v)")

	drop := string(res.Drop)
	assert.Contains(t, drop, "func (c Circle) Drop(v trace.Visitor) error {")
	assert.Contains(t, drop, "trace.DropValue(v, s.Shapes[i])")

	circle := res.Report.Type("Circle")
	require.NotNil(t, circle)
	assert.Equal(t, "Shape", circle.SumType)
}

func TestGenerateRejectsUnknownAttributes(t *testing.T) {
	_, err := Generate(Config{Dir: filepath.Join("testdata", "badattr")})
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `unsupported option for trace attribute: "deep"`)
	assert.Contains(t, msg, `unsupported mortar attribute "colour"`)
	assert.Contains(t, msg, `unsupported mortar attribute "skip" for fields`)
	assert.Contains(t, msg, `unsupported derive "Debug"`)
	assert.Contains(t, msg, "badattr.go:")
}

func TestGenerateRejectsUntracedFields(t *testing.T) {
	_, err := Generate(Config{Dir: filepath.Join("testdata", "untraced")})
	require.Error(t, err)

	var ue *UntracedTypeError
	require.True(t, errors.As(err, &ue), "got %v", err)
	assert.Equal(t, "In", ue.Field)
	assert.Contains(t, err.Error(), "untraced.Inner holds pointers but has no Trace method")
}

func TestGenerateCopyNeedsClone(t *testing.T) {
	_, err := Generate(Config{Dir: filepath.Join("testdata", "noclone")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a method Clone() *Plain")

	res, err := Generate(Config{Dir: filepath.Join("testdata", "noclone"), Derive: DeriveTypeName})
	require.NoError(t, err)
	assert.Contains(t, string(res.Types), `return "Plain"`)
	assert.NotContains(t, string(res.Types), "Copy")
}

func TestGenerateSumWithoutImplementers(t *testing.T) {
	_, err := Generate(Config{Dir: filepath.Join("testdata", "emptysum")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum type Value has no implementers")
}

func TestGenerateOptionOverrides(t *testing.T) {
	res, err := Generate(Config{
		Dir:     filepath.Join("testdata", "graph"),
		Derive:  DeriveCopy | DeriveTypeName,
		Runtime: "example.com/runtime/object",
	})
	require.NoError(t, err)
	assert.Nil(t, res.Trace)
	assert.Nil(t, res.Drop)
	assert.Contains(t, string(res.Types), `"example.com/runtime/object"`)
}

func TestResultWrite(t *testing.T) {
	res := generate(t, "graph")

	dir := t.TempDir()
	res.Package.Dir = dir
	stale := filepath.Join(dir, DefaultTypesOutput)
	require.NoError(t, os.WriteFile(stale, []byte("package graph\n"), 0o644))

	res.Types = nil
	require.NoError(t, res.Write())

	trace, err := os.ReadFile(filepath.Join(dir, DefaultTraceOutput))
	require.NoError(t, err)
	assert.Equal(t, res.Trace, trace)
	drop, err := os.ReadFile(filepath.Join(dir, DefaultDropOutput))
	require.NoError(t, err)
	assert.Equal(t, res.Drop, drop)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "empty output should remove the stale file")
}

func TestReportRoundTrip(t *testing.T) {
	res := generate(t, "graph")
	path := filepath.Join(t.TempDir(), "report.cbor")
	require.NoError(t, WriteReport(path, res.Report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	back, err := UnmarshalReport(data)
	require.NoError(t, err)
	assert.Equal(t, res.Report.Package, back.Package)
	assert.Equal(t, len(res.Report.Types), len(back.Types))
	assert.Equal(t, "github.com/chazu/mortar/gen/testdata/graph", back.Package)
}
