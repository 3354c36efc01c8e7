package gen

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("mortar.gen")

// Default output file names.
const (
	DefaultTraceOutput = "mortar_trace.go"
	DefaultDropOutput  = "mortar_drop.go"
	DefaultTypesOutput = "mortar_types.go"
)

// Config drives one generator run over one package.
type Config struct {
	Dir         string
	Memory      string
	Runtime     string
	TraceOutput string
	DropOutput  string
	TypesOutput string
	BuildTags   []string
	Derive      Derive // generators to run; zero means all
}

func (c Config) withDefaults() Config {
	if c.Dir == "" {
		c.Dir = "."
	}
	if c.Memory == "" {
		c.Memory = DefaultMemoryPath
	}
	if c.Runtime == "" {
		c.Runtime = DefaultRuntimePath
	}
	if c.TraceOutput == "" {
		c.TraceOutput = DefaultTraceOutput
	}
	if c.DropOutput == "" {
		c.DropOutput = DefaultDropOutput
	}
	if c.TypesOutput == "" {
		c.TypesOutput = DefaultTypesOutput
	}
	if c.Derive == 0 {
		c.Derive = DeriveTrace | DeriveTypeName | DeriveCopy
	}
	return c
}

// Result is the output of a run. Trace, Drop and Types are nil when the
// package has nothing to generate for them.
type Result struct {
	Config  Config
	Package *PackageModel
	Trace   []byte
	Drop    []byte
	Types   []byte
	Report  *Report
}

// Generate loads the package in cfg.Dir and renders the selected methods.
// Nothing is written to disk; see Result.Write.
func Generate(cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	model, err := LoadPackage(LoadConfig{
		Dir:  cfg.Dir,
		Tags: cfg.BuildTags,
		Mask: []string{cfg.TraceOutput, cfg.DropOutput, cfg.TypesOutput},
		Defaults: Options{
			Memory:  cfg.Memory,
			Runtime: cfg.Runtime,
		},
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Config:  cfg,
		Package: model,
		Report:  &Report{Package: model.ImportPath},
	}
	if cfg.Derive.Has(DeriveTrace) {
		if res.Trace, err = GenerateTrace(model, res.Report); err != nil {
			return nil, err
		}
		if res.Drop, err = GenerateDrop(model); err != nil {
			return nil, err
		}
	}
	if which := cfg.Derive &^ DeriveTrace; which != 0 {
		if res.Types, err = GenerateTypes(model, which); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Write stores the generated files in the package directory. An output the
// run selected but produced nothing for is removed, so stale methods do not
// linger.
func (r *Result) Write() error {
	dir := r.Package.Dir
	var errs []error
	if r.Config.Derive.Has(DeriveTrace) {
		errs = append(errs, writeOrRemove(filepath.Join(dir, r.Config.TraceOutput), r.Trace))
		errs = append(errs, writeOrRemove(filepath.Join(dir, r.Config.DropOutput), r.Drop))
	}
	if r.Config.Derive&^DeriveTrace != 0 {
		errs = append(errs, writeOrRemove(filepath.Join(dir, r.Config.TypesOutput), r.Types))
	}
	return errors.Join(errs...)
}

func writeOrRemove(path string, src []byte) error {
	if src == nil {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing stale %s: %w", path, err)
		}
		return nil
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Infof("wrote %s", path)
	return nil
}
