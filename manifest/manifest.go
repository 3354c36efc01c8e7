// Package manifest handles mortar.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the project file.
const FileName = "mortar.toml"

// Manifest represents a mortar.toml project configuration.
type Manifest struct {
	Project  Project  `toml:"project"`
	Build    Build    `toml:"build"`
	Generate Generate `toml:"generate"`

	// Dir is the directory containing the mortar.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Build records the memory profile the project is built with.
type Build struct {
	Profile string `toml:"profile"`
}

// Generate configures mortar-gen.
type Generate struct {
	Packages    []string `toml:"packages"`
	Memory      string   `toml:"memory"`
	Runtime     string   `toml:"runtime"`
	TraceOutput string   `toml:"trace-output"`
	DropOutput  string   `toml:"drop-output"`
	TypesOutput string   `toml:"types-output"`
	BuildTags   []string `toml:"build-tags"`
	Report      string   `toml:"report"`
}

// Load parses a mortar.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if len(m.Generate.Packages) == 0 {
		m.Generate.Packages = []string{"."}
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a mortar.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// PackageDirs returns absolute paths for the packages to generate.
func (m *Manifest) PackageDirs() []string {
	var paths []string
	for _, d := range m.Generate.Packages {
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// ReportPath returns the absolute path of the generation report, or "" when
// none is configured.
func (m *Manifest) ReportPath() string {
	if m.Generate.Report == "" {
		return ""
	}
	return filepath.Join(m.Dir, m.Generate.Report)
}
