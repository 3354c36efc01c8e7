package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chazu/mortar/gen"
	"github.com/chazu/mortar/manifest"
)

const envPrefix = "MORTAR_GEN"

// Config keys. They match the [generate] keys of mortar.toml and, upper
// cased with '-' as '_', the environment variables.
const (
	keyMemory      = "memory"
	keyRuntime     = "runtime"
	keyTraceOutput = "trace-output"
	keyDropOutput  = "drop-output"
	keyTypesOutput = "types-output"
	keyBuildTags   = "build-tags"
	keyReport      = "report"
	keyProfile     = "profile"
)

// settings is the resolved configuration for one command.
type settings struct {
	manifest    *manifest.Manifest
	memory      string
	runtime     string
	traceOutput string
	dropOutput  string
	typesOutput string
	buildTags   []string
	report      string
	profile     string
}

// loadManifest returns the manifest named by --config, or the nearest one
// above the working directory. It returns nil when there is none.
func loadManifest(opts *options) (*manifest.Manifest, error) {
	if opts.configFile != "" {
		path := opts.configFile
		if filepath.Base(path) == manifest.FileName {
			path = filepath.Dir(path)
		}
		return manifest.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return manifest.FindAndLoad(wd)
}

// loadSettings layers defaults, mortar.toml, environment and flags.
func loadSettings(cmd *cobra.Command, opts *options) (*settings, error) {
	m, err := loadManifest(opts)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault(keyMemory, gen.DefaultMemoryPath)
	v.SetDefault(keyRuntime, gen.DefaultRuntimePath)
	v.SetDefault(keyTraceOutput, gen.DefaultTraceOutput)
	v.SetDefault(keyDropOutput, gen.DefaultDropOutput)
	v.SetDefault(keyTypesOutput, gen.DefaultTypesOutput)

	if m != nil {
		cfg := map[string]any{}
		set := func(key, val string) {
			if val != "" {
				cfg[key] = val
			}
		}
		set(keyMemory, m.Generate.Memory)
		set(keyRuntime, m.Generate.Runtime)
		set(keyTraceOutput, m.Generate.TraceOutput)
		set(keyDropOutput, m.Generate.DropOutput)
		set(keyTypesOutput, m.Generate.TypesOutput)
		set(keyReport, m.ReportPath())
		set(keyProfile, m.Build.Profile)
		if len(m.Generate.BuildTags) > 0 {
			cfg[keyBuildTags] = m.Generate.BuildTags
		}
		if err := v.MergeConfigMap(cfg); err != nil {
			return nil, fmt.Errorf("merging %s: %w", filepath.Join(m.Dir, manifest.FileName), err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := cmd.Flags()
	for _, key := range []string{keyMemory, keyRuntime, keyTraceOutput, keyDropOutput, keyTypesOutput, keyReport} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return nil, err
		}
	}
	if err := v.BindPFlag(keyBuildTags, flags.Lookup("tags")); err != nil {
		return nil, err
	}
	if f := flags.Lookup("profile"); f != nil {
		if err := v.BindPFlag(keyProfile, f); err != nil {
			return nil, err
		}
	}

	return &settings{
		manifest:    m,
		memory:      v.GetString(keyMemory),
		runtime:     v.GetString(keyRuntime),
		traceOutput: v.GetString(keyTraceOutput),
		dropOutput:  v.GetString(keyDropOutput),
		typesOutput: v.GetString(keyTypesOutput),
		buildTags:   v.GetStringSlice(keyBuildTags),
		report:      v.GetString(keyReport),
		profile:     v.GetString(keyProfile),
	}, nil
}

// packageDirs returns the directories to generate: the arguments, else the
// manifest's packages, else the working directory.
func (s *settings) packageDirs(args []string) []string {
	if len(args) > 0 {
		return args
	}
	if s.manifest != nil {
		return s.manifest.PackageDirs()
	}
	return []string{"."}
}
