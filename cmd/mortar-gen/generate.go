package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/mortar/gen"
)

const (
	genTrace    = gen.DeriveTrace
	genTypeName = gen.DeriveTypeName
	genCopy     = gen.DeriveCopy
)

func newGenerateCmd(opts *options, use, short string, which gen.Derive) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   use + " [package-dir...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			return runGenerate(cmd, s, which, s.packageDirs(args), dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the generated source instead of writing it")
	return cmd
}

func runGenerate(cmd *cobra.Command, s *settings, which gen.Derive, dirs []string, dryRun bool) error {
	if s.report != "" && len(dirs) != 1 {
		return fmt.Errorf("--report needs exactly one package, got %d", len(dirs))
	}

	out := cmd.OutOrStdout()
	var errs []error
	for _, dir := range dirs {
		res, err := gen.Generate(gen.Config{
			Dir:         dir,
			Memory:      s.memory,
			Runtime:     s.runtime,
			TraceOutput: s.traceOutput,
			DropOutput:  s.dropOutput,
			TypesOutput: s.typesOutput,
			BuildTags:   s.buildTags,
			Derive:      which,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", dir, err))
			continue
		}

		if dryRun {
			for _, src := range [][]byte{res.Trace, res.Drop, res.Types} {
				if src != nil {
					fmt.Fprintf(out, "%s\n", src)
				}
			}
		} else {
			if err := res.Write(); err != nil {
				errs = append(errs, err)
				continue
			}
			fmt.Fprintf(out, "%s: %d types\n", res.Package.ImportPath, len(res.Package.Types))
		}

		if s.report != "" {
			if err := gen.WriteReport(s.report, res.Report); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
