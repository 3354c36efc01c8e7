package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/mortar/memory"
)

func newProfileCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show which memory profile a set of build tags selects",
		Long: `profile resolves the memory profile for the build tags given with --tags,
or for the profile named in mortar.toml, and prints it with its build tag.
It fails with the build diagnostic when the tags select no profile or more
than one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			p, err := resolveProfile(s)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (build tag %s)\n", p, p.Description(), p.BuildTag())
			return nil
		},
	}
	cmd.Flags().String("profile", "", "profile name to check instead of build tags")
	return cmd
}

func resolveProfile(s *settings) (memory.Profile, error) {
	if len(s.buildTags) == 0 && s.profile != "" {
		return memory.ParseProfile(s.profile)
	}
	return memory.SwitchesFromTags(s.buildTags).Resolve()
}
