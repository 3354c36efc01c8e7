// mortar-gen derives Trace, TypeName and Copy methods for annotated types.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options holds the persistent flag values.
type options struct {
	configFile string
	verbose    int
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "mortar-gen",
		Short: "Generate memory-management methods for mortar types",
		Long: `mortar-gen reads the //mortar:derive and //mortar:attr directives of a Go
package and writes Trace methods to mortar_trace.go, Drop methods to
mortar_drop.go and TypeName/Copy methods to mortar_types.go.

Settings come from, in increasing precedence: built-in defaults, the
nearest mortar.toml, MORTAR_GEN_* environment variables, and flags.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(opts.verbose, nil)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "mortar.toml to use (default: nearest one above the working directory)")
	flags.String("memory", "", "import path of the memory package")
	flags.String("runtime", "", "import path of the package defining Object")
	flags.String("trace-output", "", "file name for generated Trace methods")
	flags.String("drop-output", "", "file name for generated Drop methods")
	flags.String("types-output", "", "file name for generated TypeName and Copy methods")
	flags.String("report", "", "write a CBOR report of traced and ignored fields to this file")
	flags.StringSlice("tags", nil, "extra build tags used when loading packages")
	flags.CountVarP(&opts.verbose, "verbose", "v", "log more (repeat for debug output)")

	root.AddCommand(
		newGenerateCmd(opts, "trace", "Generate Trace and Drop methods", genTrace),
		newGenerateCmd(opts, "typename", "Generate TypeName methods", genTypeName),
		newGenerateCmd(opts, "copy", "Generate Copy methods", genCopy),
		newGenerateCmd(opts, "all", "Generate Trace, TypeName and Copy methods", genTrace|genTypeName|genCopy),
		newProfileCmd(opts),
	)
	return root
}
